package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AnderBEz/thuCompiler/pkg/core/config"
	"github.com/AnderBEz/thuCompiler/pkg/core/logging"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "thuc",
	Short: "thuCompiler - source analysis toolkit",
	Long: `thuCompiler analyzes source text in two phases: a pattern-table
scanner producing a token stream and a recursive-descent parser
producing a syntax tree. Lexical and syntax errors are reported
on independent channels with source positions and suggestions.

Commands:
  analyze  - Analyze a file or stdin and print diagnostics
  tokens   - Print the token stream for a file or stdin
  serve    - Run the analysis API server (HTTP, optional gRPC)
  tui      - Interactive inspector
  version  - Version information`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $THUC_CONFIG or built-in defaults)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig resolves configuration from --config, the environment, or
// defaults, in that order
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}
	return config.LoadFromEnv()
}

// loggerFromConfig builds the process logger honoring --verbose
func loggerFromConfig(cfg *config.Config, name string) *logging.Logger {
	level, err := logging.ParseLevel(cfg.General.LogLevel)
	if err != nil {
		level = logging.LevelInfo
	}
	if verbose {
		level = logging.LevelDebug
	}
	format, err := logging.ParseFormat(cfg.General.LogFormat)
	if err != nil {
		format = logging.FormatJSON
	}
	return logging.NewWithConfig(logging.Config{
		Level:  level,
		Format: format,
		Name:   name,
	})
}

// printError reports a fatal command error on stderr
func printError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}
