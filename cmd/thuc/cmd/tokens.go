package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/AnderBEz/thuCompiler/internal/analyzer/service"
	"github.com/AnderBEz/thuCompiler/internal/analyzer/token"
)

var tokensJSON bool

var tokensCmd = &cobra.Command{
	Use:   "tokens [file]",
	Short: "Prints the token stream",
	Long: `Runs only the scanner and prints the token stream.

Reads from the given file, or from stdin when no file is given.
Lexical errors are listed after the stream; the exit code is
non-zero when any occur.

Examples:
  thuc tokens script.thu
  thuc tokens --json script.thu
  echo "x = 42" | thuc tokens`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)
	tokensCmd.Flags().BoolVar(&tokensJSON, "json", false, "print the token stream as JSON")
}

func runTokens(cmd *cobra.Command, args []string) error {
	source, name, err := readInput(args)
	if err != nil {
		return err
	}

	svc := service.NewService(service.Config{
		Logger: quietLogger(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := svc.Tokenize(ctx, source)
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}

	if tokensJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		printTokens(name, result)
	}

	if result.HasErrors {
		os.Exit(1)
	}
	return nil
}

func printTokens(name string, result *service.TokenizeResult) {
	fmt.Println(headingStyle.Render(name))
	fmt.Printf("%d tokens\n\n", result.TokenCount)

	for _, tok := range result.Tokens {
		value := tok.Value
		switch tok.Type {
		case token.EOF:
			value = "<eof>"
		case token.Newline:
			value = "\\n"
		}
		fmt.Printf("  %s %-22s %s\n",
			positionStyle.Render(fmt.Sprintf("%4d:%-3d", tok.Line, tok.Column)),
			tok.Type.String(),
			value)
	}

	if len(result.LexicalErrors) > 0 {
		fmt.Println()
		fmt.Println(headingStyle.Render("Lexical errors"))
		for _, d := range result.LexicalErrors {
			printDiagnostic(name, d)
		}
	}
}
