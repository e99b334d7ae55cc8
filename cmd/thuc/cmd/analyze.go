package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/AnderBEz/thuCompiler/internal/analyzer/ast"
	"github.com/AnderBEz/thuCompiler/internal/analyzer/service"
	"github.com/AnderBEz/thuCompiler/internal/analyzer/token"
	"github.com/AnderBEz/thuCompiler/pkg/core/logging"
)

var (
	analyzeJSON bool
	analyzeTree bool
)

var (
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).Italic(true)
	positionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	okStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	headingStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED")).Bold(true)
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyzes source text",
	Long: `Analyzes source text and prints diagnostics.

Reads from the given file, or from stdin when no file is given.
Exits non-zero when the input has lexical or syntax errors.

Examples:
  thuc analyze script.thu
  thuc analyze --tree script.thu
  thuc analyze --json script.thu
  echo "x = 42" | thuc analyze`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the full result as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeTree, "tree", false, "print the syntax tree")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	source, name, err := readInput(args)
	if err != nil {
		return err
	}

	svc := service.NewService(service.Config{
		Logger: quietLogger(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := svc.Analyze(ctx, source)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if analyzeJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		printResult(name, result)
	}

	if result.HasErrors {
		// Distinguish "input has diagnostics" from "tool failed"
		os.Exit(1)
	}
	return nil
}

func printResult(name string, result *service.Result) {
	fmt.Println(headingStyle.Render(name))
	fmt.Printf("%d tokens, %d statements\n\n", result.TokenCount, result.AST.StatementCount())

	if !result.HasErrors {
		fmt.Println(okStyle.Render("No errors found."))
		if analyzeTree && result.AST != nil {
			fmt.Println()
			printTree(result.AST, 0)
		}
		return
	}

	if len(result.LexicalErrors) > 0 {
		fmt.Println(headingStyle.Render("Lexical errors"))
		for _, d := range result.LexicalErrors {
			printDiagnostic(name, d)
		}
		fmt.Println()
	}

	if len(result.SyntaxErrors) > 0 {
		fmt.Println(headingStyle.Render("Syntax errors"))
		for _, d := range result.SyntaxErrors {
			printDiagnostic(name, d)
		}
		fmt.Println()
	}

	total := len(result.LexicalErrors) + len(result.SyntaxErrors)
	fmt.Println(errorStyle.Render(fmt.Sprintf("%d error(s)", total)))

	if analyzeTree && result.AST != nil {
		fmt.Println()
		printTree(result.AST, 0)
	}
}

func printDiagnostic(name string, d token.Diagnostic) {
	fmt.Printf("  %s %s\n",
		positionStyle.Render(fmt.Sprintf("%s:%d:%d:", name, d.Line, d.Column)),
		errorStyle.Render(d.Message))
	if d.Suggestion != "" {
		fmt.Printf("    %s\n", suggestionStyle.Render("hint: "+d.Suggestion))
	}
}

func printTree(n *ast.Node, depth int) {
	fmt.Print(strings.Repeat("  ", depth))
	if n.Value != "" {
		fmt.Printf("%s %s\n", n.Type, n.Value)
	} else {
		fmt.Println(string(n.Type))
	}
	for _, child := range n.Children {
		printTree(child, depth+1)
	}
}

// readInput reads the analysis input from a file argument or stdin
func readInput(args []string) (source, name string, err error) {
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("read %s: %w", args[0], err)
		}
		return string(data), args[0], nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", "", fmt.Errorf("read stdin: %w", err)
	}
	if len(data) == 0 {
		return "", "", fmt.Errorf("no input: pass a file or pipe source to stdin")
	}
	return string(data), "<stdin>", nil
}

// quietLogger suppresses service logging for one-shot CLI runs
func quietLogger() *logging.Logger {
	return logging.NewWithConfig(logging.Config{
		Level:  logging.LevelError,
		Format: logging.FormatText,
		Output: os.Stderr,
		Name:   "thuc",
	})
}
