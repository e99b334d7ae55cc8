package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/AnderBEz/thuCompiler/internal/analyzer/service"
	"github.com/AnderBEz/thuCompiler/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Starts the interactive inspector",
	Long: `Starts the interactive terminal inspector.

Edit source text and explore the resulting token stream, syntax
tree and diagnostics side by side.

Navigation:
  Tab       - Switch between result views
  Ctrl+R    - Analyze the current source
  Ctrl+L    - Clear
  Ctrl+C    - Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	svc := service.NewService(service.Config{
		Logger: quietLogger(),
	})

	p := tea.NewProgram(
		tui.NewModel(svc),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
		return err
	}

	return nil
}
