// File: model.go
// Title: Interactive Analysis Inspector
// Description: Terminal UI for exploring analysis results. The user edits
//              source text in a textarea and inspects the resulting token
//              stream, syntax tree and diagnostics in switchable tabs.
// Author: AnderBEz
// Version: v0.1.0
// Created: 2026-08-16
// Modified: 2026-08-16
//
// Change History:
// - 2026-08-16 v0.1.0: Initial inspector UI

package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/AnderBEz/thuCompiler/internal/analyzer/ast"
	"github.com/AnderBEz/thuCompiler/internal/analyzer/service"
	"github.com/AnderBEz/thuCompiler/internal/analyzer/token"
)

// View represents different result tabs in the inspector
type View int

const (
	ViewTokens View = iota
	ViewTree
	ViewDiagnostics
)

// Model is the main inspector model
type Model struct {
	// State
	view    View
	width   int
	height  int
	ready   bool
	loading bool

	// Components
	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model

	// Analysis
	service *service.Service
	result  *service.Result
	err     error
}

// NewModel creates a new inspector model
func NewModel(svc *service.Service) Model {
	ta := textarea.New()
	ta.Placeholder = "Enter source text, then Ctrl+R to analyze..."
	ta.Focus()
	ta.CharLimit = 0
	ta.SetWidth(80)
	ta.SetHeight(6)
	ta.ShowLineNumbers = true

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	return Model{
		view:     ViewTokens,
		textarea: ta,
		spinner:  sp,
		service:  svc,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
	)
}

// analyzeResultMsg carries the outcome of an async analysis
type analyzeResultMsg struct {
	result *service.Result
	err    error
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "tab":
			// Switch result tabs
			m.view = (m.view + 1) % 3
			m.updateContent()
			return m, nil

		case "ctrl+r":
			source := m.textarea.Value()
			if strings.TrimSpace(source) != "" && !m.loading {
				m.loading = true
				return m, tea.Batch(m.spinner.Tick, m.analyze(source))
			}

		case "ctrl+l":
			m.textarea.Reset()
			m.result = nil
			m.err = nil
			m.updateContent()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, msg.Height-16)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = msg.Height - 16
		}
		m.textarea.SetWidth(msg.Width - 6)
		m.updateContent()

	case analyzeResultMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.result = msg.result
		}
		m.updateContent()

	case spinner.TickMsg:
		if m.loading {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	// Update components
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// analyze runs the scanner and parser off the event loop
func (m *Model) analyze(source string) tea.Cmd {
	svc := m.service
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		result, err := svc.Analyze(ctx, source)
		return analyzeResultMsg{result: result, err: err}
	}
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var s strings.Builder

	s.WriteString(m.renderHeader())
	s.WriteString("\n")
	s.WriteString(FocusedInputStyle.Render(m.textarea.View()))
	s.WriteString("\n")

	if m.loading {
		s.WriteString(m.spinner.View())
		s.WriteString(" Analyzing...\n")
	}

	s.WriteString(BoxStyle.Render(m.viewport.View()))
	s.WriteString("\n")
	s.WriteString(m.renderFooter())

	return s.String()
}

func (m *Model) renderHeader() string {
	tabs := []string{"Tokens", "Tree", "Diagnostics"}
	var renderedTabs []string

	for i, tab := range tabs {
		if View(i) == m.view {
			renderedTabs = append(renderedTabs, ActiveTabStyle.Render(tab))
		} else {
			renderedTabs = append(renderedTabs, TabStyle.Render(tab))
		}
	}

	title := TitleStyle.Render("thuCompiler Inspector")
	tabLine := lipgloss.JoinHorizontal(lipgloss.Top, renderedTabs...)

	return lipgloss.JoinVertical(lipgloss.Left, title, tabLine)
}

func (m *Model) renderFooter() string {
	help := "Tab: Switch view • Ctrl+R: Analyze • Ctrl+L: Clear • Ctrl+C: Quit"
	summary := ""
	if m.result != nil {
		summary = fmt.Sprintf("tokens: %d • errors: %d", m.result.TokenCount, m.result.ErrorCount)
	}

	return StatusBarStyle.Width(m.width).Render(
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			help,
			strings.Repeat(" ", max(0, m.width-len(help)-len(summary)-4)),
			summary,
		),
	)
}

func (m *Model) updateContent() {
	var content string

	switch {
	case m.err != nil:
		content = DiagnosticStyle.Render("Error: " + m.err.Error())
	case m.result == nil:
		content = SubtitleStyle.Render("No analysis yet. Enter source above and press Ctrl+R.")
	default:
		switch m.view {
		case ViewTokens:
			content = m.renderTokens()
		case ViewTree:
			content = m.renderTree()
		case ViewDiagnostics:
			content = m.renderDiagnostics()
		}
	}

	m.viewport.SetContent(content)
	m.viewport.GotoTop()
}

func (m *Model) renderTokens() string {
	var s strings.Builder

	for _, tok := range m.result.Tokens {
		s.WriteString(PositionStyle.Render(fmt.Sprintf("%4d:%-3d ", tok.Line, tok.Column)))
		s.WriteString(TokenTypeStyle.Render(fmt.Sprintf("%-22s", tok.Type.String())))
		s.WriteString(TokenValueStyle.Render(displayValue(tok)))
		s.WriteString("\n")
	}

	return s.String()
}

func (m *Model) renderTree() string {
	if m.result.AST == nil {
		return SubtitleStyle.Render("No syntax tree (empty or fully rejected input).")
	}

	var s strings.Builder
	renderNode(&s, m.result.AST, 0)
	return s.String()
}

func renderNode(s *strings.Builder, n *ast.Node, depth int) {
	s.WriteString(strings.Repeat("  ", depth))
	s.WriteString(NodeKindStyle.Render(string(n.Type)))
	if n.Value != "" {
		s.WriteString(" ")
		s.WriteString(TokenValueStyle.Render(n.Value))
	}
	if n.Token != nil {
		s.WriteString(PositionStyle.Render(fmt.Sprintf("  (%d:%d)", n.Token.Line, n.Token.Column)))
	}
	s.WriteString("\n")

	for _, child := range n.Children {
		renderNode(s, child, depth+1)
	}
}

func (m *Model) renderDiagnostics() string {
	if !m.result.HasErrors {
		return OKStyle.Render("No diagnostics. The input is clean.")
	}

	var s strings.Builder

	if len(m.result.LexicalErrors) > 0 {
		s.WriteString(SubtitleStyle.Render("Lexical errors"))
		s.WriteString("\n")
		for _, d := range m.result.LexicalErrors {
			writeDiagnostic(&s, d)
		}
		s.WriteString("\n")
	}

	if len(m.result.SyntaxErrors) > 0 {
		s.WriteString(SubtitleStyle.Render("Syntax errors"))
		s.WriteString("\n")
		for _, d := range m.result.SyntaxErrors {
			writeDiagnostic(&s, d)
		}
	}

	return s.String()
}

func writeDiagnostic(s *strings.Builder, d token.Diagnostic) {
	s.WriteString(PositionStyle.Render(fmt.Sprintf("%4d:%-3d ", d.Line, d.Column)))
	s.WriteString(DiagnosticStyle.Render(d.Message))
	s.WriteString("\n")
	if d.Suggestion != "" {
		s.WriteString("         ")
		s.WriteString(SuggestionStyle.Render("hint: " + d.Suggestion))
		s.WriteString("\n")
	}
}

// displayValue renders a token value with control characters made visible
func displayValue(tok token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "<eof>"
	case token.Newline:
		return "\\n"
	default:
		return tok.Value
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
