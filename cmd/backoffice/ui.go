package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"go.uber.org/zap"
)

var (
	accentColor  = lipgloss.Color("#2563EB")
	successColor = lipgloss.Color("#16A34A")
	errorColor   = lipgloss.Color("#DC2626")
	warningColor = lipgloss.Color("#F59E0B")
	subtleColor  = lipgloss.Color("#6B7280")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	successStyle = lipgloss.NewStyle().Foreground(successColor)
	errorStyle   = lipgloss.NewStyle().Foreground(errorColor)
	warningStyle = lipgloss.NewStyle().Foreground(warningColor)
	subtleStyle  = lipgloss.NewStyle().Foreground(subtleColor)

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// renderTable draws rows under header; cells of invalid rows are highlighted when bad is set
func renderTable(header []string, rows [][]string, bad func(row int) bool) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(subtleStyle).
		Headers(header...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if bad != nil && bad(row) {
				return cellStyle.Foreground(errorColor)
			}
			return cellStyle
		})
	return t.String()
}

// notifier shows toasts on the terminal and keeps a trace in the log
type notifier struct {
	out io.Writer
	log *zap.Logger
}

func (n notifier) Success(message string) {
	fmt.Fprintln(n.out, successStyle.Render("✓ "+message))
	n.log.Info("notification", zap.String("kind", "success"), zap.String("message", message))
}

func (n notifier) Error(message string) {
	fmt.Fprintln(n.out, errorStyle.Render("✗ "+message))
	n.log.Warn("notification", zap.String("kind", "error"), zap.String("message", message))
}

// promptConfirmer asks on the terminal; assumeYes answers without asking
type promptConfirmer struct {
	in        *bufio.Reader
	out       io.Writer
	assumeYes bool
}

func (c promptConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	if c.assumeYes {
		return true, nil
	}
	fmt.Fprint(c.out, warningStyle.Render(prompt)+" [o/N] ")
	line, err := readLine(ctx, c.in)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "o", "oui", "y", "yes":
		return true, nil
	}
	return false, nil
}

// readLine reads one trimmed line; end of input counts as an empty answer
func readLine(ctx context.Context, in *bufio.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	line, err := in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
