// Package ui renders trees and command output for the terminal.
package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Visualizer writes text to a terminal, styled when color is enabled
type Visualizer struct {
	writer   io.Writer
	useColor bool
}

func NewVisualizer(w io.Writer, useColor bool) *Visualizer {
	return &Visualizer{
		writer:   w,
		useColor: useColor,
	}
}

func (v *Visualizer) Print(message string) {
	fmt.Fprint(v.writer, message)
}

func (v *Visualizer) Printf(format string, args ...interface{}) {
	fmt.Fprintf(v.writer, format, args...)
}

func (v *Visualizer) Println(message string) {
	fmt.Fprintln(v.writer, message)
}

// Styled renders message with style, or returns it unchanged without color
func (v *Visualizer) Styled(message string, style lipgloss.Style) string {
	if !v.useColor {
		return message
	}
	return style.Render(message)
}

// PrintStyled prints a message rendered with style
func (v *Visualizer) PrintStyled(message string, style lipgloss.Style) {
	v.Print(v.Styled(message, style))
}

// Error prints an error line
func (v *Visualizer) Error(err error) {
	v.Println(v.Styled("Error: "+err.Error(), errorStyle))
}

var (
	branchStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#a52a2a"))
	idStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffa500"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	editingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffff00")).Italic(true)
	markerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#96ff96"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff0000"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#969696"))
)
