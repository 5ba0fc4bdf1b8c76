package chat

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains pre-configured lipgloss styles for the chat surface.
type Styles struct {
	// Header is the top bar style.
	Header lipgloss.Style

	// Hint is for key hints next to the header.
	Hint lipgloss.Style

	// User prefixes the user's questions.
	User lipgloss.Style

	// Assistant prefixes synthesised answers.
	Assistant lipgloss.Style

	// Citation renders source lines under an answer.
	Citation lipgloss.Style

	// Error renders failures and cancellations.
	Error lipgloss.Style
}

// DefaultStyles returns the default chat styling.
func DefaultStyles() Styles {
	return Styles{
		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		Hint:      lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		User:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#06B6D4")),
		Assistant: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A6E3A1")),
		Citation:  lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
	}
}
