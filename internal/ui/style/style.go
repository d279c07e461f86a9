// Package style provides shared styling primitives, colors and icons, for
// consistent terminal presentation.
package style

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	Teal   = lipgloss.Color("#0D9488")
	Slate  = lipgloss.Color("#64748B")
	Ink    = lipgloss.Color("#0F172A")
	Paper  = lipgloss.Color("#F8FAFC")
	Green  = lipgloss.Color("#16A34A")
	Red    = lipgloss.Color("#DC2626")
	Yellow = lipgloss.Color("#D97706")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Dot     = "●"
)
