// Package ui provides the visual styling for the kernel terminal client.
// The palette is a bayou noir: Rust in rust-orange, Marty in faded denim.
package ui

import (
	"os"
	"strconv"
	"strings"

	"nihilistkernel/internal/interaction"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	// Light Mode Colors (Default)
	LightBackground = lipgloss.Color("#f3efe6") // Parchment
	LightForeground = lipgloss.Color("#1d1b18") // Ink
	LightPrimary    = lipgloss.Color("#3b2f2a") // Bourbon
	LightAccent     = lipgloss.Color("#b5532a") // Rust
	LightMuted      = lipgloss.Color("#8a8379")
	LightBorder     = lipgloss.Color("#cfc7b8")

	// Dark Mode Colors
	DarkBackground = lipgloss.Color("#12100e")
	DarkForeground = lipgloss.Color("#e8e2d6")
	DarkPrimary    = lipgloss.Color("#d9a441") // Sodium streetlight
	DarkAccent     = lipgloss.Color("#d2693c")
	DarkMuted      = lipgloss.Color("#6f685e")
	DarkBorder     = lipgloss.Color("#3a342d")

	// Speaker Colors (same in both modes)
	RustColor  = lipgloss.Color("#c0582f")
	MartyColor = lipgloss.Color("#4f7ca8")

	// Semantic Colors
	Destructive = lipgloss.Color("#e53935")
)

// Theme holds the current color scheme
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme
func LightTheme() Theme {
	return Theme{
		Background: LightBackground,
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Muted:      LightMuted,
		Border:     LightBorder,
		IsDark:     false,
	}
}

// DarkTheme returns the dark mode theme
func DarkTheme() Theme {
	return Theme{
		Background: DarkBackground,
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		IsDark:     true,
	}
}

// DetectTheme picks dark mode from COLORFGBG or KERNEL_DARK_MODE=1, light
// otherwise.
func DetectTheme() Theme {
	// Format is usually "foreground;background"
	if parts := strings.Split(os.Getenv("COLORFGBG"), ";"); len(parts) == 2 {
		if bgIdx, err := strconv.Atoi(parts[1]); err == nil {
			// 0-6 and 8 (dark grey) are dark backgrounds
			if (bgIdx >= 0 && bgIdx <= 6) || bgIdx == 8 {
				return DarkTheme()
			}
		}
	}

	if os.Getenv("KERNEL_DARK_MODE") == "1" {
		return DarkTheme()
	}
	return LightTheme()
}

// Styles holds all the styled components
type Styles struct {
	Theme Theme

	// Layout
	App    lipgloss.Style
	Footer lipgloss.Style

	// Text
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style

	// Form
	Input              lipgloss.Style
	CharCount          lipgloss.Style
	CharCountFull      lipgloss.Style
	Suggestion         lipgloss.Style
	SuggestionSelected lipgloss.Style
	Featured           lipgloss.Style
	FeaturedKey        lipgloss.Style
	Button             lipgloss.Style
	ButtonDisabled     lipgloss.Style
	Spinner            lipgloss.Style

	// Dialogue
	DialogueBox lipgloss.Style
	RustLine    lipgloss.Style
	MartyLine   lipgloss.Style
	Narration   lipgloss.Style
}

// NewStyles creates a new Styles instance with the given theme
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		App: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Padding(1, 2),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			MarginTop(1),

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			MarginBottom(1),

		Subtitle: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),

		Body: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Error: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),

		Input: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		CharCount: lipgloss.NewStyle().
			Foreground(theme.Muted),

		CharCountFull: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		Suggestion: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			PaddingLeft(2),

		SuggestionSelected: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true).
			PaddingLeft(1).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(theme.Accent),

		Featured: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Padding(0, 1).
			MarginRight(1).
			Border(lipgloss.NormalBorder()).
			BorderForeground(theme.Border),

		FeaturedKey: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Button: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(theme.Accent).
			Padding(0, 2).
			Bold(true),

		ButtonDisabled: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Background(theme.Border).
			Padding(0, 2),

		Spinner: lipgloss.NewStyle().
			Foreground(theme.Accent),

		DialogueBox: lipgloss.NewStyle().
			MarginTop(1).
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border),

		RustLine: lipgloss.NewStyle().
			Foreground(RustColor).
			Bold(true),

		MartyLine: lipgloss.NewStyle().
			Foreground(MartyColor),

		Narration: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),
	}
}

// DefaultStyles returns styles for the detected theme
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}

// SpeakerStyle returns the line style for a speaker.
func (s Styles) SpeakerStyle(speaker interaction.Speaker) lipgloss.Style {
	switch speaker {
	case interaction.SpeakerRust:
		return s.RustLine
	case interaction.SpeakerMarty:
		return s.MartyLine
	default:
		return s.Narration
	}
}

// RenderDialogue styles each line by speaker, wrapping at width when width is
// positive. Returns "" for an empty dialogue.
func (s Styles) RenderDialogue(dialogue string, width int) string {
	lines := interaction.RenderDialogue(dialogue)
	if len(lines) == 0 {
		return ""
	}

	rendered := make([]string, len(lines))
	for i, line := range lines {
		style := s.SpeakerStyle(line.Speaker)
		if width > 0 {
			style = style.Width(width)
		}
		rendered[i] = style.Render(line.Text)
	}
	return strings.Join(rendered, "\n")
}

// RenderDivider returns a horizontal divider
func (s Styles) RenderDivider(width int) string {
	return s.Muted.Render(strings.Repeat("─", width))
}
