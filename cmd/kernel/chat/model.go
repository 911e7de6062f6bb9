// Package chat is the interactive terminal form: type or pick a tech keyword,
// submit it, and read what Rust and Marty make of it.
package chat

import (
	"context"
	"fmt"

	"nihilistkernel/cmd/kernel/ui"
	"nihilistkernel/internal/interaction"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	Title       = "The Nihilist's Kernel"
	Subtitle    = "Time is a flat circle. So is your call stack."
	Placeholder = "Choose a keyword..."

	ButtonIdle    = "Start Conversation"
	ButtonLoading = "Generating..."

	// maxFeatured is how many featured keywords get an alt+N shortcut.
	maxFeatured = 9
)

// Config holds what the form needs to run.
type Config struct {
	Controller *interaction.Controller
	// Featured keywords are shown as quick picks.
	Featured []string
	Styles   ui.Styles
	// Context parents every submission; cancelling it aborts the in-flight
	// request.
	Context context.Context
}

// submissionDoneMsg is delivered when the in-flight task settles.
type submissionDoneMsg struct {
	result interaction.Result
}

// Model is the bubbletea model for the form.
type Model struct {
	controller *interaction.Controller
	featured   []string
	styles     ui.Styles
	ctx        context.Context

	input   textinput.Model
	spinner spinner.Model

	// highlighted is the index of the highlighted suggestion, -1 for none.
	highlighted int
	task        *interaction.Task

	width    int
	height   int
	quitting bool
}

// New creates the form model.
func New(cfg Config) Model {
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}

	featured := cfg.Featured
	if len(featured) > maxFeatured {
		featured = featured[:maxFeatured]
	}

	ti := textinput.New()
	ti.Placeholder = Placeholder
	ti.Prompt = "│ "
	ti.CharLimit = interaction.MaxInputLength
	ti.Width = interaction.MaxInputLength
	ti.PromptStyle = cfg.Styles.Spinner
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = cfg.Styles.Spinner

	return Model{
		controller:  cfg.Controller,
		featured:    append([]string(nil), featured...),
		styles:      cfg.Styles,
		ctx:         ctx,
		input:       ti,
		spinner:     sp,
		highlighted: -1,
	}
}

// Init starts the cursor blinking.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Run starts the full-screen program and blocks until the user quits.
func Run(cfg Config) error {
	p := tea.NewProgram(New(cfg), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("interactive session failed: %w", err)
	}
	return nil
}

// waitForTask turns task completion into a message.
func waitForTask(task *interaction.Task) tea.Cmd {
	return func() tea.Msg {
		return submissionDoneMsg{result: task.Wait()}
	}
}
