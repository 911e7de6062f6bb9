package chat

import (
	"strconv"
	"strings"

	"nihilistkernel/internal/logging"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update routes messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = max(msg.Width, 0)
		m.height = max(msg.Height, 0)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case submissionDoneMsg:
		m.task = nil
		if msg.result.Failed() {
			logging.UIDebug("submission for %q failed: %v", msg.result.Input, msg.result.Err)
		}
		return m, m.input.Focus()

	case spinner.TickMsg:
		if !m.controller.State().Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		if m.task != nil {
			m.task.Cancel()
		}
		m.quitting = true
		return m, tea.Quit
	}

	// Everything else waits for the in-flight request.
	if m.controller.State().Loading {
		return m, nil
	}

	key := msg.String()
	switch key {
	case "enter":
		return m.submit()

	case "up":
		m.moveHighlight(-1)
		return m, nil

	case "down":
		m.moveHighlight(1)
		return m, nil

	case "tab":
		suggestions := m.controller.State().Suggestions
		if len(suggestions) == 0 {
			return m, nil
		}
		idx := m.highlighted
		if idx < 0 || idx >= len(suggestions) {
			idx = 0
		}
		m.selectKeyword(suggestions[idx])
		return m, nil
	}

	if n, ok := featuredShortcut(key); ok {
		if n <= len(m.featured) {
			m.selectKeyword(m.featured[n-1])
		}
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		m.controller.InputChanged(after)
		if stored := m.controller.State().Input; stored != after {
			m.input.SetValue(stored)
			m.input.CursorEnd()
		}
		m.highlighted = -1
	}
	return m, cmd
}

// featuredShortcut parses "alt+N" for N in 1..9.
func featuredShortcut(key string) (int, bool) {
	digit, ok := strings.CutPrefix(key, "alt+")
	if !ok || len(digit) != 1 {
		return 0, false
	}
	n, err := strconv.Atoi(digit)
	if err != nil || n < 1 || n > maxFeatured {
		return 0, false
	}
	return n, true
}

func (m *Model) moveHighlight(delta int) {
	n := len(m.controller.State().Suggestions)
	if n == 0 {
		m.highlighted = -1
		return
	}
	next := m.highlighted + delta
	switch {
	case m.highlighted < 0 && delta > 0:
		next = 0
	case next < 0:
		next = n - 1
	case next >= n:
		next = 0
	}
	m.highlighted = next
}

func (m *Model) selectKeyword(keyword string) {
	m.controller.SelectSuggestion(keyword)
	m.input.SetValue(m.controller.State().Input)
	m.input.CursorEnd()
	m.highlighted = -1
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	task := m.controller.Submit(m.ctx)
	if task == nil {
		return m, nil
	}
	logging.UI("submitted %q", task.Input())
	m.task = task
	m.highlighted = -1
	m.input.Blur()
	return m, tea.Batch(m.spinner.Tick, waitForTask(task))
}
