package chat

import (
	"fmt"
	"strings"

	"nihilistkernel/internal/interaction"

	"github.com/charmbracelet/lipgloss"
)

const footerHelp = "enter submit • tab accept • ↑/↓ choose • alt+1-9 quick pick • esc quit"

// View renders the form.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	st := m.controller.State()
	s := m.styles

	var sections []string
	sections = append(sections,
		s.Title.Render(Title),
		s.Subtitle.Render(Subtitle),
		"",
		s.Input.Render(m.input.View()),
		m.renderCharCount(st),
	)

	if list := m.renderSuggestions(st.Suggestions); list != "" {
		sections = append(sections, list)
	}
	if bar := m.renderFeatured(); bar != "" {
		sections = append(sections, "", bar)
	}

	sections = append(sections, "", m.renderButton(st))

	if st.Dialogue != "" {
		sections = append(sections, m.renderDialogue(st.Dialogue))
	}

	sections = append(sections, s.Footer.Render(footerHelp))
	return s.App.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) renderCharCount(st interaction.State) string {
	count := fmt.Sprintf("%d / %d", st.CharCount(), interaction.MaxInputLength)
	if st.CharCount() >= interaction.MaxInputLength {
		return m.styles.CharCountFull.Render(count)
	}
	return m.styles.CharCount.Render(count)
}

func (m Model) renderSuggestions(suggestions []string) string {
	if len(suggestions) == 0 {
		return ""
	}
	rows := make([]string, len(suggestions))
	for i, kw := range suggestions {
		if i == m.highlighted {
			rows[i] = m.styles.SuggestionSelected.Render(kw)
		} else {
			rows[i] = m.styles.Suggestion.Render(kw)
		}
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderFeatured() string {
	if len(m.featured) == 0 {
		return ""
	}
	chips := make([]string, len(m.featured))
	for i, kw := range m.featured {
		chips[i] = m.styles.Featured.Render(m.styles.FeaturedKey.Render(fmt.Sprintf("%d ", i+1)) + kw)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, chips...)
}

func (m Model) renderButton(st interaction.State) string {
	if st.Loading {
		return m.styles.ButtonDisabled.Render(m.spinner.View() + " " + ButtonLoading)
	}
	return m.styles.Button.Render(ButtonIdle)
}

func (m Model) renderDialogue(dialogue string) string {
	width := 0
	if m.width > 10 {
		width = m.width - 10
	}
	body := m.styles.RenderDialogue(dialogue, width)
	if dialogue == interaction.ErrorDialogue {
		body = m.styles.Error.Render(dialogue)
	}
	return m.styles.DialogueBox.Render(body)
}
