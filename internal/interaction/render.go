package interaction

import "strings"

// Speaker identifies who a dialogue line belongs to.
type Speaker int

const (
	SpeakerNone Speaker = iota
	SpeakerMarty
	SpeakerRust
)

// Speaker prefixes, matched exactly and case-sensitively.
const (
	MartyPrefix = "Marty:"
	RustPrefix  = "Rust:"
)

// String returns the speaker's name.
func (s Speaker) String() string {
	switch s {
	case SpeakerMarty:
		return "Marty"
	case SpeakerRust:
		return "Rust"
	default:
		return "None"
	}
}

// Line is one paragraph of a rendered dialogue. Text is the original line,
// unmodified.
type Line struct {
	Text    string
	Speaker Speaker
}

// SpeakerOf classifies a line by its prefix.
func SpeakerOf(line string) Speaker {
	switch {
	case strings.HasPrefix(line, MartyPrefix):
		return SpeakerMarty
	case strings.HasPrefix(line, RustPrefix):
		return SpeakerRust
	default:
		return SpeakerNone
	}
}

// RenderDialogue splits dialogue on newlines into paragraphs. An empty
// dialogue renders nothing.
func RenderDialogue(dialogue string) []Line {
	if dialogue == "" {
		return nil
	}
	raw := strings.Split(dialogue, "\n")
	lines := make([]Line, len(raw))
	for i, text := range raw {
		lines[i] = Line{Text: text, Speaker: SpeakerOf(text)}
	}
	return lines
}
