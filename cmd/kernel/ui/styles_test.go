package ui

import (
	"strings"
	"testing"

	"nihilistkernel/internal/interaction"
)

func TestDetectTheme(t *testing.T) {
	t.Setenv("COLORFGBG", "")
	t.Setenv("KERNEL_DARK_MODE", "1")
	dark := DetectTheme()
	if !dark.IsDark {
		t.Fatalf("expected dark theme when KERNEL_DARK_MODE=1")
	}

	t.Setenv("KERNEL_DARK_MODE", "")
	light := DetectTheme()
	if light.IsDark {
		t.Fatalf("expected light theme when KERNEL_DARK_MODE is unset")
	}

	t.Setenv("COLORFGBG", "15;0")
	if !DetectTheme().IsDark {
		t.Fatalf("expected dark theme for COLORFGBG background 0")
	}

	t.Setenv("COLORFGBG", "0;15")
	if DetectTheme().IsDark {
		t.Fatalf("expected light theme for COLORFGBG background 15")
	}
}

func TestSpeakerStyle(t *testing.T) {
	s := NewStyles(LightTheme())

	if got := s.SpeakerStyle(interaction.SpeakerRust).GetForeground(); got != RustColor {
		t.Errorf("Rust foreground = %v, want %v", got, RustColor)
	}
	if got := s.SpeakerStyle(interaction.SpeakerMarty).GetForeground(); got != MartyColor {
		t.Errorf("Marty foreground = %v, want %v", got, MartyColor)
	}
	if !s.SpeakerStyle(interaction.SpeakerNone).GetItalic() {
		t.Errorf("narration should be italic")
	}
}

func TestRenderDialogue(t *testing.T) {
	s := NewStyles(DarkTheme())

	if got := s.RenderDialogue("", 40); got != "" {
		t.Fatalf("empty dialogue rendered %q", got)
	}

	out := s.RenderDialogue("Marty: hi\nRust: hello", 0)
	if !strings.Contains(out, "Marty: hi") || !strings.Contains(out, "Rust: hello") {
		t.Fatalf("rendered dialogue lost text: %q", out)
	}
	if n := strings.Count(out, "\n") + 1; n != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", n, out)
	}
}

func TestRenderDivider(t *testing.T) {
	s := NewStyles(LightTheme())
	if got := s.RenderDivider(5); !strings.Contains(got, "─────") {
		t.Fatalf("divider = %q", got)
	}
}
