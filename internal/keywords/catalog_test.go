package keywords

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMatch(t *testing.T) {
	c, err := New([]string{"Kernel", "Kafka", "Kotlin", "API", "kubectl"}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tests := []struct {
		name   string
		prefix string
		limit  int
		want   []string
	}{
		{name: "first three in catalog order", prefix: "K", limit: 3, want: []string{"Kernel", "Kafka", "Kotlin"}},
		{name: "case insensitive", prefix: "kE", limit: 3, want: []string{"Kernel"}},
		{name: "lowercase catalog entry", prefix: "KU", limit: 3, want: []string{"kubectl"}},
		{name: "no match", prefix: "zz", limit: 3, want: nil},
		{name: "empty prefix", prefix: "", limit: 3, want: nil},
		{name: "zero limit", prefix: "K", limit: 0, want: nil},
		{name: "exact word", prefix: "api", limit: 3, want: []string{"API"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Match(tt.prefix, tt.limit)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Match(%q) mismatch (-want +got):\n%s", tt.prefix, diff)
			}
		})
	}
}

func TestNew_TrimsAndDedupes(t *testing.T) {
	c, err := New([]string{" Bash ", "", "Bash", "Git"}, []string{" Git ", ""})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if diff := cmp.Diff([]string{"Bash", "Git"}, c.All()); diff != "" {
		t.Errorf("All mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Git"}, c.Featured()); diff != "" {
		t.Errorf("Featured mismatch (-want +got):\n%s", diff)
	}
}

func TestNew_RejectsEmpty(t *testing.T) {
	if _, err := New([]string{" ", ""}, nil); err == nil {
		t.Fatal("expected error for empty catalog")
	}
}

func TestCatalog_ReturnsCopies(t *testing.T) {
	c := Default()
	all := c.All()
	all[0] = "mutated"
	if c.All()[0] == "mutated" {
		t.Error("All exposed internal slice")
	}
	featured := c.Featured()
	featured[0] = "mutated"
	if c.Featured()[0] == "mutated" {
		t.Error("Featured exposed internal slice")
	}
}

func TestDefault(t *testing.T) {
	c := Default()
	if c.Len() < 10 {
		t.Fatalf("expected a populated default catalog, got %d entries", c.Len())
	}
	want := []string{"API", "Kernel", "Bash", "Database", "LLM", "OOPS", "Compiler", "Server", "OS"}
	if diff := cmp.Diff(want, c.Featured()); diff != "" {
		t.Errorf("Featured mismatch (-want +got):\n%s", diff)
	}
	for _, kw := range c.Match("ker", 3) {
		if !strings.HasPrefix(strings.ToLower(kw), "ker") {
			t.Errorf("suggestion %q does not match prefix", kw)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	content := "keywords:\n  - Vim\n  - Emacs\nfeatured:\n  - Vim\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff([]string{"Vim", "Emacs"}, c.All()); diff != "" {
		t.Errorf("All mismatch (-want +got):\n%s", diff)
	}

	if c, err := Load(""); err != nil || c.Len() != Default().Len() {
		t.Errorf("Load(\"\") should return the default catalog, err=%v", err)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
