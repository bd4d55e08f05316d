package cmdutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/quillmem/quill/internal/config"
)

func TestResolvePath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"home relative", "~/notes/a.md", "/home/tester/notes/a.md"},
		{"absolute", "/var/data/a.md", "/var/data/a.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolvePath(tt.in)
			if err != nil {
				t.Fatalf("ResolvePath(%q); %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ResolvePath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolvePathRelative(t *testing.T) {
	got, err := ResolvePath("notes/a.md")
	if err != nil {
		t.Fatalf("ResolvePath; %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("ResolvePath returned non-absolute path %q", got)
	}
}

func TestRuntimeRoundTrip(t *testing.T) {
	cfg := config.NewDefaultConfig()
	rt := &Runtime{Config: &cfg}

	cmd := &cobra.Command{Use: "test"}
	cmd.SetContext(WithRuntime(context.Background(), rt))

	got, err := RuntimeFrom(cmd)
	if err != nil {
		t.Fatalf("RuntimeFrom; %v", err)
	}
	if got != rt {
		t.Error("RuntimeFrom returned a different runtime")
	}
}

func TestRuntimeFromMissing(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.SetContext(context.Background())

	if _, err := RuntimeFrom(cmd); err == nil {
		t.Error("expected error for uninitialized runtime")
	}
}
