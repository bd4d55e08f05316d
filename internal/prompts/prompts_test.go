package prompts

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadEmbedded(t *testing.T) {
	p := NewProvider()

	text, err := p.Load(AskWithFacts)
	if err != nil {
		t.Fatalf("Load; %v", err)
	}
	for _, want := range []string{"{{$facts}}", "{{$input}}", "{{$notFound}}"} {
		if !strings.Contains(text, want) {
			t.Errorf("template missing %s", want)
		}
	}
}

func TestLoadNotFound(t *testing.T) {
	p := NewProvider()

	if _, err := p.Load("no-such-template"); !errors.Is(err, ErrPromptNotFound) {
		t.Errorf("expected ErrPromptNotFound, got %v", err)
	}
}

func TestLoadOverrideDir(t *testing.T) {
	dir := t.TempDir()
	custom := "Custom: {{$input}}"
	if err := os.WriteFile(filepath.Join(dir, AskWithFacts+".txt"), []byte(custom), 0644); err != nil {
		t.Fatalf("write override; %v", err)
	}

	p := NewProvider(WithOverrideDir(dir))
	text, err := p.Load(AskWithFacts)
	if err != nil {
		t.Fatalf("Load; %v", err)
	}
	if text != custom {
		t.Errorf("override not used: %q", text)
	}

	// Names without an override still resolve to the embedded template.
	p2 := NewProvider(WithOverrideDir(t.TempDir()))
	if _, err := p2.Load(AskWithFacts); err != nil {
		t.Errorf("embedded fallback failed; %v", err)
	}
}

func TestRender(t *testing.T) {
	p := NewProvider()

	out, err := p.Render(AskWithFacts, map[string]string{
		"facts":    "==== Information ====\nThe sky is blue.\n",
		"input":    "What color is the sky?",
		"notFound": "INFO NOT FOUND",
	})
	if err != nil {
		t.Fatalf("Render; %v", err)
	}
	if strings.Contains(out, "{{$") {
		t.Errorf("unsubstituted variables remain:\n%s", out)
	}
	if !strings.Contains(out, "The sky is blue.") {
		t.Error("facts not substituted")
	}
	if !strings.Contains(out, "Question: What color is the sky?") {
		t.Error("input not substituted")
	}
}

func TestSubstituteLeavesUnknown(t *testing.T) {
	out := Substitute("{{$known}} and {{$unknown}}", map[string]string{"known": "yes"})
	if out != "yes and {{$unknown}}" {
		t.Errorf("got %q", out)
	}
}
