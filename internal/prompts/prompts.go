// Package prompts loads the chat prompt templates used by the ask engine.
// Templates ship embedded in the binary and can be overridden from a
// directory on disk.
package prompts

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed templates/*.txt
var embedded embed.FS

// AskWithFacts is the template that grounds an answer on retrieved facts.
const AskWithFacts = "ask-with-facts"

// ErrPromptNotFound is returned when no template exists under the given
// name.
var ErrPromptNotFound = errors.New("prompt not found")

// Provider resolves prompt templates by name.
type Provider struct {
	overrideDir string
}

// Option configures the Provider.
type Option func(*Provider)

// WithOverrideDir makes templates in dir shadow the embedded ones.
func WithOverrideDir(dir string) Option {
	return func(p *Provider) {
		p.overrideDir = dir
	}
}

// NewProvider creates a prompt provider.
func NewProvider(opts ...Option) *Provider {
	p := &Provider{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Load returns the raw template text for the given name.
func (p *Provider) Load(name string) (string, error) {
	if p.overrideDir != "" {
		path := filepath.Join(p.overrideDir, name+".txt")
		data, err := os.ReadFile(path)
		if err == nil {
			return string(data), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to read prompt override %q; %w", path, err)
		}
	}

	data, err := embedded.ReadFile("templates/" + name + ".txt")
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrPromptNotFound, name)
	}
	return string(data), nil
}

// Render loads a template and substitutes its {{$name}} variables. Unknown
// variables are left in place.
func (p *Provider) Render(name string, vars map[string]string) (string, error) {
	text, err := p.Load(name)
	if err != nil {
		return "", err
	}
	return Substitute(text, vars), nil
}

// Substitute replaces {{$name}} placeholders in the template text.
func Substitute(text string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{{$"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
