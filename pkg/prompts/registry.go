package prompts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/richard-senior/htft/internal/logger"
	"github.com/richard-senior/htft/pkg/protocol"
)

var (
	ErrPromptNotFound  = errors.New("prompt not found")
	ErrMissingArgument = errors.New("missing required argument")
)

// Renderer produces the text of a prompt from its arguments. Prompts
// registered without one substitute {{name}} placeholders in Content.
type Renderer func(ctx context.Context, args map[string]string) (string, error)

// Registry manages the prompts advertised through prompts/list
type Registry struct {
	mu       sync.RWMutex
	prompts  []protocol.Prompt
	renderer map[string]Renderer
}

func NewRegistry() *Registry {
	return &Registry{renderer: make(map[string]Renderer)}
}

// Register adds a prompt. Names must be unique.
func (r *Registry) Register(p protocol.Prompt, render Renderer) error {
	if p.Name == "" {
		return fmt.Errorf("prompt name cannot be empty")
	}
	if strings.ContainsAny(p.Name, "/\\ ") {
		return fmt.Errorf("invalid prompt name format: %s", p.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.find(p.Name) >= 0 {
		return fmt.Errorf("prompt %q already registered", p.Name)
	}
	r.prompts = append(r.prompts, p)
	if render != nil {
		r.renderer[p.Name] = render
	}
	logger.Info("Registered prompt:", p.Name)
	return nil
}

func (r *Registry) find(name string) int {
	for i, p := range r.prompts {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// List returns the registered prompts in registration order
func (r *Registry) List() []protocol.Prompt {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]protocol.Prompt, len(r.prompts))
	copy(out, r.prompts)
	return out
}

// Get renders the named prompt as a single user message
func (r *Registry) Get(ctx context.Context, name string, args map[string]string) (*protocol.PromptGetResult, error) {
	r.mu.RLock()
	i := r.find(name)
	var p protocol.Prompt
	if i >= 0 {
		p = r.prompts[i]
	}
	render := r.renderer[name]
	r.mu.RUnlock()

	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrPromptNotFound, name)
	}
	for _, a := range p.Arguments {
		if a.Required && strings.TrimSpace(args[a.Name]) == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingArgument, a.Name)
		}
	}

	var (
		text string
		err  error
	)
	if render != nil {
		text, err = render(ctx, args)
		if err != nil {
			return nil, err
		}
	} else {
		text = substitute(p.Content, args)
	}

	return &protocol.PromptGetResult{
		Description: p.Description,
		Messages: []protocol.PromptMessage{
			{
				Role:    "user",
				Content: protocol.PromptContent{Type: "text", Text: text},
			},
		},
	}, nil
}

func substitute(content string, args map[string]string) string {
	for key, value := range args {
		content = strings.ReplaceAll(content, "{{"+key+"}}", value)
	}
	return content
}
