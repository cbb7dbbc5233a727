// Package prompts holds the persona and per-state instructions that turn a
// funnel state into a generator prompt.
package prompts

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/setter/pkg/domain"
	"github.com/aretw0/setter/pkg/ports"
	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPrompts []byte

// Entry is the prompt material for one state.
type Entry struct {
	Instruction string `yaml:"instruction"`
	Fallback    string `yaml:"fallback"`
}

// Catalog maps every funnel state to its Entry.
type Catalog struct {
	System string                 `yaml:"system"`
	States map[domain.State]Entry `yaml:"states"`
}

// Parse reads a catalog from YAML. State names go through domain.ParseState,
// so legacy names are accepted and unknown ones rejected.
func Parse(data []byte) (*Catalog, error) {
	var raw struct {
		System string           `yaml:"system"`
		States map[string]Entry `yaml:"states"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse prompt catalog: %w", err)
	}

	c := &Catalog{
		System: strings.TrimSpace(raw.System),
		States: make(map[domain.State]Entry, len(raw.States)),
	}
	for name, entry := range raw.States {
		st, err := domain.ParseState(name)
		if err != nil {
			return nil, fmt.Errorf("prompt catalog: %w", err)
		}
		c.States[st] = Entry{
			Instruction: strings.TrimSpace(entry.Instruction),
			Fallback:    strings.TrimSpace(entry.Fallback),
		}
	}
	return c, nil
}

// Load reads and validates a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := Parse(defaultPrompts)
	if err != nil {
		panic(fmt.Sprintf("prompts: embedded catalog is invalid: %v", err))
	}
	if err := c.Validate(); err != nil {
		panic(fmt.Sprintf("prompts: embedded catalog is incomplete: %v", err))
	}
	return c
})

// Default returns the embedded catalog.
func Default() *Catalog {
	return defaultCatalog()
}

// Validate requires a system prompt and a complete entry for every state.
func (c *Catalog) Validate() error {
	var problems []string
	if c.System == "" {
		problems = append(problems, "system prompt is empty")
	}
	for _, st := range domain.AllStates() {
		e, ok := c.States[st]
		switch {
		case !ok:
			problems = append(problems, fmt.Sprintf("%s is missing", st))
		case e.Instruction == "" || e.Fallback == "":
			problems = append(problems, fmt.Sprintf("%s is incomplete", st))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("prompt catalog: %s", strings.Join(problems, "; "))
	}
	return nil
}

// For returns the entry for a state.
func (c *Catalog) For(state domain.State) (Entry, bool) {
	e, ok := c.States[state]
	return e, ok
}

// Build assembles the generator prompt for the state the funnel moved to.
func (c *Catalog) Build(state domain.State, history []domain.Message, message string) ports.Prompt {
	e := c.States[state]
	return ports.Prompt{
		State:       state,
		System:      c.System,
		Instruction: e.Instruction,
		Fallback:    e.Fallback,
		History:     history,
		Message:     message,
	}
}
