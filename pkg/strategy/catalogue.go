package strategy

import (
	"fmt"
	"sync"
)

// Catalogue is an ordered set of definitions with unique names.
// Iteration order is registration order and is used to break ranking ties.
type Catalogue struct {
	mu    sync.RWMutex
	defs  []Definition
	index map[string]int
}

// New builds a catalogue from defs, rejecting invalid or duplicated entries
func New(defs ...Definition) (*Catalogue, error) {
	c := &Catalogue{index: make(map[string]int, len(defs))}
	for _, d := range defs {
		if err := c.Register(d); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Register appends a definition to the catalogue
func (c *Catalogue) Register(d Definition) error {
	if err := d.validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.index[d.Name]; exists {
		return fmt.Errorf("strategy %q is already registered", d.Name)
	}
	c.index[d.Name] = len(c.defs)
	c.defs = append(c.defs, d)
	return nil
}

// Lookup finds a definition by its exact name
func (c *Catalogue) Lookup(name string) (Definition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.index[name]
	if !ok {
		return Definition{}, false
	}
	return c.defs[i], true
}

// Definitions returns a copy of the entries in catalogue order
func (c *Catalogue) Definitions() []Definition {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Definition, len(c.defs))
	copy(out, c.defs)
	return out
}

func (c *Catalogue) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, len(c.defs))
	for i, d := range c.defs {
		names[i] = d.Name
	}
	return names
}

func (c *Catalogue) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.defs)
}
