// Package agents describes the supervisor's delegate agents. The supervisor
// invokes them as tools; this package only carries their descriptors so a
// client can label tool activity and inspect what the roster offers, it
// never runs them.
package agents

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/invopop/jsonschema"
)

// Capabilities flags what an agent's endpoint supports.
type Capabilities struct {
	Streaming    bool `json:"streaming"`
	Cancellation bool `json:"cancellation"`
}

// Tool is one invokable operation an agent exposes to the supervisor.
type Tool struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
}

// NewTool builds a tool descriptor whose parameter schema is reflected from
// the given parameter struct.
func NewTool[T any](name string, description string) Tool {
	reflector := jsonschema.Reflector{DoNotReference: true}
	var params T
	var schema *jsonschema.Schema
	if reflect.TypeOf(params) != nil && reflect.TypeOf(params).Kind() == reflect.Ptr {
		schema = reflector.ReflectFromType(reflect.TypeOf(params).Elem())
	} else {
		schema = reflector.Reflect(params)
	}

	return Tool{
		Name:        name,
		Description: description,
		Parameters:  schema,
	}
}

// Card is an agent's descriptor: who it is, where it lives, and which tools
// it exposes.
type Card struct {
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Endpoint     string       `json:"endpoint"`
	Version      string       `json:"version"`
	Capabilities Capabilities `json:"capabilities"`
	Tools        []Tool       `json:"tools,omitempty"`
}

// Roster is a registry of agent cards, keyed by agent name. The zero value
// is ready to use and safe for concurrent access.
type Roster struct {
	mu     sync.RWMutex
	byName map[string]Card
}

// Register adds a card to the roster. Registering a name twice is an error;
// cards are descriptors, not live state, so there is nothing to update.
func (r *Roster) Register(card Card) error {
	if card.Name == "" {
		return fmt.Errorf("agent card has no name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byName == nil {
		r.byName = map[string]Card{}
	}
	if _, ok := r.byName[card.Name]; ok {
		return fmt.Errorf("agent %q already registered", card.Name)
	}
	r.byName[card.Name] = card
	return nil
}

// Resolve returns the card registered under the given agent name.
func (r *Roster) Resolve(name string) (Card, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	card, ok := r.byName[name]
	return card, ok
}

// ResolveTool finds the agent exposing the given tool. Tool notifications
// carry tool names, not agent names; this is the lookup that attributes
// them.
func (r *Roster) ResolveTool(toolName string) (Card, Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range r.sortedNames() {
		for _, tool := range r.byName[name].Tools {
			if tool.Name == toolName {
				return r.byName[name], tool, true
			}
		}
	}
	return Card{}, Tool{}, false
}

// Names lists the registered agent names in stable order.
func (r *Roster) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedNames()
}

func (r *Roster) sortedNames() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
