// Package spellbook holds the named spells a host offers its players: a
// validated registry of axiom sequences, a sandboxed Lua loader for
// designer-authored books, and the JSON schema contract for editor
// tooling.
package spellbook

import (
	"errors"
	"fmt"
	"strings"

	"rune-and-ruin/server/spell"
)

var (
	errEmptyDefinitionID = errors.New("definition id must not be empty")
	errNoInstructions    = errors.New("definition has no instructions")
	errDuplicateID       = errors.New("duplicate definition id")
)

// Definition associates a spell id with the axiom sequence the interpreter
// runs when it is cast. Name and Description are player-facing.
type Definition struct {
	ID           string        `json:"id" jsonschema:"title=Spell id,pattern=^[a-z0-9\\-]+$,description=Stable identifier casts refer to"`
	Name         string        `json:"name" jsonschema:"title=Display name"`
	Description  string        `json:"description,omitempty" jsonschema:"description=Player-facing flavor text"`
	Instructions []spell.Axiom `json:"instructions" jsonschema:"description=Ordered axiom list executed one instruction per tick"`
}

func (d Definition) validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return errEmptyDefinitionID
	}
	if len(d.Instructions) == 0 {
		return fmt.Errorf("%w: %q", errNoInstructions, d.ID)
	}
	for i, ax := range d.Instructions {
		if err := ax.Validate(); err != nil {
			return fmt.Errorf("definition %q instruction %d: %w", d.ID, i, err)
		}
	}
	return nil
}

// Registry is an ordered collection of spell definitions. Callers should
// Validate before use; order is preserved so books render the way their
// author arranged them.
type Registry []Definition

// Validate ensures ids are unique and every definition would pass cast
// validation.
func (r Registry) Validate() error {
	seen := make(map[string]struct{}, len(r))
	for _, def := range r {
		if err := def.validate(); err != nil {
			return fmt.Errorf("spellbook: %w", err)
		}
		if _, exists := seen[def.ID]; exists {
			return fmt.Errorf("spellbook: %w: %q", errDuplicateID, def.ID)
		}
		seen[def.ID] = struct{}{}
	}
	return nil
}

// Index materialises a lookup map from the registry after validation.
func (r Registry) Index() (map[string]Definition, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	out := make(map[string]Definition, len(r))
	for _, def := range r {
		out[def.ID] = def
	}
	return out, nil
}

// MustIndex materialises the registry and panics if validation fails.
// Useful for tests and compiled-in books.
func (r Registry) MustIndex() map[string]Definition {
	index, err := r.Index()
	if err != nil {
		panic(err)
	}
	return index
}

// Merge overlays other on top of r: definitions with matching ids are
// replaced, new ones appended in order. Loaded books extend the default
// book this way.
func (r Registry) Merge(other Registry) Registry {
	merged := make(Registry, len(r), len(r)+len(other))
	copy(merged, r)
	at := make(map[string]int, len(merged))
	for i, def := range merged {
		at[def.ID] = i
	}
	for _, def := range other {
		if i, exists := at[def.ID]; exists {
			merged[i] = def
			continue
		}
		at[def.ID] = len(merged)
		merged = append(merged, def)
	}
	return merged
}
