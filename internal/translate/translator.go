// Package translate converts source item records into target items,
// rendering them as ordered text with advisory annotations for every source
// field that has no direct target equivalent.
package translate

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/crucible-convert/internal/mapping"
)

// ErrHandlerPanic wraps a panic recovered from a handler.
var ErrHandlerPanic = errors.New("handler panicked")

// Translator applies one Schema to source items. It holds no per-item state
// and is safe for concurrent use.
type Translator struct {
	schema *Schema
	hook   FieldHook
	logger *zap.Logger
}

// Option configures a Translator.
type Option func(*Translator)

// WithHook installs a FieldHook consulted for unmapped numeric fields.
func WithHook(h FieldHook) Option {
	return func(t *Translator) { t.hook = h }
}

// NewTranslator creates a Translator for schema.
//
// Precondition: schema and logger must be non-nil.
// Postcondition: returns a non-nil Translator.
func NewTranslator(schema *Schema, logger *zap.Logger, opts ...Option) *Translator {
	t := &Translator{schema: schema, logger: logger}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Schema returns the schema the translator applies.
func (t *Translator) Schema() *Schema { return t.schema }

// Translate converts one item against the registry snapshot reg.
//
// Precondition: reg and item must be non-nil; item.Fields must be non-nil.
// Postcondition: returns a Translation or an error describing why the item
// could not be converted. A panicking handler is reported as an error
// wrapping ErrHandlerPanic.
func (t *Translator) Translate(reg *mapping.Registry, item *SourceItem) (tr *Translation, err error) {
	defer func() {
		if r := recover(); r != nil {
			tr = nil
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()

	target := &TargetItem{ID: item.ID, Material: t.schema.Material(item.Fields)}
	c := &Context{
		Item:     item,
		Fields:   item.Fields,
		Registry: reg,
		Slot:     reg.SlotFor(item.Type),
		Target:   target,
		Logger:   t.logger,
	}

	for _, h := range t.schema.Handlers {
		if err := h.Apply(c); err != nil {
			return nil, fmt.Errorf("%s: %w", h.Name(), err)
		}
	}

	for _, key := range item.Fields.Keys() {
		if t.schema.Owns(key) {
			continue
		}
		v, _ := item.Fields.Get(key)
		classifyField(c, t.hook, key, v)
	}

	return &Translation{Item: target, Annotations: c.Annotations()}, nil
}
