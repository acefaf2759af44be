package translate

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/crucible-convert/internal/mapping"
)

// ErrMalformed reports a structural section whose shape a handler cannot use.
var ErrMalformed = errors.New("malformed section")

// SourceItem is one item entry produced by a schema adapter.
type SourceItem struct {
	// ID is the target identifier the item is emitted under.
	ID string
	// SourceID is the key of the entry in the source document.
	SourceID  string
	Type      string
	Namespace string
	Fields    *Record
}

// Context carries the state shared by the handlers of one item translation.
// A Context never outlives a single Translate call.
type Context struct {
	Item     *SourceItem
	Fields   *Record
	Registry *mapping.Registry
	// Slot is the resolved equipment slot, possibly mapping.Unslotted.
	Slot   string
	Target *TargetItem
	Logger *zap.Logger

	annotations []Annotation
}

// Annotate appends annotations to the item.
func (c *Context) Annotate(a ...Annotation) {
	c.annotations = append(c.annotations, a...)
}

// Annotations returns the annotations recorded so far.
func (c *Context) Annotations() []Annotation {
	return c.annotations
}

// ExpectSection returns the nested record under key.
//
// Postcondition: present is false when key is absent or null; err wraps
// ErrMalformed when key holds anything other than a section.
func (c *Context) ExpectSection(key string) (rec *Record, present bool, err error) {
	return expectSection(c.Fields, key)
}

// ExpectList returns the sequence under key with the same contract as
// ExpectSection.
func (c *Context) ExpectList(key string) (items []Value, present bool, err error) {
	return expectList(c.Fields, key)
}

// ExpectScalar returns the scalar text under key with the same contract as
// ExpectSection.
func (c *Context) ExpectScalar(key string) (string, bool, error) {
	v, ok := c.Fields.Find(key)
	if !ok || v.Kind() == KindNull {
		return "", false, nil
	}
	if v.Kind() != KindScalar {
		return "", true, fmt.Errorf("%q must be a scalar, got %s: %w", key, v.String(), ErrMalformed)
	}
	return v.Raw(), true, nil
}

// ExpectStrings returns the items of the sequence under key, each of which
// must be a scalar.
func (c *Context) ExpectStrings(key string) ([]string, bool, error) {
	return ExpectStringsIn(c.Fields, key)
}

// ExpectStringsIn is ExpectStrings for a nested record.
func ExpectStringsIn(r *Record, key string) ([]string, bool, error) {
	items, present, err := expectList(r, key)
	if err != nil || !present {
		return nil, present, err
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		if item.Kind() != KindScalar {
			return nil, true, fmt.Errorf("%q item %d must be a scalar, got %s: %w", key, i, item.String(), ErrMalformed)
		}
		out = append(out, item.Raw())
	}
	return out, true, nil
}

func expectSection(r *Record, key string) (*Record, bool, error) {
	v, ok := r.Find(key)
	if !ok || v.Kind() == KindNull {
		return nil, false, nil
	}
	if v.Kind() != KindSection {
		return nil, true, fmt.Errorf("%q must be a section, got %s: %w", key, v.String(), ErrMalformed)
	}
	return v.Section(), true, nil
}

func expectList(r *Record, key string) ([]Value, bool, error) {
	v, ok := r.Find(key)
	if !ok || v.Kind() == KindNull {
		return nil, false, nil
	}
	if v.Kind() != KindList {
		return nil, true, fmt.Errorf("%q must be a list, got %s: %w", key, v.String(), ErrMalformed)
	}
	return v.List(), true, nil
}

// ExpectSectionIn is ExpectSection for a nested record.
func ExpectSectionIn(r *Record, key string) (*Record, bool, error) {
	return expectSection(r, key)
}

// ExpectListIn is ExpectList for a nested record.
func ExpectListIn(r *Record, key string) ([]Value, bool, error) {
	return expectList(r, key)
}

// Handler is one structural unit of a schema. It consumes the keys it
// declares and contributes to the shared TargetItem.
type Handler interface {
	Name() string
	// Keys lists the source keys this handler consumes. Consumed keys never
	// reach the field classifier.
	Keys() []string
	Apply(c *Context) error
}

type funcHandler struct {
	name string
	keys []string
	fn   func(*Context) error
}

func (h funcHandler) Name() string { return h.name }
func (h funcHandler) Keys() []string { return h.keys }
func (h funcHandler) Apply(c *Context) error { return h.fn(c) }

// NewHandler wraps fn as a Handler.
func NewHandler(name string, keys []string, fn func(*Context) error) Handler {
	return funcHandler{name: name, keys: keys, fn: fn}
}

// Schema describes one source format: how the material is resolved, which
// keys are consumed outright, and the ordered handler list.
type Schema struct {
	Name string
	// Material resolves the target material from the item fields.
	Material func(*Record) string
	// Reserved keys are consumed without a handler.
	Reserved []string
	Handlers []Handler

	owned map[string]struct{}
}

// NewSchema builds a Schema and indexes every key its handlers consume.
//
// Precondition: material must be non-nil.
// Postcondition: returns a non-nil Schema.
func NewSchema(name string, material func(*Record) string, reserved []string, handlers ...Handler) *Schema {
	s := &Schema{
		Name:     name,
		Material: material,
		Reserved: reserved,
		Handlers: handlers,
		owned:    make(map[string]struct{}),
	}
	for _, k := range reserved {
		s.owned[mapping.NormalizeKey(k)] = struct{}{}
	}
	for _, h := range handlers {
		for _, k := range h.Keys() {
			s.owned[mapping.NormalizeKey(k)] = struct{}{}
		}
	}
	return s
}

// Owns reports whether key is consumed by a handler or reserved.
func (s *Schema) Owns(key string) bool {
	_, ok := s.owned[mapping.NormalizeKey(key)]
	return ok
}
