package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnknownKind         = errors.New("UNKNOWN_VALIDATOR")
	ErrInvalidConstruction = errors.New("VALIDATOR_CONTRACT_VIOLATION")
)

// Kind names a validator policy, e.g. "credential" or "phone".
type Kind string

// Factory builds a validator from a raw constructor payload.
type Factory func(payload json.RawMessage) (Validator, error)

type registration struct {
	schema  *Schema
	factory Factory
}

// Registry maps validator kinds to factories. It is populated once at startup
// and read-only afterwards, so concurrent Build calls are safe.
type Registry struct {
	entries map[Kind]registration
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[Kind]registration)}
}

// Register binds kind to factory. schemaSrc may be empty when the payload
// shape needs no checking beyond decoding.
func (r *Registry) Register(kind Kind, schemaSrc string, factory Factory) error {
	if factory == nil {
		return fmt.Errorf("register %s: nil factory", kind)
	}
	if _, exists := r.entries[kind]; exists {
		return fmt.Errorf("register %s: kind already registered", kind)
	}

	var schema *Schema
	if schemaSrc != "" {
		s, err := CompileSchema(string(kind), schemaSrc)
		if err != nil {
			return err
		}
		schema = s
	}

	r.entries[kind] = registration{schema: schema, factory: factory}
	return nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(kind Kind, schemaSrc string, factory Factory) {
	if err := r.Register(kind, schemaSrc, factory); err != nil {
		panic(err)
	}
}

// Build constructs the validator for kind. A malformed payload is a contract
// error, never a user-facing violation.
func (r *Registry) Build(kind Kind, payload json.RawMessage) (Validator, error) {
	reg, ok := r.entries[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}

	if reg.schema != nil {
		if err := reg.schema.Check(payload); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConstruction, err)
		}
	}

	v, err := reg.factory(payload)
	if err != nil {
		if errors.Is(err, ErrInvalidConstruction) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConstruction, kind, err)
	}
	return v, nil
}

// Validate builds and runs the validator for kind in one call.
func (r *Registry) Validate(kind Kind, payload json.RawMessage) (Violations, error) {
	v, err := r.Build(kind, payload)
	if err != nil {
		return nil, err
	}
	return v.Validate(), nil
}

// Kinds lists registered kinds in sorted order.
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, 0, len(r.entries))
	for k := range r.entries {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Decode unmarshals a constructor payload into T, wrapping failures as
// contract errors.
func Decode[T any](payload json.RawMessage) (T, error) {
	var out T
	if err := json.Unmarshal(payload, &out); err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalidConstruction, err)
	}
	return out, nil
}
