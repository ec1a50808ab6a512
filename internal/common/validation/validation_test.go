package validation

import (
	"encoding/json"
	"errors"
	"testing"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type nameInput struct {
	Name string `json:"name"`
}

type nameValidator struct {
	input nameInput
}

func (v *nameValidator) Validate() Violations {
	var out Violations
	Check(&out, "name", "required", v.input.Name, ozzo.Required.Error("Name is required"))
	return out
}

const nameSchema = `{
	"type": "object",
	"required": ["name"],
	"properties": {"name": {"type": "string"}}
}`

func createTestRegistry(t *testing.T) *Registry {
	r := NewRegistry()
	require.NoError(t, r.Register("name", nameSchema, func(payload json.RawMessage) (Validator, error) {
		in, err := Decode[nameInput](payload)
		if err != nil {
			return nil, err
		}
		return &nameValidator{input: in}, nil
	}))
	return r
}

// ==========================
// Violations
// ==========================

func TestViolations_Messages(t *testing.T) {
	var vs Violations
	assert.True(t, vs.Valid())
	assert.Equal(t, []string{}, vs.Messages())

	vs.Add("email", "required", "Email is required")
	vs.Add("password", "min_length", "Password must be at least 8 characters long")

	assert.False(t, vs.Valid())
	assert.Equal(t, []string{"Email is required", "Password must be at least 8 characters long"}, vs.Messages())
	assert.True(t, vs.Has("email", "required"))
	assert.False(t, vs.Has("email", "format"))
	assert.Len(t, vs.ForField("password"), 1)
	assert.Equal(t, "Email is required; Password must be at least 8 characters long", vs.Join())
}

func TestChain_AccumulatesAll(t *testing.T) {
	first := ValidatorFunc(func() Violations {
		return Violations{{Field: "a", Rule: "required", Message: "A is required"}}
	})
	second := ValidatorFunc(func() Violations {
		return Violations{{Field: "b", Rule: "required", Message: "B is required"}}
	})

	msgs := Run(Chain{first, second})
	assert.Equal(t, []string{"A is required", "B is required"}, msgs)
}

func TestCheck(t *testing.T) {
	var vs Violations
	ok := Check(&vs, "size", "max_size", int64(20), ozzo.Max(int64(10)).Error("too big"))
	assert.False(t, ok)
	assert.Equal(t, Violations{{Field: "size", Rule: "max_size", Message: "too big"}}, vs)

	ok = Check(&vs, "size", "max_size", int64(5), ozzo.Max(int64(10)).Error("too big"))
	assert.True(t, ok)
	assert.Len(t, vs, 1)
}

// ==========================
// Registry
// ==========================

func TestRegistry_Build(t *testing.T) {
	r := createTestRegistry(t)

	tests := []struct {
		name     string
		kind     Kind
		payload  string
		wantErr  error
		wantMsgs []string
	}{
		{name: "valid payload", kind: "name", payload: `{"name":"Jane"}`, wantMsgs: []string{}},
		{name: "empty value is a violation", kind: "name", payload: `{"name":""}`, wantMsgs: []string{"Name is required"}},
		{name: "missing key is a contract error", kind: "name", payload: `{}`, wantErr: ErrInvalidConstruction},
		{name: "wrong type is a contract error", kind: "name", payload: `{"name":42}`, wantErr: ErrInvalidConstruction},
		{name: "unknown kind", kind: "nope", payload: `{}`, wantErr: ErrUnknownKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vs, err := r.Validate(tt.kind, json.RawMessage(tt.payload))
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMsgs, vs.Messages())
		})
	}
}

func TestRegistry_RegisterTwice(t *testing.T) {
	r := createTestRegistry(t)
	err := r.Register("name", "", func(json.RawMessage) (Validator, error) { return nil, nil })
	assert.Error(t, err)
	assert.Equal(t, []Kind{"name"}, r.Kinds())
}

func TestRegistry_BadSchema(t *testing.T) {
	r := NewRegistry()
	err := r.Register("broken", `{"type":`, func(json.RawMessage) (Validator, error) { return nil, nil })
	assert.Error(t, err)
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode[nameInput](json.RawMessage(`{"name":`))
	assert.ErrorIs(t, err, ErrInvalidConstruction)
}
