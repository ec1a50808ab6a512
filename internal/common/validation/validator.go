// Package validation holds the validator contract shared by every domain
// validator: tagged violations, composition, and kind-keyed construction.
package validation

import (
	"strings"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
)

// Violation is one failed rule on one field.
type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Violations is the result of a validation run. Empty means valid.
type Violations []Violation

// Add appends a violation.
func (vs *Violations) Add(field, rule, message string) {
	*vs = append(*vs, Violation{Field: field, Rule: rule, Message: message})
}

// Append appends all violations from other.
func (vs *Violations) Append(other Violations) {
	*vs = append(*vs, other...)
}

func (vs Violations) Valid() bool {
	return len(vs) == 0
}

// Messages returns the human-readable messages in rule order.
func (vs Violations) Messages() []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Message)
	}
	return out
}

// ForField returns the violations recorded against field.
func (vs Violations) ForField(field string) Violations {
	var out Violations
	for _, v := range vs {
		if v.Field == field {
			out = append(out, v)
		}
	}
	return out
}

// Has reports whether field failed rule.
func (vs Violations) Has(field, rule string) bool {
	for _, v := range vs {
		if v.Field == field && v.Rule == rule {
			return true
		}
	}
	return false
}

// Join renders the messages as a single line for storage on a workflow step.
func (vs Violations) Join() string {
	return strings.Join(vs.Messages(), "; ")
}

// Validator checks the input it was constructed with. Implementations must be
// pure: calling Validate twice returns the same violations.
type Validator interface {
	Validate() Violations
}

// ValidatorFunc adapts a plain function to Validator.
type ValidatorFunc func() Violations

func (f ValidatorFunc) Validate() Violations {
	return f()
}

// Chain runs every validator and accumulates all violations.
type Chain []Validator

func (c Chain) Validate() Violations {
	var out Violations
	for _, v := range c {
		out.Append(v.Validate())
	}
	return out
}

// Run returns the error messages of v. An empty slice means valid.
func Run(v Validator) []string {
	return v.Validate().Messages()
}

// Check applies a single ozzo rule to value and records a violation tagged
// with rule when it fails. Internal rule errors indicate a misuse of the rule
// and panic.
func Check(vs *Violations, field, rule string, value interface{}, r ozzo.Rule) bool {
	err := ozzo.Validate(value, r)
	if err == nil {
		return true
	}
	if internal, ok := err.(ozzo.InternalError); ok {
		panic(internal)
	}
	vs.Add(field, rule, err.Error())
	return false
}
