package validators

import (
	"regexp"

	"formation-engine/internal/common/validation"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
)

const minPasswordLength = 8

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	upperRegex = regexp.MustCompile(`[A-Z]`)
	lowerRegex = regexp.MustCompile(`[a-z]`)
	digitRegex = regexp.MustCompile(`[0-9]`)
)

// CredentialInput holds the sign-up credentials to check.
type CredentialInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CredentialValidator checks email format and password strength. Every
// unmet password rule is reported.
type CredentialValidator struct {
	input CredentialInput
}

func NewCredentialValidator(input CredentialInput) *CredentialValidator {
	return &CredentialValidator{input: input}
}

func (v *CredentialValidator) Validate() validation.Violations {
	var out validation.Violations

	if validation.Check(&out, "email", "required", v.input.Email,
		ozzo.Required.Error("Email is required")) {
		validation.Check(&out, "email", "format", v.input.Email,
			ozzo.Match(emailRegex).Error("Invalid email format"))
	}

	pw := v.input.Password
	if !validation.Check(&out, "password", "required", pw,
		ozzo.Required.Error("Password is required")) {
		return out
	}

	validation.Check(&out, "password", "min_length", pw,
		ozzo.RuneLength(minPasswordLength, 0).Error("Password must be at least 8 characters long"))
	validation.Check(&out, "password", "uppercase", pw,
		ozzo.Match(upperRegex).Error("Password must contain at least one uppercase letter"))
	validation.Check(&out, "password", "lowercase", pw,
		ozzo.Match(lowerRegex).Error("Password must contain at least one lowercase letter"))
	validation.Check(&out, "password", "digit", pw,
		ozzo.Match(digitRegex).Error("Password must contain at least one digit"))

	return out
}
