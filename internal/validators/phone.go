package validators

import (
	"fmt"
	"strings"

	"formation-engine/internal/common/validation"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	genericMinDigits = 7
	genericMaxDigits = 15
)

var uaeMobilePrefixes = []string{"50", "52", "54", "55", "56", "58"}

// PhoneInput is the phone validator's constructor payload. RequireCountryCode
// defaults to true when omitted.
type PhoneInput struct {
	Phone              string `json:"phone"`
	CountryCode        string `json:"countryCode,omitempty"`
	RequireCountryCode *bool  `json:"requireCountryCode,omitempty"`
}

func (in PhoneInput) requireCountryCode() bool {
	return in.RequireCountryCode == nil || *in.RequireCountryCode
}

// PhoneValidator checks a phone number against the country code table and
// the carrier rules layered on top of it.
type PhoneValidator struct {
	input PhoneInput
}

func NewPhoneValidator(input PhoneInput) *PhoneValidator {
	return &PhoneValidator{input: input}
}

func (v *PhoneValidator) Validate() validation.Violations {
	var out validation.Violations

	if !validation.Check(&out, "phone", "required", strings.TrimSpace(v.input.Phone),
		ozzo.Required.Error("Phone number is required")) {
		return out
	}

	cleaned := CleanPhoneNumber(v.input.Phone)
	code, national, recognised := splitCountryCode(cleaned)
	if !recognised {
		out.Add("phone", "country_code", "Invalid or unsupported country code")
		return out
	}

	if code == "" && strings.TrimSpace(v.input.CountryCode) != "" {
		supplied := normalizeCountryCode(v.input.CountryCode)
		if _, ok := countryCodes[supplied]; !ok {
			out.Add("country_code", "country_code", fmt.Sprintf("Unsupported country code %s", supplied))
			return out
		}
		code = supplied
	}

	if code == "" {
		if v.input.requireCountryCode() {
			out.Add("phone", "country_code", "Country code is required")
			return out
		}
		validateGenericNumber(&out, national)
		return out
	}

	entry := countryCodes[code]
	switch {
	case len(national) < entry.MinLength:
		out.Add("phone", "length",
			fmt.Sprintf("Phone number is too short for %s (minimum %d digits)", code, entry.MinLength))
	case len(national) > entry.MaxLength:
		out.Add("phone", "length",
			fmt.Sprintf("Phone number is too long for %s (maximum %d digits)", code, entry.MaxLength))
	}

	validateCarrierRules(&out, code, national)
	return out
}

// validateCarrierRules applies per-country numbering rules. They run
// regardless of the length outcome.
func validateCarrierRules(out *validation.Violations, code, national string) {
	switch code {
	case "+971":
		if !hasAnyPrefix(national, uaeMobilePrefixes) {
			out.Add("phone", "format", "UAE mobile numbers must start with 50, 52, 54, 55, 56 or 58")
		}
	case "+1":
		if strings.HasPrefix(national, "0") || strings.HasPrefix(national, "1") {
			out.Add("phone", "format", "US/Canada numbers cannot start with 0 or 1")
		}
	case "+44":
		if !strings.HasPrefix(national, "7") {
			out.Add("phone", "format", "UK mobile numbers must start with 7")
		}
	}
}

func validateGenericNumber(out *validation.Violations, digits string) {
	if len(digits) < genericMinDigits || len(digits) > genericMaxDigits {
		out.Add("phone", "length", "Phone number must be between 7 and 15 digits")
	}
	if strings.HasPrefix(digits, "000") || strings.HasPrefix(digits, "11111") {
		out.Add("phone", "pattern", "Phone number appears to be invalid")
	}
}

// CleanPhoneNumber strips everything except digits and a leading '+'.
func CleanPhoneNumber(phone string) string {
	trimmed := strings.TrimSpace(phone)
	var b strings.Builder
	b.Grow(len(trimmed))
	for i, r := range trimmed {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// splitCountryCode finds the longest table prefix of a cleaned number. It
// returns recognised=false only when the number carries a '+' that matches
// no known code.
func splitCountryCode(cleaned string) (code, national string, recognised bool) {
	if !strings.HasPrefix(cleaned, "+") {
		return "", cleaned, true
	}
	digits := cleaned[1:]
	n := maxCountryCodeDigits
	if len(digits) < n {
		n = len(digits)
	}
	for ; n >= 1; n-- {
		candidate := "+" + digits[:n]
		if _, ok := countryCodes[candidate]; ok {
			return candidate, digits[n:], true
		}
	}
	return "", digits, false
}

func normalizeCountryCode(code string) string {
	cleaned := CleanPhoneNumber(code)
	if !strings.HasPrefix(cleaned, "+") {
		cleaned = "+" + cleaned
	}
	return cleaned
}

// ExtractCountryCodeOnly returns the "+NNN" code of a number, or "".
func ExtractCountryCodeOnly(phone string) string {
	code, _, _ := splitCountryCode(CleanPhoneNumber(phone))
	return code
}

// FormatPhoneNumber renders a number for display. UAE numbers use the
// "+971 NN NNN NNNN" grouping; other numbers are "code digits".
func FormatPhoneNumber(phone string) string {
	cleaned := CleanPhoneNumber(phone)
	code, national, ok := splitCountryCode(cleaned)
	if !ok || code == "" {
		return cleaned
	}
	if code == "+971" && len(national) == 9 {
		return fmt.Sprintf("%s %s %s %s", code, national[:2], national[2:5], national[5:])
	}
	return code + " " + national
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
