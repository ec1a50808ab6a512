package validators

import (
	"fmt"
	"strings"

	"formation-engine/internal/common/validation"
	"formation-engine/internal/models"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

var hundredPercent = decimal.NewFromInt(100)

// ApplicationRules are the configurable thresholds used by application checks.
type ApplicationRules struct {
	// Minimum share capital per partner visa. Zero disables the check.
	PartnerVisaCapital decimal.Decimal
}

// DefaultApplicationRules returns the standard thresholds.
func DefaultApplicationRules() ApplicationRules {
	return ApplicationRules{PartnerVisaCapital: decimal.NewFromInt(48000)}
}

type applicationCheck func(app *models.Application, rules ApplicationRules, out *validation.Violations)

// ApplicationValidator runs a fixed set of checks over an application and
// reports every failure.
type ApplicationValidator struct {
	app    *models.Application
	rules  ApplicationRules
	checks []applicationCheck
}

func (v *ApplicationValidator) Validate() validation.Violations {
	var out validation.Violations
	for _, check := range v.checks {
		check(v.app, v.rules, &out)
	}
	return out
}

func newApplicationValidator(app *models.Application, rules ApplicationRules, checks ...applicationCheck) *ApplicationValidator {
	if app == nil {
		panic("validators: nil application")
	}
	return &ApplicationValidator{app: app, rules: rules, checks: checks}
}

// NewSubmissionReadinessValidator checks that an application carries
// everything required for submission.
func NewSubmissionReadinessValidator(app *models.Application, rules ApplicationRules) *ApplicationValidator {
	return newApplicationValidator(app, rules,
		checkLicenseValidity,
		checkActivitiesPresent,
		checkNameOptions,
		checkShareCapital,
		checkShareholdersPresent,
		checkDirectorsPresent,
		checkGMSignatory,
		checkTermsAccepted,
		checkCompanyName,
		checkFreezone,
		checkPeople,
		checkShareTotal,
		checkVisaAllocation,
		checkPartnerVisaCapital,
		checkBeneficialOwners,
	)
}

var stepChecks = map[models.StepType][]applicationCheck{
	models.StepLicenseVisa: {
		checkLicenseValidity,
		checkVisaAllocation,
	},
	models.StepActivities: {
		checkActivitiesPresent,
		checkActivityCodes,
	},
	models.StepNames: {
		checkCompanyName,
		checkNameOptions,
	},
	models.StepMembers: {
		checkShareholdersPresent,
		checkDirectorsPresent,
		checkPeople,
		checkShareTotal,
		checkShareCapital,
		checkPartnerVisaCapital,
		checkGMSignatory,
	},
	models.StepUBODeclaration: {
		checkBeneficialOwners,
	},
}

// NewStepValidator returns the validator gating a formation step. The review
// step is gated by submission readiness.
func NewStepValidator(step models.StepType, app *models.Application, rules ApplicationRules) (*ApplicationValidator, error) {
	if step == models.StepReview {
		return NewSubmissionReadinessValidator(app, rules), nil
	}
	checks, ok := stepChecks[step]
	if !ok {
		return nil, fmt.Errorf("%w: no validator for step %q", validation.ErrInvalidConstruction, step)
	}
	return newApplicationValidator(app, rules, checks...), nil
}

// ==========================
// License & visas
// ==========================

func checkLicenseValidity(app *models.Application, _ ApplicationRules, out *validation.Violations) {
	if validation.Check(out, "license.trade_license_validity", "required", app.License.TradeLicenseValidity,
		ozzo.Required.Error("Trade license validity is required")) {
		validation.Check(out, "license.trade_license_validity", "min", app.License.TradeLicenseValidity,
			ozzo.Min(1).Error("Trade license validity must be at least 1 year"))
	}
}

func checkVisaAllocation(app *models.Application, _ ApplicationRules, out *validation.Violations) {
	lic := app.License
	if lic.VisaPackage < 0 || lic.InsideCountryVisas < 0 || lic.OutsideCountryVisas < 0 || lic.PartnerVisaCount < 0 {
		out.Add("license.visa_package", "min", "Visa counts cannot be negative")
		return
	}
	if lic.InsideCountryVisas+lic.OutsideCountryVisas != lic.VisaPackage {
		out.Add("license.visa_package", "visa_split",
			fmt.Sprintf("Inside and outside country visas must add up to the visa package (%d)", lic.VisaPackage))
	}
	if lic.PartnerVisaCount > lic.VisaPackage {
		out.Add("license.partner_visa_count", "max", "Partner visas cannot exceed the visa package")
	}
	if lic.VisaPackage > 0 && !lic.EstablishmentCard {
		out.Add("license.establishment_card", "required", "Establishment card is required when visas are included")
	}
}

// ==========================
// Activities & names
// ==========================

func checkActivitiesPresent(app *models.Application, _ ApplicationRules, out *validation.Violations) {
	validation.Check(out, "activity_codes", "required", app.ActivityCodes,
		ozzo.Required.Error("At least one business activity is required"))
}

func checkActivityCodes(app *models.Application, _ ApplicationRules, out *validation.Violations) {
	seen := make(map[string]bool, len(app.ActivityCodes))
	for _, code := range app.ActivityCodes {
		code = strings.TrimSpace(code)
		if code == "" {
			out.Add("activity_codes", "required", "Activity code cannot be empty")
			continue
		}
		if seen[code] {
			out.Add("activity_codes", "unique", fmt.Sprintf("Duplicate business activity %s", code))
		}
		seen[code] = true
	}
}

func checkNameOptions(app *models.Application, _ ApplicationRules, out *validation.Violations) {
	for _, name := range app.NameOptions {
		if strings.TrimSpace(name) != "" {
			return
		}
	}
	out.Add("name_options", "required", "At least one company name option is required")
}

func checkCompanyName(app *models.Application, _ ApplicationRules, out *validation.Violations) {
	validation.Check(out, "company_name", "required", strings.TrimSpace(app.CompanyName),
		ozzo.Required.Error("Company name is required"))
}

func checkFreezone(app *models.Application, _ ApplicationRules, out *validation.Violations) {
	validation.Check(out, "freezone_id", "required", strings.TrimSpace(app.FreezoneID),
		ozzo.Required.Error("Freezone is required"))
}

func checkGMSignatory(app *models.Application, _ ApplicationRules, out *validation.Violations) {
	validation.Check(out, "gm_signatory_name", "required", strings.TrimSpace(app.GMSignatoryName),
		ozzo.Required.Error("General manager signatory name is required"))
}

func checkTermsAccepted(app *models.Application, _ ApplicationRules, out *validation.Violations) {
	validation.Check(out, "terms_accepted", "required", app.TermsAccepted,
		ozzo.Required.Error("Terms and conditions must be accepted"))
}

// ==========================
// Members & capital
// ==========================

func checkShareholdersPresent(app *models.Application, _ ApplicationRules, out *validation.Violations) {
	validation.Check(out, "shareholders", "required", app.Shareholders,
		ozzo.Required.Error("At least one shareholder is required"))
}

func checkDirectorsPresent(app *models.Application, _ ApplicationRules, out *validation.Violations) {
	validation.Check(out, "directors", "required", app.Directors,
		ozzo.Required.Error("At least one director is required"))
}

func checkShareCapital(app *models.Application, _ ApplicationRules, out *validation.Violations) {
	if !app.ShareCapital.IsPositive() {
		out.Add("share_capital", "required", "Share capital is required")
	}
}

func checkPeople(app *models.Application, _ ApplicationRules, out *validation.Violations) {
	for i, p := range app.Shareholders {
		checkPerson(out, fmt.Sprintf("shareholders[%d]", i), "shareholder", "", i, p)
		if !p.SharePercentage.IsPositive() {
			out.Add(fmt.Sprintf("shareholders[%d].share_percentage", i), "min",
				fmt.Sprintf("Share percentage must be greater than 0 for shareholder %s", p.DisplayName()))
		}
	}
	for i, p := range app.Directors {
		checkPerson(out, fmt.Sprintf("directors[%d]", i), "director", "", i, p)
	}
}

// checkPerson validates identity fields. owner, when set, names the
// corporate shareholder a beneficial owner belongs to.
func checkPerson(out *validation.Violations, field, role, owner string, index int, p models.Person) {
	name := p.Name
	if p.IsCorporate() {
		name = p.LegalName
	}
	suffix := ""
	if owner != "" {
		suffix = " (" + owner + ")"
	}
	if strings.TrimSpace(name) == "" {
		out.Add(field+".name", "required", fmt.Sprintf("Name is required for %s #%d%s", role, index+1, suffix))
	}

	who := p.DisplayName() + suffix
	validation.Check(out, field+".nationality", "required", strings.TrimSpace(p.Nationality),
		ozzo.Required.Error(fmt.Sprintf("Nationality is required for %s %s", role, who)))

	if p.IsCorporate() {
		validation.Check(out, field+".registration_number", "required", strings.TrimSpace(p.RegistrationNumber),
			ozzo.Required.Error(fmt.Sprintf("Registration number is required for %s %s", role, who)))
	} else {
		validation.Check(out, field+".passport_number", "required", strings.TrimSpace(p.PassportNumber),
			ozzo.Required.Error(fmt.Sprintf("Passport number is required for %s %s", role, who)))
	}
}

func checkShareTotal(app *models.Application, _ ApplicationRules, out *validation.Violations) {
	if len(app.Shareholders) == 0 {
		return
	}
	total := app.TotalShares()
	if !total.Equal(hundredPercent) {
		out.Add("shareholders", "share_total",
			fmt.Sprintf("Total shareholding must equal 100%% (currently %s%%)", total.String()))
	}
}

func checkPartnerVisaCapital(app *models.Application, rules ApplicationRules, out *validation.Violations) {
	if warning, ok := PartnerVisaCapitalShortfall(app, rules.PartnerVisaCapital); ok {
		out.Add("share_capital", "partner_visa_capital", warning)
	}
}

// PartnerVisaCapitalShortfall reports whether share capital is below the
// minimum required for the requested partner visas, with a message.
func PartnerVisaCapitalShortfall(app *models.Application, perVisa decimal.Decimal) (string, bool) {
	count := app.License.PartnerVisaCount
	if count <= 0 || !perVisa.IsPositive() {
		return "", false
	}
	required := perVisa.Mul(decimal.NewFromInt(int64(count)))
	if app.ShareCapital.GreaterThanOrEqual(required) {
		return "", false
	}
	return fmt.Sprintf("Share capital of %s is below the %s required for %d partner visa(s)",
		app.ShareCapital.StringFixed(2), required.StringFixed(2), count), true
}

// ==========================
// Beneficial owners
// ==========================

func checkBeneficialOwners(app *models.Application, _ ApplicationRules, out *validation.Violations) {
	for i, sh := range app.Shareholders {
		if !sh.IsUBO() {
			continue
		}
		field := fmt.Sprintf("shareholders[%d].beneficial_owners", i)
		if len(sh.BeneficialOwners) == 0 {
			out.Add(field, "required",
				fmt.Sprintf("Beneficial owner declaration is required for shareholder %s", sh.DisplayName()))
			continue
		}
		for j, bo := range sh.BeneficialOwners {
			checkPerson(out, fmt.Sprintf("%s[%d]", field, j), "beneficial owner", sh.DisplayName(), j, bo)
		}
	}
}
