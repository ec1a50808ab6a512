package validators

import (
	"testing"

	"formation-engine/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestApplication() *models.Application {
	return &models.Application{
		ID:              "app-1",
		OwnerID:         "user-1",
		FreezoneID:      "ifza",
		Status:          models.ApplicationStatusDraft,
		CompanyName:     "Falcon Trading",
		NameOptions:     []string{"Falcon Trading FZCO"},
		ActivityCodes:   []string{"4690.01", "6201.00"},
		GMSignatoryName: "Jane Doe",
		License: models.LicenseConfig{
			PackageType:          "commercial",
			TradeLicenseValidity: 1,
			VisaPackage:          2,
			PartnerVisaCount:     1,
			InsideCountryVisas:   1,
			OutsideCountryVisas:  1,
			EstablishmentCard:    true,
		},
		ShareCapital: decimal.NewFromInt(50000),
		ShareValue:   decimal.NewFromInt(1000),
		Shareholders: []models.Person{
			{
				Type:            models.PersonTypeIndividual,
				Name:            "Jane Doe",
				Nationality:     "GB",
				PassportNumber:  "P1234567",
				SharePercentage: decimal.NewFromInt(100),
			},
		},
		Directors: []models.Person{
			{Type: models.PersonTypeIndividual, Name: "Jane Doe", Nationality: "GB", PassportNumber: "P1234567"},
		},
		TermsAccepted: true,
	}
}

func createCorporateShareholder(share int64) models.Person {
	return models.Person{
		Type:               models.PersonTypeCorporate,
		LegalName:          "Acme Holdings",
		Nationality:        "CY",
		RegistrationNumber: "HE12345",
		SharePercentage:    decimal.NewFromInt(share),
	}
}

// ==========================
// Submission readiness
// ==========================

func TestSubmissionReadiness_Valid(t *testing.T) {
	v := NewSubmissionReadinessValidator(createTestApplication(), DefaultApplicationRules())
	assert.Empty(t, v.Validate())
}

func TestSubmissionReadiness_Empty(t *testing.T) {
	got := NewSubmissionReadinessValidator(&models.Application{}, DefaultApplicationRules()).Validate()

	assert.Equal(t, []string{
		"Trade license validity is required",
		"At least one business activity is required",
		"At least one company name option is required",
		"Share capital is required",
		"At least one shareholder is required",
		"At least one director is required",
		"General manager signatory name is required",
		"Terms and conditions must be accepted",
		"Company name is required",
		"Freezone is required",
	}, got.Messages())
}

func TestSubmissionReadiness_PersonMessagesNameThePerson(t *testing.T) {
	app := createTestApplication()
	app.Shareholders[0].Nationality = ""
	app.Directors[0].PassportNumber = ""

	got := NewSubmissionReadinessValidator(app, DefaultApplicationRules()).Validate()

	assert.Contains(t, got.Messages(), "Nationality is required for shareholder Jane Doe")
	assert.Contains(t, got.Messages(), "Passport number is required for director Jane Doe")
	assert.True(t, got.Has("shareholders[0].nationality", "required"))
	assert.True(t, got.Has("directors[0].passport_number", "required"))
}

func TestSubmissionReadiness_Idempotent(t *testing.T) {
	app := createTestApplication()
	app.TermsAccepted = false
	app.ActivityCodes = nil

	v := NewSubmissionReadinessValidator(app, DefaultApplicationRules())
	first := v.Validate()
	second := v.Validate()

	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestSubmissionReadiness_Invariants(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(app *models.Application)
		wantMsgs []string
	}{
		{
			name: "shares do not total 100",
			mutate: func(app *models.Application) {
				app.Shareholders[0].SharePercentage = decimal.NewFromInt(90)
			},
			wantMsgs: []string{"Total shareholding must equal 100% (currently 90%)"},
		},
		{
			name: "visa split mismatch",
			mutate: func(app *models.Application) {
				app.License.InsideCountryVisas = 2
			},
			wantMsgs: []string{"Inside and outside country visas must add up to the visa package (2)"},
		},
		{
			name: "establishment card missing",
			mutate: func(app *models.Application) {
				app.License.EstablishmentCard = false
			},
			wantMsgs: []string{"Establishment card is required when visas are included"},
		},
		{
			name: "partner visa capital shortfall",
			mutate: func(app *models.Application) {
				app.License.PartnerVisaCount = 2
			},
			wantMsgs: []string{"Share capital of 50000.00 is below the 96000.00 required for 2 partner visa(s)"},
		},
		{
			name: "corporate UBO without declaration",
			mutate: func(app *models.Application) {
				app.Shareholders[0].SharePercentage = decimal.NewFromInt(70)
				app.Shareholders = append(app.Shareholders, createCorporateShareholder(30))
			},
			wantMsgs: []string{"Beneficial owner declaration is required for shareholder Acme Holdings"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := createTestApplication()
			tt.mutate(app)
			got := NewSubmissionReadinessValidator(app, DefaultApplicationRules()).Validate()
			assert.Equal(t, tt.wantMsgs, got.Messages())
		})
	}
}

func TestSubmissionReadiness_NilApplicationPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewSubmissionReadinessValidator(nil, DefaultApplicationRules())
	})
}

// ==========================
// Step validators
// ==========================

func TestStepValidators(t *testing.T) {
	tests := []struct {
		name     string
		step     models.StepType
		mutate   func(app *models.Application)
		wantMsgs []string
	}{
		{
			name:     "license step passes",
			step:     models.StepLicenseVisa,
			mutate:   func(app *models.Application) {},
			wantMsgs: []string{},
		},
		{
			name: "license step ignores members",
			step: models.StepLicenseVisa,
			mutate: func(app *models.Application) {
				app.Shareholders = nil
			},
			wantMsgs: []string{},
		},
		{
			name: "duplicate activity",
			step: models.StepActivities,
			mutate: func(app *models.Application) {
				app.ActivityCodes = []string{"4690.01", "4690.01"}
			},
			wantMsgs: []string{"Duplicate business activity 4690.01"},
		},
		{
			name: "names step",
			step: models.StepNames,
			mutate: func(app *models.Application) {
				app.CompanyName = " "
				app.NameOptions = []string{""}
			},
			wantMsgs: []string{"Company name is required", "At least one company name option is required"},
		},
		{
			name: "members step without directors",
			step: models.StepMembers,
			mutate: func(app *models.Application) {
				app.Directors = nil
			},
			wantMsgs: []string{"At least one director is required"},
		},
		{
			name: "ubo declaration incomplete",
			step: models.StepUBODeclaration,
			mutate: func(app *models.Application) {
				corp := createCorporateShareholder(40)
				corp.BeneficialOwners = []models.Person{{Name: "John Roe", PassportNumber: "X99"}}
				app.Shareholders = []models.Person{corp}
			},
			wantMsgs: []string{"Nationality is required for beneficial owner John Roe (Acme Holdings)"},
		},
		{
			name: "minority corporate needs no declaration",
			step: models.StepUBODeclaration,
			mutate: func(app *models.Application) {
				app.Shareholders = []models.Person{createCorporateShareholder(10)}
			},
			wantMsgs: []string{},
		},
		{
			name: "review step is readiness",
			step: models.StepReview,
			mutate: func(app *models.Application) {
				app.TermsAccepted = false
			},
			wantMsgs: []string{"Terms and conditions must be accepted"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := createTestApplication()
			tt.mutate(app)
			v, err := NewStepValidator(tt.step, app, DefaultApplicationRules())
			require.NoError(t, err)
			assert.Equal(t, tt.wantMsgs, v.Validate().Messages())
		})
	}
}

func TestStepValidator_UnknownStep(t *testing.T) {
	_, err := NewStepValidator("payment", createTestApplication(), DefaultApplicationRules())
	assert.Error(t, err)
}

func TestPartnerVisaCapitalShortfall(t *testing.T) {
	app := createTestApplication()
	app.License.PartnerVisaCount = 2
	app.ShareCapital = decimal.NewFromInt(50000)

	msg, short := PartnerVisaCapitalShortfall(app, decimal.NewFromInt(48000))
	assert.True(t, short)
	assert.Contains(t, msg, "96000.00")

	app.ShareCapital = decimal.NewFromInt(96000)
	_, short = PartnerVisaCapitalShortfall(app, decimal.NewFromInt(48000))
	assert.False(t, short)
}
