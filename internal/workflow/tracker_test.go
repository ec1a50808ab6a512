package workflow

import (
	"testing"
	"time"

	"formation-engine/internal/models"
	"formation-engine/internal/validators"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var fixedNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func createTestTracker() *Tracker {
	return NewTracker(validators.DefaultApplicationRules(), WithClock(func() time.Time { return fixedNow }))
}

func createTestApplication() *models.Application {
	return &models.Application{
		ID:              "app-1",
		FreezoneID:      "ifza",
		Status:          models.ApplicationStatusDraft,
		CompanyName:     "Falcon Trading",
		NameOptions:     []string{"Falcon Trading FZCO"},
		ActivityCodes:   []string{"4690.01"},
		GMSignatoryName: "Jane Doe",
		License: models.LicenseConfig{
			PackageType:          "commercial",
			TradeLicenseValidity: 1,
		},
		ShareCapital: decimal.NewFromInt(10000),
		Shareholders: []models.Person{
			{Type: models.PersonTypeIndividual, Name: "Jane Doe", Nationality: "GB", PassportNumber: "P1", SharePercentage: decimal.NewFromInt(100)},
		},
		Directors: []models.Person{
			{Type: models.PersonTypeIndividual, Name: "Jane Doe", Nationality: "GB", PassportNumber: "P1"},
		},
		TermsAccepted: true,
	}
}

// stepsWithCompleted returns the default plan with the first n steps completed.
func stepsWithCompleted(n int) []models.WorkflowStep {
	inst := models.NewWorkflowInstance("wf-1", "app-1")
	for i := 0; i < n; i++ {
		inst.Steps[i].Status = models.StepStatusCompleted
	}
	return inst.Steps
}

func stepNumber(step models.StepType) int {
	for i, s := range models.DefaultStepPlan() {
		if s == step {
			return i + 1
		}
	}
	return -1
}

// ==========================
// Advance
// ==========================

func TestAdvance_CompletesValidStep(t *testing.T) {
	tr := createTestTracker()

	got, err := tr.Advance(stepsWithCompleted(0), 1, createTestApplication())
	require.NoError(t, err)

	assert.Equal(t, models.StepStatusPending, got.From)
	assert.Equal(t, models.StepStatusCompleted, got.Status)
	assert.Empty(t, got.Errors)
	assert.Equal(t, "", got.Step.ErrorMessage)
	assert.Equal(t, fixedNow, got.Step.UpdatedAt)
}

func TestAdvance_ReviewFailsThenCompletesAfterCorrection(t *testing.T) {
	tr := createTestTracker()
	app := createTestApplication()
	app.TermsAccepted = false
	app.GMSignatoryName = ""

	steps := stepsWithCompleted(5)
	review := stepNumber(models.StepReview)

	got, err := tr.Advance(steps, review, app)
	require.NoError(t, err)
	assert.Equal(t, models.StepStatusFailed, got.Status)
	assert.Equal(t, []string{
		"General manager signatory name is required",
		"Terms and conditions must be accepted",
	}, got.Errors)
	assert.Equal(t, "General manager signatory name is required; Terms and conditions must be accepted", got.Step.ErrorMessage)

	// persist the failed step and retry with corrected data
	steps[review-1] = got.Step
	app.TermsAccepted = true
	app.GMSignatoryName = "Jane Doe"

	got, err = tr.Advance(steps, review, app)
	require.NoError(t, err)
	assert.Equal(t, models.StepStatusFailed, got.From)
	assert.Equal(t, models.StepStatusCompleted, got.Status)
	assert.Empty(t, got.Step.ErrorMessage)
}

func TestAdvance_ContractErrors(t *testing.T) {
	tests := []struct {
		name    string
		steps   func() []models.WorkflowStep
		number  int
		app     func() *models.Application
		wantErr error
	}{
		{
			name:    "unknown step number",
			steps:   func() []models.WorkflowStep { return stepsWithCompleted(0) },
			number:  9,
			app:     createTestApplication,
			wantErr: ErrStepNotFound,
		},
		{
			name:    "completed step is terminal",
			steps:   func() []models.WorkflowStep { return stepsWithCompleted(1) },
			number:  1,
			app:     createTestApplication,
			wantErr: ErrInvalidTransition,
		},
		{
			name: "cancelled step is terminal",
			steps: func() []models.WorkflowStep {
				s := stepsWithCompleted(0)
				s[0].Status = models.StepStatusCancelled
				return s
			},
			number:  1,
			app:     createTestApplication,
			wantErr: ErrInvalidTransition,
		},
		{
			name:    "earlier step not completed",
			steps:   func() []models.WorkflowStep { return stepsWithCompleted(1) },
			number:  3,
			app:     createTestApplication,
			wantErr: ErrStepOutOfOrder,
		},
		{
			name:    "ubo step skipped for individual shareholders",
			steps:   func() []models.WorkflowStep { return stepsWithCompleted(4) },
			number:  stepNumber(models.StepUBODeclaration),
			app:     createTestApplication,
			wantErr: ErrStepSkipped,
		},
		{
			name: "gap in step numbers",
			steps: func() []models.WorkflowStep {
				s := stepsWithCompleted(0)
				s[2].StepNumber = 7
				return s
			},
			number:  1,
			app:     createTestApplication,
			wantErr: ErrNonContiguousSteps,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := createTestTracker().Advance(tt.steps(), tt.number, tt.app())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAdvance_SkippedStepDoesNotBlockReview(t *testing.T) {
	tr := createTestTracker()
	steps := stepsWithCompleted(4) // ubo_declaration left pending

	got, err := tr.Advance(steps, stepNumber(models.StepReview), createTestApplication())
	require.NoError(t, err)
	assert.Equal(t, models.StepStatusCompleted, got.Status)
}

func TestAdvance_UBORequiredForCorporates(t *testing.T) {
	tr := createTestTracker()
	app := createTestApplication()
	app.Shareholders = []models.Person{{
		Type:               models.PersonTypeCorporate,
		LegalName:          "Acme Holdings",
		Nationality:        "CY",
		RegistrationNumber: "HE1",
		SharePercentage:    decimal.NewFromInt(100),
	}}

	assert.False(t, tr.IsSkipped(models.StepUBODeclaration, app))

	got, err := tr.Advance(stepsWithCompleted(4), stepNumber(models.StepUBODeclaration), app)
	require.NoError(t, err)
	assert.Equal(t, models.StepStatusFailed, got.Status)
	assert.Equal(t, []string{"Beneficial owner declaration is required for shareholder Acme Holdings"}, got.Errors)
}

func TestAdvance_StepsInAnyOrder(t *testing.T) {
	steps := stepsWithCompleted(0)
	steps[0], steps[5] = steps[5], steps[0]

	got, err := createTestTracker().Advance(steps, 1, createTestApplication())
	require.NoError(t, err)
	assert.Equal(t, models.StepLicenseVisa, got.Step.StepType)
}

// ==========================
// Begin / Cancel
// ==========================

func TestBeginAndCancel(t *testing.T) {
	tr := createTestTracker()
	step := models.WorkflowStep{StepNumber: 1, StepType: models.StepLicenseVisa, Status: models.StepStatusPending}

	started, err := tr.Begin(step)
	require.NoError(t, err)
	assert.Equal(t, models.StepStatusInProgress, started.Status)

	_, err = tr.Begin(started)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	cancelled, err := tr.Cancel(started)
	require.NoError(t, err)
	assert.Equal(t, models.StepStatusCancelled, cancelled.Status)

	_, err = tr.Cancel(cancelled)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

// ==========================
// Progress
// ==========================

func TestProgress(t *testing.T) {
	tr := createTestTracker()
	app := createTestApplication()

	steps := stepsWithCompleted(2)
	next, ok := tr.NextStep(steps, app)
	require.True(t, ok)
	assert.Equal(t, models.StepNames, next.StepType)
	assert.Equal(t, 50, tr.CompletionPercentage(steps, app)) // 2 done + ubo skipped

	steps = stepsWithCompleted(4)
	next, ok = tr.NextStep(steps, app)
	require.True(t, ok)
	assert.Equal(t, models.StepReview, next.StepType)

	steps = stepsWithCompleted(6)
	_, ok = tr.NextStep(steps, app)
	assert.False(t, ok)
	assert.Equal(t, 100, tr.CompletionPercentage(steps, app))
}
