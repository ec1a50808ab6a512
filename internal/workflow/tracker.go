// Package workflow decides step transitions for a formation workflow. It
// holds no state and performs no I/O; callers persist the returned step.
package workflow

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"formation-engine/internal/common/validation"
	"formation-engine/internal/models"
	"formation-engine/internal/validators"
)

var (
	ErrStepNotFound       = errors.New("STEP_NOT_FOUND")
	ErrInvalidTransition  = errors.New("INVALID_STEP_TRANSITION")
	ErrStepOutOfOrder     = errors.New("STEP_OUT_OF_ORDER")
	ErrStepSkipped        = errors.New("STEP_SKIPPED")
	ErrNonContiguousSteps = errors.New("NON_CONTIGUOUS_STEPS")
)

// ValidatorFactory builds the validator gating a step for an application.
type ValidatorFactory func(step models.StepType, app *models.Application) (validation.Validator, error)

// SkipRule reports whether a step does not apply to an application.
type SkipRule func(app *models.Application) bool

// Transition is the outcome of advancing a step.
type Transition struct {
	Step       models.WorkflowStep   `json:"step"`
	From       models.StepStatus     `json:"from"`
	Status     models.StepStatus     `json:"status"`
	Errors     []string              `json:"errors"`
	Violations validation.Violations `json:"violations,omitempty"`
}

// Tracker evaluates formation steps against their validators.
type Tracker struct {
	validatorFor ValidatorFactory
	skipRules    map[models.StepType]SkipRule
	now          func() time.Time
}

type Option func(*Tracker)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithSkipRule adds or replaces the skip rule for a step type.
func WithSkipRule(step models.StepType, rule SkipRule) Option {
	return func(t *Tracker) { t.skipRules[step] = rule }
}

// WithValidatorFactory replaces the step validator binding.
func WithValidatorFactory(f ValidatorFactory) Option {
	return func(t *Tracker) { t.validatorFor = f }
}

// NewTracker binds steps to the domain validators using rules.
func NewTracker(rules validators.ApplicationRules, opts ...Option) *Tracker {
	t := &Tracker{
		validatorFor: func(step models.StepType, app *models.Application) (validation.Validator, error) {
			return validators.NewStepValidator(step, app, rules)
		},
		skipRules: map[models.StepType]SkipRule{
			models.StepUBODeclaration: skipUBOForIndividuals,
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// skipUBOForIndividuals skips the UBO declaration when no shareholder is a
// corporate.
func skipUBOForIndividuals(app *models.Application) bool {
	c := app.Composition()
	return c == models.ShareholdingIndividual || c == models.ShareholdingNone
}

// IsSkipped reports whether step does not apply to app.
func (t *Tracker) IsSkipped(step models.StepType, app *models.Application) bool {
	rule, ok := t.skipRules[step]
	return ok && rule(app)
}

// Begin moves a pending or failed step to in_progress.
func (t *Tracker) Begin(step models.WorkflowStep) (models.WorkflowStep, error) {
	return t.move(step, models.StepStatusInProgress)
}

// Cancel moves a non-terminal step to cancelled.
func (t *Tracker) Cancel(step models.WorkflowStep) (models.WorkflowStep, error) {
	return t.move(step, models.StepStatusCancelled)
}

func (t *Tracker) move(step models.WorkflowStep, to models.StepStatus) (models.WorkflowStep, error) {
	if !models.CanTransition(step.Status, to) {
		return step, fmt.Errorf("%w: step %d is %s, cannot move to %s",
			ErrInvalidTransition, step.StepNumber, step.Status, to)
	}
	step.Status = to
	step.UpdatedAt = t.now().UTC()
	return step, nil
}

// Advance evaluates step stepNumber against app. The step enters
// in_progress, its validator runs, and it ends completed or failed. A failed
// step stores the joined messages in ErrorMessage.
func (t *Tracker) Advance(steps []models.WorkflowStep, stepNumber int, app *models.Application) (*Transition, error) {
	if app == nil {
		panic("workflow: nil application")
	}

	ordered, err := orderSteps(steps)
	if err != nil {
		return nil, err
	}

	idx := stepNumber - 1
	if idx < 0 || idx >= len(ordered) {
		return nil, fmt.Errorf("%w: step %d", ErrStepNotFound, stepNumber)
	}
	step := ordered[idx]

	if t.IsSkipped(step.StepType, app) {
		return nil, fmt.Errorf("%w: %s does not apply to this application", ErrStepSkipped, step.StepType)
	}

	for _, prior := range ordered[:idx] {
		if prior.Status == models.StepStatusCompleted || t.IsSkipped(prior.StepType, app) {
			continue
		}
		return nil, fmt.Errorf("%w: step %d (%s) is %s",
			ErrStepOutOfOrder, prior.StepNumber, prior.StepType, prior.Status)
	}

	from := step.Status
	if step.Status != models.StepStatusInProgress {
		step, err = t.Begin(step)
		if err != nil {
			return nil, err
		}
	}

	v, err := t.validatorFor(step.StepType, app)
	if err != nil {
		return nil, err
	}
	violations := v.Validate()

	if violations.Valid() {
		step, err = t.move(step, models.StepStatusCompleted)
		step.ErrorMessage = ""
	} else {
		step, err = t.move(step, models.StepStatusFailed)
		step.ErrorMessage = violations.Join()
	}
	if err != nil {
		return nil, err
	}

	return &Transition{
		Step:       step,
		From:       from,
		Status:     step.Status,
		Errors:     violations.Messages(),
		Violations: violations,
	}, nil
}

// NextStep returns the first step that is neither completed nor skipped.
func (t *Tracker) NextStep(steps []models.WorkflowStep, app *models.Application) (models.WorkflowStep, bool) {
	ordered, err := orderSteps(steps)
	if err != nil {
		return models.WorkflowStep{}, false
	}
	for _, s := range ordered {
		if s.Status == models.StepStatusCompleted || t.IsSkipped(s.StepType, app) {
			continue
		}
		return s, true
	}
	return models.WorkflowStep{}, false
}

// CompletionPercentage counts completed and skipped steps, rounded down.
func (t *Tracker) CompletionPercentage(steps []models.WorkflowStep, app *models.Application) int {
	if len(steps) == 0 {
		return 0
	}
	done := 0
	for _, s := range steps {
		if s.Status == models.StepStatusCompleted || t.IsSkipped(s.StepType, app) {
			done++
		}
	}
	return done * 100 / len(steps)
}

// orderSteps sorts a copy of steps and checks numbering runs 1..n.
func orderSteps(steps []models.WorkflowStep) ([]models.WorkflowStep, error) {
	ordered := make([]models.WorkflowStep, len(steps))
	copy(ordered, steps)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].StepNumber < ordered[j].StepNumber })

	for i, s := range ordered {
		if s.StepNumber != i+1 {
			return nil, fmt.Errorf("%w: expected step %d, found %d", ErrNonContiguousSteps, i+1, s.StepNumber)
		}
	}
	return ordered, nil
}
