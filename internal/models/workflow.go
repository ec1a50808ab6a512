package models

import "time"

type StepType string

const (
	StepLicenseVisa    StepType = "license_visa"
	StepActivities     StepType = "activities"
	StepNames          StepType = "names"
	StepMembers        StepType = "members"
	StepUBODeclaration StepType = "ubo_declaration"
	StepReview         StepType = "review"
)

type StepStatus string

const (
	StepStatusPending    StepStatus = "pending"
	StepStatusInProgress StepStatus = "in_progress"
	StepStatusCompleted  StepStatus = "completed"
	StepStatusFailed     StepStatus = "failed"
	StepStatusCancelled  StepStatus = "cancelled"
)

var stepTransitions = map[StepStatus][]StepStatus{
	StepStatusPending:    {StepStatusInProgress, StepStatusCancelled},
	StepStatusInProgress: {StepStatusCompleted, StepStatusFailed, StepStatusCancelled},
	StepStatusFailed:     {StepStatusInProgress, StepStatusCancelled},
}

// CanTransition reports whether a step may move from one status to another.
func CanTransition(from, to StepStatus) bool {
	for _, s := range stepTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports statuses with no outgoing transitions.
func (s StepStatus) IsTerminal() bool {
	return len(stepTransitions[s]) == 0
}

// WorkflowStep is one ordered step of a formation workflow instance.
type WorkflowStep struct {
	InstanceID   string     `json:"instanceId"`
	StepNumber   int        `json:"stepNumber"`
	StepType     StepType   `json:"stepType"`
	Status       StepStatus `json:"status"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// WorkflowInstance groups the steps of one application's formation.
type WorkflowInstance struct {
	ID            string         `json:"id"`
	ApplicationID string         `json:"applicationId"`
	Steps         []WorkflowStep `json:"steps"`
}

// DefaultStepPlan is the standard formation traversal order.
func DefaultStepPlan() []StepType {
	return []StepType{
		StepLicenseVisa,
		StepActivities,
		StepNames,
		StepMembers,
		StepUBODeclaration,
		StepReview,
	}
}

// NewWorkflowInstance lays out the default plan as pending steps.
func NewWorkflowInstance(id, applicationID string) WorkflowInstance {
	plan := DefaultStepPlan()
	steps := make([]WorkflowStep, len(plan))
	for i, st := range plan {
		steps[i] = WorkflowStep{
			InstanceID: id,
			StepNumber: i + 1,
			StepType:   st,
			Status:     StepStatusPending,
		}
	}
	return WorkflowInstance{ID: id, ApplicationID: applicationID, Steps: steps}
}
