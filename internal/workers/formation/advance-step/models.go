// internal/workers/formation/advance-step/models.go
package advancestep

import (
	"encoding/json"

	"formation-engine/internal/common/validation"
	"formation-engine/internal/models"
)

type Input struct {
	WorkflowInstanceID string          `json:"workflowInstanceId"`
	StepNumber         int             `json:"stepNumber"`
	SubmittedData      json.RawMessage `json:"submittedData,omitempty"` // partial application JSON
}

type Output struct {
	WorkflowInstanceID   string                `json:"workflowInstanceId"`
	ApplicationID        string                `json:"applicationId"`
	StepNumber           int                   `json:"stepNumber"`
	StepType             models.StepType       `json:"stepType"`
	Status               models.StepStatus     `json:"status"`
	Errors               []string              `json:"errors"`
	Violations           validation.Violations `json:"violations"`
	FormationStep        models.StepType       `json:"formationStep"`
	CompletionPercentage int                   `json:"completionPercentage"`
	WorkflowComplete     bool                  `json:"workflowComplete"`
}
