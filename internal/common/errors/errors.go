// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Configuration: the catalog or deployment is wrong, never the end user.
	ErrCodeCatalogNotActive         ErrorCode = "CATALOG_NOT_ACTIVE"
	ErrCodeCatalogAmbiguous         ErrorCode = "CATALOG_AMBIGUOUS"
	ErrCodeCatalogInvalid           ErrorCode = "CATALOG_INVALID"
	ErrCodeLicensePackageNotFound   ErrorCode = "LICENSE_PACKAGE_NOT_FOUND"
	ErrCodeFeeNotConfigured         ErrorCode = "FEE_NOT_CONFIGURED"
	ErrCodeValidatorContractBroken  ErrorCode = "VALIDATOR_CONTRACT_VIOLATION"
	ErrCodeUnknownValidator         ErrorCode = "UNKNOWN_VALIDATOR"
	ErrCodeInvalidInput             ErrorCode = "INVALID_INPUT"
	ErrCodeApplicationNotFound      ErrorCode = "APPLICATION_NOT_FOUND"
	ErrCodeWorkflowNotFound         ErrorCode = "WORKFLOW_NOT_FOUND"
	ErrCodeStepNotFound             ErrorCode = "STEP_NOT_FOUND"
	ErrCodeInvalidStepTransition    ErrorCode = "INVALID_STEP_TRANSITION"
	ErrCodeStepOutOfOrder           ErrorCode = "STEP_OUT_OF_ORDER"
	ErrCodeStepSkipped              ErrorCode = "STEP_SKIPPED"
	ErrCodeNonContiguousSteps       ErrorCode = "NON_CONTIGUOUS_STEPS"
	ErrCodeConcurrentModification   ErrorCode = "CONCURRENT_MODIFICATION"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeDatabaseUpdateFailed     ErrorCode = "DATABASE_UPDATE_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogNotActiveError reports that no active fee catalog covers the freezone.
func NewCatalogNotActiveError(freezoneID string, asOf time.Time) *StandardError {
	return newError(ErrCodeCatalogNotActive, "No active fee catalog",
		fmt.Sprintf("freezoneId: %s, asOf: %s", freezoneID, asOf.Format(time.RFC3339)), false)
}

// NewCatalogAmbiguousError reports more than one active catalog for a freezone.
func NewCatalogAmbiguousError(freezoneID string) *StandardError {
	return newError(ErrCodeCatalogAmbiguous, "More than one fee catalog is active",
		fmt.Sprintf("freezoneId: %s", freezoneID), false)
}

// NewCatalogInvalidError reports a catalog snapshot that failed integrity checks.
func NewCatalogInvalidError(details string) *StandardError {
	return newError(ErrCodeCatalogInvalid, "Fee catalog failed integrity checks", details, false)
}

// NewLicensePackageNotFoundError is a catalog configuration error, not a user error.
func NewLicensePackageNotFoundError(details string) *StandardError {
	return newError(ErrCodeLicensePackageNotFound, "No license package matches the application", details, false)
}

func NewFeeNotConfiguredError(details string) *StandardError {
	return newError(ErrCodeFeeNotConfigured, "Required fee is missing from the catalog", details, false)
}

func NewValidatorContractError(kind string, err error) *StandardError {
	return newError(ErrCodeValidatorContractBroken, "Validator constructed with an invalid payload",
		fmt.Sprintf("kind: %s, error: %s", kind, err.Error()), false)
}

func NewUnknownValidatorError(kind string) *StandardError {
	return newError(ErrCodeUnknownValidator, "Unknown validator kind", fmt.Sprintf("kind: %s", kind), false)
}

func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Invalid job input", details, false)
}

func NewApplicationNotFoundError(applicationID string) *StandardError {
	return newError(ErrCodeApplicationNotFound, "Application not found",
		fmt.Sprintf("applicationId: %s", applicationID), false)
}

func NewWorkflowNotFoundError(instanceID string) *StandardError {
	return newError(ErrCodeWorkflowNotFound, "Workflow instance not found",
		fmt.Sprintf("workflowInstanceId: %s", instanceID), false)
}

// NewWorkflowContractError maps a rejected tracker call onto its error code.
func NewWorkflowContractError(code ErrorCode, err error) *StandardError {
	return newError(code, "Workflow step cannot be advanced", err.Error(), false)
}

// NewConcurrentModificationError is retryable: the job reloads and re-applies.
func NewConcurrentModificationError(applicationID string) *StandardError {
	return newError(ErrCodeConcurrentModification, "Application was modified concurrently",
		fmt.Sprintf("applicationId: %s", applicationID), true)
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true)
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()), true)
}

func NewDatabaseUpdateFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseUpdateFailed, "Database update operation failed", err.Error(), true)
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(queryType string) *StandardError {
	return newError(ErrCodeQueryTimeout, "Database query timeout", fmt.Sprintf("queryType: %s", queryType), true)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeCatalogNotActive:         "CATALOG_NOT_ACTIVE",
	ErrCodeCatalogAmbiguous:         "CATALOG_AMBIGUOUS",
	ErrCodeCatalogInvalid:           "CATALOG_INVALID",
	ErrCodeLicensePackageNotFound:   "LICENSE_PACKAGE_NOT_FOUND",
	ErrCodeFeeNotConfigured:         "FEE_NOT_CONFIGURED",
	ErrCodeValidatorContractBroken:  "VALIDATOR_CONTRACT_VIOLATION",
	ErrCodeUnknownValidator:         "UNKNOWN_VALIDATOR",
	ErrCodeInvalidInput:             "INVALID_INPUT",
	ErrCodeApplicationNotFound:      "APPLICATION_NOT_FOUND",
	ErrCodeWorkflowNotFound:         "WORKFLOW_NOT_FOUND",
	ErrCodeStepNotFound:             "STEP_NOT_FOUND",
	ErrCodeInvalidStepTransition:    "INVALID_STEP_TRANSITION",
	ErrCodeStepOutOfOrder:           "STEP_OUT_OF_ORDER",
	ErrCodeStepSkipped:              "STEP_SKIPPED",
	ErrCodeNonContiguousSteps:       "NON_CONTIGUOUS_STEPS",
	ErrCodeConcurrentModification:   "CONCURRENT_MODIFICATION",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:     "QUERY_EXECUTION_FAILED",
	ErrCodeDatabaseUpdateFailed:     "DATABASE_UPDATE_FAILED",
	ErrCodeQueryTimeout:             "QUERY_TIMEOUT",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeDatabaseUpdateFailed,
		ErrCodeConcurrentModification:
		return 3

	case ErrCodeQueryTimeout:
		return 2

	default:
		return 0 // configuration, contract and business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"errorCategory":     GetErrorCategory(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// IsConfigurationError reports codes that operators must fix in the catalog.
func IsConfigurationError(code ErrorCode) bool {
	return GetErrorCategory(code) == "CONFIGURATION"
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "CATALOG"),
		strings.Contains(codeStr, "LICENSE_PACKAGE"),
		strings.Contains(codeStr, "FEE_"):
		return "CONFIGURATION"
	case strings.Contains(codeStr, "VALIDATOR"), code == ErrCodeInvalidInput:
		return "CONTRACT"
	case strings.Contains(codeStr, "STEP"), strings.Contains(codeStr, "WORKFLOW"):
		return "WORKFLOW"
	case strings.Contains(codeStr, "DATABASE"),
		strings.Contains(codeStr, "QUERY"),
		code == ErrCodeConcurrentModification:
		return "DATABASE"
	case strings.Contains(codeStr, "NOT_FOUND"):
		return "NOT_FOUND"
	default:
		return "OTHER"
	}
}
