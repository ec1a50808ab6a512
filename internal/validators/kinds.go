package validators

import (
	"encoding/json"
	"fmt"

	"formation-engine/internal/common/validation"
	"formation-engine/internal/models"
)

const (
	KindCredential          validation.Kind = "credential"
	KindPhone               validation.Kind = "phone"
	KindFile                validation.Kind = "file"
	KindSubmissionReadiness validation.Kind = "submission_readiness"
)

// StepKind is the registry kind gating a formation step.
func StepKind(step models.StepType) validation.Kind {
	return validation.Kind("step." + string(step))
}

const credentialSchema = `{
	"type": "object",
	"required": ["email", "password"],
	"properties": {
		"email": {"type": "string"},
		"password": {"type": "string"}
	}
}`

const phoneSchema = `{
	"type": "object",
	"required": ["phone"],
	"properties": {
		"phone": {"type": "string"},
		"countryCode": {"type": "string"},
		"requireCountryCode": {"type": "boolean"}
	}
}`

const fileSchema = `{
	"type": "object",
	"required": ["file"],
	"properties": {
		"file": {
			"type": ["object", "null"],
			"properties": {
				"name": {"type": "string"},
				"contentType": {"type": "string"},
				"size": {"type": "integer", "minimum": 0}
			}
		}
	}
}`

const applicationSchema = `{
	"type": "object",
	"required": ["application"],
	"properties": {
		"application": {"type": "object"}
	}
}`

// RegistryOptions carries the configurable limits into registry factories.
type RegistryOptions struct {
	Rules ApplicationRules
	File  FileOptions
}

type applicationPayload struct {
	Application *models.Application `json:"application"`
}

// NewRegistry registers every domain validator kind.
func NewRegistry(opts RegistryOptions) (*validation.Registry, error) {
	r := validation.NewRegistry()

	if err := r.Register(KindCredential, credentialSchema, func(payload json.RawMessage) (validation.Validator, error) {
		in, err := validation.Decode[CredentialInput](payload)
		if err != nil {
			return nil, err
		}
		return NewCredentialValidator(in), nil
	}); err != nil {
		return nil, err
	}

	if err := r.Register(KindPhone, phoneSchema, func(payload json.RawMessage) (validation.Validator, error) {
		in, err := validation.Decode[PhoneInput](payload)
		if err != nil {
			return nil, err
		}
		return NewPhoneValidator(in), nil
	}); err != nil {
		return nil, err
	}

	if err := r.Register(KindFile, fileSchema, func(payload json.RawMessage) (validation.Validator, error) {
		in, err := validation.Decode[FileInput](payload)
		if err != nil {
			return nil, err
		}
		return NewFileValidator(in, opts.File), nil
	}); err != nil {
		return nil, err
	}

	if err := r.Register(KindSubmissionReadiness, applicationSchema, func(payload json.RawMessage) (validation.Validator, error) {
		app, err := decodeApplication(payload)
		if err != nil {
			return nil, err
		}
		return NewSubmissionReadinessValidator(app, opts.Rules), nil
	}); err != nil {
		return nil, err
	}

	for _, step := range models.DefaultStepPlan() {
		step := step
		if err := r.Register(StepKind(step), applicationSchema, func(payload json.RawMessage) (validation.Validator, error) {
			app, err := decodeApplication(payload)
			if err != nil {
				return nil, err
			}
			return NewStepValidator(step, app, opts.Rules)
		}); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func decodeApplication(payload json.RawMessage) (*models.Application, error) {
	in, err := validation.Decode[applicationPayload](payload)
	if err != nil {
		return nil, err
	}
	if in.Application == nil {
		return nil, fmt.Errorf("%w: application is null", validation.ErrInvalidConstruction)
	}
	return in.Application, nil
}
