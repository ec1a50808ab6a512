// internal/workers/formation/validate-payload/models.go
package validatepayload

import (
	"encoding/json"

	"formation-engine/internal/common/validation"
)

type Input struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

type Output struct {
	Kind       string                `json:"kind"`
	IsValid    bool                  `json:"isValid"`
	Errors     []string              `json:"errors"`
	Violations validation.Violations `json:"violations"`
}
