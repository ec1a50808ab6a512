package validators

import (
	"fmt"
	"strings"

	"formation-engine/internal/common/validation"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
)

const DefaultMaxFileBytes int64 = 10 * 1024 * 1024

var DefaultAllowedContentTypes = []string{"image/jpeg", "image/png", "application/pdf"}

// UploadedFile is the metadata of an uploaded document. The bytes live in
// file storage and never reach the validator.
type UploadedFile struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

type FileInput struct {
	File *UploadedFile `json:"file"`
}

// FileOptions overrides the upload limits. Zero values keep the defaults.
type FileOptions struct {
	MaxBytes            int64
	AllowedContentTypes []string
}

// FileValidator checks presence, content type and size of an upload.
type FileValidator struct {
	input    FileInput
	maxBytes int64
	allowed  []string
}

func NewFileValidator(input FileInput, opts FileOptions) *FileValidator {
	v := &FileValidator{
		input:    input,
		maxBytes: opts.MaxBytes,
		allowed:  opts.AllowedContentTypes,
	}
	if v.maxBytes <= 0 {
		v.maxBytes = DefaultMaxFileBytes
	}
	if len(v.allowed) == 0 {
		v.allowed = DefaultAllowedContentTypes
	}
	return v
}

func (v *FileValidator) Validate() validation.Violations {
	var out validation.Violations

	f := v.input.File
	if f == nil {
		out.Add("file", "required", "File is required")
		return out
	}

	allowed := make([]interface{}, len(v.allowed))
	for i, ct := range v.allowed {
		allowed[i] = ct
	}
	contentType := strings.ToLower(strings.TrimSpace(f.ContentType))
	validation.Check(&out, "file.content_type", "content_type", contentType,
		ozzo.Required.Error("File must be a JPEG, PNG or PDF"))
	if contentType != "" {
		validation.Check(&out, "file.content_type", "content_type", contentType,
			ozzo.In(allowed...).Error("File must be a JPEG, PNG or PDF"))
	}

	if f.Size > v.maxBytes {
		out.Add("file.size", "max_size",
			fmt.Sprintf("File size must not exceed %dMB", v.maxBytes/(1024*1024)))
	}

	return out
}
