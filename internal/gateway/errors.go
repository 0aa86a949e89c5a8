package gateway

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/notepilot/internal/llm"
	"github.com/abhisek/notepilot/internal/studypack"
)

// ConfigError means the credential for a service is not configured.
type ConfigError struct {
	Service string // "text" or "image"
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("API Key is missing (%s)", e.Service)
}

// EmptyResponseError means the model returned no text.
type EmptyResponseError struct{}

func (e *EmptyResponseError) Error() string {
	return "No text response generated."
}

// ParseError means the response was not valid JSON after fence stripping.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse study pack: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SchemaMismatchError means the response parsed but is missing required
// fields or carries out-of-range values.
type SchemaMismatchError struct {
	Violations []studypack.Violation

	// Err is the JSON schema validation error, when that stage failed.
	Err error
}

func (e *SchemaMismatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("study pack does not match schema: %v", e.Err)
	}
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return "study pack does not match schema: " + strings.Join(parts, "; ")
}

func (e *SchemaMismatchError) Unwrap() error { return e.Err }

// ProviderError wraps a failure reported by the model provider. Its message
// is the provider's own, unchanged.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return e.Err.Error()
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ImageGenerationError reports a failed or empty image request.
type ImageGenerationError struct {
	Reason string
	Err    error
}

func (e *ImageGenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("image generation failed: %s: %v", e.Reason, e.Err)
	}
	return "image generation failed: " + e.Reason
}

func (e *ImageGenerationError) Unwrap() error { return e.Err }

// IsMissingCredentialForImages reports whether err means the user must
// supply an image-capable credential before retrying.
func IsMissingCredentialForImages(err error) bool {
	if err == nil {
		return false
	}
	var ce *ConfigError
	if errors.As(err, &ce) {
		return true
	}
	return llm.IsNotFound(err)
}

// Kind returns a short label for logging the class of err.
func Kind(err error) string {
	var (
		ce  *ConfigError
		ee  *EmptyResponseError
		pe  *ParseError
		se  *SchemaMismatchError
		pre *ProviderError
		ie  *ImageGenerationError
		in  *studypack.InputError
	)
	switch {
	case errors.As(err, &ce):
		return "config"
	case errors.As(err, &ee):
		return "empty_response"
	case errors.As(err, &pe):
		return "parse"
	case errors.As(err, &se):
		return "schema_mismatch"
	case errors.As(err, &in):
		return "invalid_input"
	case errors.As(err, &ie):
		return "image"
	case errors.As(err, &pre):
		return "provider"
	}
	return "unknown"
}
