package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a pipeline failure at a stage boundary.
type ErrorKind string

const (
	KindValidation            ErrorKind = "validation"
	KindNotFound              ErrorKind = "not_found"
	KindConflict              ErrorKind = "conflict"
	KindFetchFailed           ErrorKind = "fetch_failed"
	KindReformulationDegraded ErrorKind = "reformulation_degraded"
	KindNoReferenceImage      ErrorKind = "no_reference_image"
	KindImageGenerationFailed ErrorKind = "image_generation_failed"
	KindNotConnected          ErrorKind = "not_connected"
	KindAuthFailed            ErrorKind = "auth_failed"
	KindProviderError         ErrorKind = "provider_error"
	KindPartialExport         ErrorKind = "partial_export"
	KindPersistenceWarning    ErrorKind = "persistence_warning"
	KindSubscriptionRequired  ErrorKind = "subscription_required"
	KindSubscriptionUnknown   ErrorKind = "subscription_unknown"
)

// Image generation failure reasons.
const (
	ReasonRateLimited   = "rate_limited"
	ReasonQuotaExceeded = "quota_exceeded"
	ReasonGeneric       = "generic"
)

// Sentinels usable with errors.Is against any PipelineError of the same kind.
var (
	ErrValidation            = &PipelineError{Kind: KindValidation}
	ErrNotFound              = &PipelineError{Kind: KindNotFound}
	ErrConflict              = &PipelineError{Kind: KindConflict}
	ErrFetchFailed           = &PipelineError{Kind: KindFetchFailed}
	ErrNoReferenceImage      = &PipelineError{Kind: KindNoReferenceImage}
	ErrImageGenerationFailed = &PipelineError{Kind: KindImageGenerationFailed}
	ErrNotConnected          = &PipelineError{Kind: KindNotConnected}
	ErrAuthFailed            = &PipelineError{Kind: KindAuthFailed}
	ErrProviderError         = &PipelineError{Kind: KindProviderError}
	ErrSubscriptionRequired  = &PipelineError{Kind: KindSubscriptionRequired}
	ErrSubscriptionUnknown   = &PipelineError{Kind: KindSubscriptionUnknown}
)

var (
	ErrImageNotFound    = errors.New("image not found")
	ErrInvalidSourceURL = errors.New("invalid source url")
	ErrSubdomainTaken   = errors.New("subdomain already taken")
)

// PipelineError is the classified error returned across stage boundaries.
// Message is safe to show to the user; Err carries the diagnostic cause.
type PipelineError struct {
	Kind    ErrorKind
	Reason  string
	Message string
	Err     error
}

func (e *PipelineError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Reason != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Reason)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Is matches any PipelineError with the same kind.
func (e *PipelineError) Is(target error) bool {
	t, ok := target.(*PipelineError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// NewError builds a classified error.
func NewError(kind ErrorKind, message string, cause error) *PipelineError {
	return &PipelineError{Kind: kind, Message: message, Err: cause}
}

// NewImageGenerationError builds an ImageGenerationFailed error with its reason.
func NewImageGenerationError(reason, message string, cause error) *PipelineError {
	return &PipelineError{Kind: KindImageGenerationFailed, Reason: reason, Message: message, Err: cause}
}

// Validationf builds a validation error with a formatted message.
func Validationf(format string, args ...any) *PipelineError {
	return &PipelineError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of a classified error, or "" when err is not classified.
func KindOf(err error) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
