package moderation

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrReportNotFound     = errors.New("report not found")
	ErrSanctionNotFound   = errors.New("sanction not found")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrEvidenceNotFound   = errors.New("evidence not found")
	ErrInvalidTransition  = errors.New("invalid report status transition")
	ErrSanctionNotActive  = errors.New("sanction is not active")
	ErrReporterRestricted = errors.New("reporter is suspended or banned")
	ErrNotReporter        = errors.New("only the reporter may attach evidence")
	ErrEvidenceDisabled   = errors.New("evidence storage is not configured")
	ErrInvalidFilter      = errors.New("invalid list filter")
)

// ValidationError describes a rejected request field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ConfirmationRequiredError is returned when a destructive action needs a
// second, confirmed request. Token must be echoed back as confirmToken.
type ConfirmationRequiredError struct {
	Action    string
	Token     string
	ExpiresAt time.Time
}

func (e *ConfirmationRequiredError) Error() string {
	return fmt.Sprintf("%s requires confirmation", e.Action)
}

// IsValidation reports whether err carries a *ValidationError
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// IsConfirmationRequired reports whether err carries a *ConfirmationRequiredError
func IsConfirmationRequired(err error) (*ConfirmationRequiredError, bool) {
	var ce *ConfirmationRequiredError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
