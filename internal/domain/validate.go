package domain

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// ValidationError reports a single business-rule or shape violation,
// naming the offending field and the rule it broke.
type ValidationError struct {
	Field string
	Rule  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Rule)
}

// IsValidationError reports whether err is a domain validation failure.
func IsValidationError(err error) bool {
	_, ok := err.(*ValidationError)
	return ok
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func requireString(field, value string, maxLen int) error {
	if value == "" {
		return &ValidationError{Field: field, Rule: "is required"}
	}
	if maxLen > 0 && len(value) > maxLen {
		return &ValidationError{Field: field, Rule: fmt.Sprintf("must be at most %d characters", maxLen)}
	}
	return nil
}

func requireEmail(field, value string) error {
	if value == "" {
		return &ValidationError{Field: field, Rule: "is required"}
	}
	if !emailPattern.MatchString(value) {
		return &ValidationError{Field: field, Rule: "must be a valid email address"}
	}
	return nil
}

func requireUUID(field, value string) error {
	if value == "" {
		return &ValidationError{Field: field, Rule: "is required"}
	}
	if _, err := uuid.Parse(value); err != nil {
		return &ValidationError{Field: field, Rule: "must be a valid UUID"}
	}
	return nil
}

func requireEnum(field, value string, allowed ...string) error {
	for _, candidate := range allowed {
		if value == candidate {
			return nil
		}
	}
	return &ValidationError{Field: field, Rule: fmt.Sprintf("must be one of %v", allowed)}
}

// Dates are exchanged as plain calendar days, not instants.
const dateLayout = "2006-01-02"

func requireDate(field, value string) error {
	if value == "" {
		return &ValidationError{Field: field, Rule: "is required"}
	}
	if _, err := time.Parse(dateLayout, value); err != nil {
		return &ValidationError{Field: field, Rule: "must be a date in YYYY-MM-DD format"}
	}
	return nil
}

func newID() string {
	return uuid.NewString()
}
