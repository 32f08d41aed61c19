package model

import (
	"errors"
	"fmt"
)

// ConfigurationError reports invalid planning parameters (horizon, slot
// width, duration alignment). It is always surfaced before any model is
// built.
type ConfigurationError struct {
	Field  string
	Detail string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("configuration: %s", e.Detail)
	}
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Detail)
}

// NewConfigurationError builds a ConfigurationError for the given field.
func NewConfigurationError(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Detail: fmt.Sprintf(format, args...)}
}

// IsConfigurationError reports whether err is a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// ErrModelInfeasible indicates the pruned model as a whole admits no
// solution. It can only arise from capacity or exclusion constraints
// over-constraining an individually feasible request set.
var ErrModelInfeasible = errors.New("scheduling model infeasible")

// ScheduleInvariantViolation indicates the decoded schedule breaks a
// capacity, placement or visibility invariant. It points at a model
// builder or extractor defect and is never recovered from.
type ScheduleInvariantViolation struct {
	Detail string
}

func (e *ScheduleInvariantViolation) Error() string {
	return fmt.Sprintf("schedule invariant violated: %s", e.Detail)
}

// NewInvariantViolation builds a ScheduleInvariantViolation.
func NewInvariantViolation(format string, args ...any) error {
	return &ScheduleInvariantViolation{Detail: fmt.Sprintf(format, args...)}
}
