package services

import (
	"fmt"

	"sellerpulse/internal/errors"
)

// invalidQuery reports a summary query parameter that cannot be used.
func invalidQuery(param, value, reason string) *errors.AppError {
	return errors.NewAppValidationError(fmt.Sprintf("invalid %s %q: %s", param, value, reason)).
		WithContext("parameter", param).
		WithContext("value", value)
}

// errorType labels err for metrics and logs.
func errorType(err error) string {
	if err == nil {
		return ""
	}
	if t := errors.TypeOf(err); t != "" {
		return string(t)
	}
	return "INTERNAL"
}
