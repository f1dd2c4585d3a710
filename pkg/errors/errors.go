// Package errors defines the typed errors shared across the bot.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ValidationError reports a rejected input parameter. It names the offending
// parameter so handlers can surface a corrective message to the user instead
// of a generic failure.
type ValidationError struct {
	Param  string `json:"param"`
	Detail string `json:"detail"`
}

var (
	ErrEmptyKeywords = func() *ValidationError {
		return NewValidation("keywords", "keywords no puede estar vacío")
	}
	ErrInvalidCountry = func(country, valid string) *ValidationError {
		return NewValidation("country", fmt.Sprintf("country '%s' no válido. Válidos: %s", country, valid))
	}
	ErrInvalidJobType = func(jobType, valid string) *ValidationError {
		return NewValidation("job_type", fmt.Sprintf("job_type '%s' no válido. Válidos: %s", jobType, valid))
	}
)

func NewValidation(param, detail string) *ValidationError {
	return &ValidationError{
		Param:  param,
		Detail: detail,
	}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Param, e.Detail)
}

// AsValidation unwraps err into a *ValidationError, or nil if it isn't one.
func AsValidation(err error) *ValidationError {
	var ve *ValidationError
	if stderrors.As(err, &ve) {
		return ve
	}
	return nil
}
