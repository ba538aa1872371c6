// Package web defines common components for a web application.
package web

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// JSONError provides type for explicit json encoded error response.
type JSONError struct {
	Error string `json:"error"`
}

// Error wraps a given err into json frinedly struct.
func Error(err error) JSONError {
	return JSONError{Error: err.Error()}
}

// Response holds the common response type for all APIs.
type Response struct {
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// GetErrorMsg returns a readable suffix for the failed validation tag of the field.
func GetErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return " field is required"
	case "min":
		return fmt.Sprintf(" must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf(" must be at most %s", fe.Param())
	case "decimal":
		return " must be a decimal number with at most 4 decimal places"
	case "gtfield":
		return fmt.Sprintf(" must be after %s", fe.Param())
	}

	return " is invalid"
}
