package validation

import (
	"fmt"
	"strings"
)

// Reason classifies why a field failed validation.
type Reason string

const (
	ReasonRequired           Reason = "Required"
	ReasonOutOfRange         Reason = "OutOfRange"
	ReasonNotInCatalog       Reason = "NotInCatalog"
	ReasonMarginsExceedPaper Reason = "MarginsExceedPaper"
)

// FieldError describes one invalid field, or the margins group as a whole.
type FieldError struct {
	Field   string
	Reason  Reason
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Errors is the full set of field errors from one validation pass, in rule
// table order.
type Errors []FieldError

func (e Errors) Error() string {
	switch len(e) {
	case 0:
		return "no validation errors"
	case 1:
		return e[0].Error()
	}
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Error()
	}
	return fmt.Sprintf("%d invalid fields: %s", len(e), strings.Join(parts, "; "))
}

// Field returns the error recorded for field, if any.
func (e Errors) Field(field string) (FieldError, bool) {
	for _, fe := range e {
		if fe.Field == field {
			return fe, true
		}
	}
	return FieldError{}, false
}
