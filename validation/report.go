package validation

import (
	"errors"

	"handwrite/params"
)

// ErrPending is returned by Report.Err when nothing is invalid but at least
// one field could not be checked yet.
var ErrPending = errors.New("validation pending: font catalog not loaded")

// Report is the outcome of one validation pass.
type Report struct {
	// Errors holds every failing field, in rule table order.
	Errors Errors
	// Pending lists fields that could not be checked yet.
	Pending []string

	model params.Model
}

// OK reports whether the model may be submitted.
func (r Report) OK() bool {
	return len(r.Errors) == 0 && len(r.Pending) == 0
}

// IsPending reports whether field is waiting on data, such as the font catalog.
func (r Report) IsPending(field string) bool {
	for _, f := range r.Pending {
		if f == field {
			return true
		}
	}
	return false
}

// Err returns nil when the report is OK, the field errors when any exist and
// ErrPending otherwise.
func (r Report) Err() error {
	if len(r.Errors) > 0 {
		return r.Errors
	}
	if len(r.Pending) > 0 {
		return ErrPending
	}
	return nil
}

// ValidModel returns the checked model. ok is false unless the report has no
// errors and nothing pending.
func (r Report) ValidModel() (ValidModel, bool) {
	if !r.OK() {
		return ValidModel{}, false
	}
	return ValidModel{model: r.model, valid: true}, true
}

// ValidModel is a model that passed validation. It can only be obtained from
// Report.ValidModel.
type ValidModel struct {
	model params.Model
	valid bool
}

// Model returns a copy of the validated model.
func (v ValidModel) Model() params.Model {
	return v.model
}

// IsZero reports whether v was declared without going through validation.
func (v ValidModel) IsZero() bool {
	return !v.valid
}
