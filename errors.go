package main

import (
	"context"
	"errors"
	"fmt"

	"handwrite/core"
	"handwrite/params"
	"handwrite/shutdown"
	"handwrite/validation"
)

// invalidParamsError is returned after the field errors have been printed.
type invalidParamsError struct {
	Errors validation.Errors
}

func (e *invalidParamsError) Error() string {
	if len(e.Errors) == 1 {
		return "parameters failed validation (1 field)"
	}
	return fmt.Sprintf("parameters failed validation (%d fields)", len(e.Errors))
}

func (e *invalidParamsError) Unwrap() error {
	return e.Errors
}

// exitCode maps the result of a command to the process exit status.
func exitCode(ctx context.Context, err error) int {
	if err == nil {
		return core.ExitCodeSuccess
	}

	var sigErr *shutdown.SignalError
	if errors.As(context.Cause(ctx), &sigErr) {
		return core.ExitCodeForSignal(sigErr.Signal)
	}

	var fieldErrs validation.Errors
	var colorErr *params.MalformedColorError
	switch {
	case errors.As(err, &fieldErrs), errors.As(err, &colorErr):
		return core.ExitCodeInvalid
	}
	return core.ExitCodeError
}
