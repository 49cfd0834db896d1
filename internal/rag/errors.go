package rag

import "errors"

// Failure taxonomy for the pipeline. Callers branch on these with
// errors.Is; the HTTP layer maps ErrValidation to a 400 and everything
// else to a 500.
var (
	ErrValidation = errors.New("validation error")
	ErrProvider   = errors.New("provider error")
	ErrStorage    = errors.New("storage error")
)
