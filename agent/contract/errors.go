package contract

import "errors"

var (
	ErrModelInvoke       = errors.New("model invoke failed")
	ErrSchemaViolation   = errors.New("model response violates schema")
	ErrValidation        = errors.New("validation failed")
	ErrUnknownResponder  = errors.New("unknown responder")
	ErrDelegationGraph   = errors.New("invalid delegation graph")
	ErrHopLimitExceeded  = errors.New("delegation hop limit exceeded")
	ErrRoundLimit        = errors.New("tool round limit exceeded")
	ErrStreamInterrupted = errors.New("stream interrupted")
)
