package client

import (
	"errors"
	"fmt"
)

// ErrPrecondition is the class of local failures detected before any
// network call. They are never retried.
var ErrPrecondition = errors.New("precondition failed")

var (
	ErrDeviceIDMissing = fmt.Errorf("%w: device identifier missing", ErrPrecondition)
	ErrRestartFlow     = fmt.Errorf("%w: verification expired, request a new code", ErrPrecondition)
	ErrOTTMissing      = fmt.Errorf("%w: one-time token missing", ErrPrecondition)
	ErrSceneMismatch   = fmt.Errorf("%w: scene does not match the active flow", ErrPrecondition)
	ErrNotLoggedIn     = fmt.Errorf("%w: not logged in", ErrPrecondition)
)

// ErrFlowAbandoned is returned for a completion that arrived after the flow
// was reset; its result was discarded.
var ErrFlowAbandoned = errors.New("flow abandoned")
