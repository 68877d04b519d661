package service

import (
	"errors"
	"fmt"
)

// --- Error Definitions ---
// Shared taxonomy across the services in this package. Nothing here
// panics or throws across the public boundary: every operation returns an
// explicit error, and callers branch with errors.Is.
var (
	// ErrInvalidArgument marks caller mistakes (blank ids, empty names,
	// malformed plans). Retrying without changing the input cannot succeed.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrStore wraps any underlying store failure, including network and
	// permission errors. The caller decides whether to retry; nothing in
	// this layer retries automatically.
	ErrStore = errors.New("store failure")
)

// storeErr tags an underlying store failure with ErrStore while keeping
// the cause in the message.
func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStore, op, err)
}

// invalidArg builds an ErrInvalidArgument with a reason.
func invalidArg(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, reason)
}
