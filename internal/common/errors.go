// Package common defines sentinel errors and small helpers shared by every
// layer of the order workflow. Callers should use errors.Is to match these
// values; components wrap them with fmt.Errorf("%w: ...").
package common

import "errors"

var (
	// Identity errors.
	ErrNoFunds        = errors.New("account has no funds")
	ErrKeystoreLocked = errors.New("keystore locked")

	// Content publishing errors.
	ErrUpload = errors.New("upload failed")

	// Read-only contract calls (price, node selection).
	ErrSimulation = errors.New("simulation failed")

	// Ledger rejected (or never received) the atomic order group.
	ErrSubmission = errors.New("submission failed")

	// Configuration errors.
	ErrInvalidConfig = errors.New("invalid config")

	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
)
