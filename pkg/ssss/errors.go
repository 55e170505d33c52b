package ssss

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by this package matches exactly one
// of them with errors.Is.
var (
	// ErrValidation covers malformed parameters, secrets and shares.
	ErrValidation = errors.New("ssss: invalid input")

	// ErrReconstruction means the shares parsed fine but do not form a
	// solvable system, usually because one share was supplied twice.
	ErrReconstruction = errors.New("ssss: reconstruction failed")

	// ErrInternal signals a broken internal invariant.
	ErrInternal = errors.New("ssss: internal consistency check failed")
)

var (
	ErrInvalidThreshold    = fmt.Errorf("%w: threshold must be at least 1", ErrValidation)
	ErrInvalidShareCount   = fmt.Errorf("%w: invalid number of shares", ErrValidation)
	ErrTooManyShares       = fmt.Errorf("%w: more shares than the field has elements", ErrValidation)
	ErrTokenTooLong        = fmt.Errorf("%w: token too long", ErrValidation)
	ErrSecurityLevel       = fmt.Errorf("%w: security level invalid (secret too long?)", ErrValidation)
	ErrSecretTooLong       = fmt.Errorf("%w: input string too long", ErrValidation)
	ErrSyntax              = fmt.Errorf("%w: invalid secret syntax", ErrValidation)
	ErrInvalidSyntax       = fmt.Errorf("%w: invalid share syntax", ErrValidation)
	ErrIllegalShareLength  = fmt.Errorf("%w: share has illegal length", ErrValidation)
	ErrMixedSecurityLevels = fmt.Errorf("%w: shares have different security levels", ErrValidation)
	ErrNotEnoughShares     = fmt.Errorf("%w: not enough shares", ErrValidation)

	ErrInconsistentShares = fmt.Errorf("%w: shares inconsistent, perhaps a single share was used twice", ErrReconstruction)
)
