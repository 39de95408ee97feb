package nn

import "errors"

var (
	// ErrInvalidConfig is returned when a layer configuration is rejected.
	ErrInvalidConfig = errors.New("invalid layer configuration")

	// ErrMissingParameter is returned by LoadStateDict when a parameter is absent.
	ErrMissingParameter = errors.New("missing parameter")

	// ErrShapeMismatch is returned by LoadStateDict when a tensor has the wrong shape.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrInvalidSamples is returned when a Monte-Carlo sample count is too small.
	ErrInvalidSamples = errors.New("invalid sample count")
)
