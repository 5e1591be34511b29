package simulation

import "errors"

// ErrInvalidInput is returned when a run is requested with parameters that
// cannot produce a meaningful result (non-positive trial count, inverted ranges).
var ErrInvalidInput = errors.New("invalid simulation input")
