package satsolver

import "errors"

// ErrCancelled is returned when the solve context is cancelled before a
// verdict (sat or unsat) was reached.
var ErrCancelled = errors.New("sat solve cancelled")
