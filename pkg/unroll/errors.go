package unroll

import "errors"

// ErrInvalidCircuit is returned when the input representative references a
// wire outside its own width (spec.md §4.6 "rejected up front").
var ErrInvalidCircuit = errors.New("invalid circuit")
