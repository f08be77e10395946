package circuit

import "errors"

// ErrInvalidCircuit is returned when a gate or circuit fails structural
// validation: a wire index out of range for the circuit's width, a wire
// repeated between a gate's target and its controls, or a width mismatch
// between an operand and the circuit it is applied to.
var ErrInvalidCircuit = errors.New("invalid circuit")

// ErrNonCommuting is returned by Swap when the two gates at the requested
// adjacency do not satisfy the commutation predicate.
var ErrNonCommuting = errors.New("gates do not commute")
