package synth

import "errors"

// ErrEncodingLimit is returned when width or gate budget exceed what the
// encoder supports (spec.md §7): 2^w must fit comfortably in an int, and
// the resulting variable count must stay within a sane resource bound.
var ErrEncodingLimit = errors.New("width or gate budget exceeds encoder limit")

// ErrUnsat means synthesis provably has no k-gate circuit for the target
// permutation. It is non-fatal: spec.md §7 has the orchestrator retry seed
// generation with a fresh forward circuit on Unsat.
var ErrUnsat = errors.New("no circuit of the requested length realizes this permutation")

// ErrSolverFailure means the backend returned a malformed or absent model
// for a claimed-satisfiable instance.
var ErrSolverFailure = errors.New("solver backend returned a malformed model")

// ErrCancelled means the cooperative cancellation token fired before a
// verdict was reached.
var ErrCancelled = errors.New("synthesis cancelled")
