package seedgen

import "errors"

// ErrExhausted is returned when every retry attempt hit Unsat on the
// inverse-synthesis call.
var ErrExhausted = errors.New("seed generation exhausted its retry budget")
