package cnf

import "errors"

// ErrInvalidLiteral is returned when a clause or helper references a
// variable index that was never allocated by this builder (zero or a
// variable beyond the builder's high-water mark).
var ErrInvalidLiteral = errors.New("invalid literal")
