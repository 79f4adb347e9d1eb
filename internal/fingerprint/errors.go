package fingerprint

import (
	"errors"
	"fmt"
)

// ErrValidation is the parent of every caller-input error in the codec and the
// packages built on it. Test with errors.Is.
var ErrValidation = errors.New("validation error")

// ErrLengthMismatch indicates two fingerprints (or a fingerprint and a record
// window) have different byte lengths.
var ErrLengthMismatch = fmt.Errorf("%w: fingerprint length mismatch", ErrValidation)

// ErrInvalidSize indicates a hash edge length or pixel buffer that does not
// fit the difference-hash geometry.
var ErrInvalidSize = fmt.Errorf("%w: invalid hash size", ErrValidation)
