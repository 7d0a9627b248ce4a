package wavelettrie

import "github.com/pkg/errors"

// ErrPrefixFreeViolation is returned by Insert when the sequence being
// inserted would make some stored sequence a prefix of another, or vice
// versa.
var ErrPrefixFreeViolation = errors.New("wavelettrie: sequence violates the prefix-free requirement")

// ErrIndexOutOfRange is returned by Insert, Delete, and Access when the given
// index is out of the valid range for the operation.
var ErrIndexOutOfRange = errors.New("wavelettrie: index out of range")
