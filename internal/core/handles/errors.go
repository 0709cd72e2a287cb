package handles

import "errors"

// ErrInvalidSize 池大小超出 1..1023
var ErrInvalidSize = errors.New("handles: pool size out of range")
