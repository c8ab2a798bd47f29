package domain

import "errors"

// ErrNotFound reports a missing generation record.
var ErrNotFound = errors.New("not found")
