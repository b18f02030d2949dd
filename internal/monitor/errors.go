package monitor

import "github.com/pkg/errors"

// ErrNilLister signals that a nil process lister has been provided
var ErrNilLister = errors.New("nil process lister")

// ErrInvalidTopCount signals a zero or negative process count
var ErrInvalidTopCount = errors.New("top process count must be positive")
