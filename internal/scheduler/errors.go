package scheduler

import "github.com/pkg/errors"

// ErrInvalidInterval signals a zero or negative scheduling interval
var ErrInvalidInterval = errors.New("interval must be a positive duration")

// ErrNilBody signals that a task was registered without a body
var ErrNilBody = errors.New("nil task body")
