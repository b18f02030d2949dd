package api

import "github.com/pkg/errors"

// ErrNilSource signals that the server was created without a reader
var ErrNilSource = errors.New("nil memory source")

// ErrNilHub signals that the server was created without a stream hub
var ErrNilHub = errors.New("nil stream hub")
