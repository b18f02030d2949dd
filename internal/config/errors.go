package config

import "github.com/pkg/errors"

// ErrInvalidUpdateInterval signals an update interval below one second
var ErrInvalidUpdateInterval = errors.New("update interval must be at least 1 second")

// ErrInvalidTopCount signals a zero or negative process count
var ErrInvalidTopCount = errors.New("top count must be positive")

// ErrInvalidListTimeout signals a zero or negative listing timeout
var ErrInvalidListTimeout = errors.New("list timeout must be positive")

// ErrInvalidListingSource signals a listing source other than auto, top or table
var ErrInvalidListingSource = errors.New("invalid listing source")

// ErrEmptyTopPath signals the top listing source without a utility path
var ErrEmptyTopPath = errors.New("top path must not be empty")
