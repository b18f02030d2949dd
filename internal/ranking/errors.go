package ranking

import "github.com/pkg/errors"

// ErrEmptyUtilityPath signals that no ranking utility path was configured
var ErrEmptyUtilityPath = errors.New("empty ranking utility path")

// ErrInvalidTimeout signals a zero or negative listing timeout
var ErrInvalidTimeout = errors.New("listing timeout must be a positive duration")

// ErrUnknownListingSource signals an unsupported listing source name
var ErrUnknownListingSource = errors.New("unknown listing source")
