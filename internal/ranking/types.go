package ranking

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// DefaultTopCount is the number of processes requested when none is given
const DefaultTopCount = 5

// ProcessUsage is one ranked entry of a listing
type ProcessUsage struct {
	PID         int     `json:"pid"`
	Command     string  `json:"command"`
	MemoryBytes float64 `json:"memoryBytes"`
}

// Lister returns the top n memory consumers in rank order.
// On failure it still returns an empty, non-nil slice along with a *ListError.
type Lister interface {
	ListTop(ctx context.Context, n int) ([]ProcessUsage, error)
}

// ListErrorKind classifies listing failures
type ListErrorKind int

const (
	// ListUnavailable means the listing source could not be started or read
	ListUnavailable ListErrorKind = iota
	// ListTimeout means the listing source did not answer in time
	ListTimeout
	// ListEmpty means the listing source produced no output
	ListEmpty
)

func (k ListErrorKind) String() string {
	switch k {
	case ListUnavailable:
		return "unavailable"
	case ListTimeout:
		return "timeout"
	case ListEmpty:
		return "empty"
	default:
		return fmt.Sprintf("ListErrorKind(%d)", int(k))
	}
}

// ListError is a non-fatal listing failure
type ListError struct {
	Kind ListErrorKind
	Err  error
}

func (e *ListError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("process listing %s", e.Kind)
	}
	return fmt.Sprintf("process listing %s: %v", e.Kind, e.Err)
}

func (e *ListError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the *ListError wrapped in err. Any other error
// counts as ListUnavailable.
func KindOf(err error) ListErrorKind {
	var listErr *ListError
	if errors.As(err, &listErr) {
		return listErr.Kind
	}
	return ListUnavailable
}
