package types

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyDataset means the fetch succeeded but produced zero entities.
	ErrEmptyDataset = errors.New("no data available")
	// ErrNotFound means a requested country has no match in the current snapshot.
	ErrNotFound = errors.New("country not found")
	// ErrInvalidRecord flags wire data that cannot form a snapshot.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrDuplicateEntity flags two entities sharing a name in one snapshot.
	ErrDuplicateEntity = errors.New("duplicate country")
)

// FetchError is a transport or availability failure reported by a data source.
// StatusCode is zero when no protocol status applies (file reads, dial errors).
type FetchError struct {
	Reason     string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("fetch failed (status %d): %s: %v", e.StatusCode, e.Reason, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("fetch failed (status %d): %s", e.StatusCode, e.Reason)
	case e.Err != nil:
		return fmt.Sprintf("fetch failed: %s: %v", e.Reason, e.Err)
	default:
		return "fetch failed: " + e.Reason
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsFetchFailure reports whether err is (or wraps) a *FetchError.
func IsFetchFailure(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
