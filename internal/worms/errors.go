package worms

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound marks a well-formed lookup the backbone has no record for.
	// It is a permanent outcome, never retried.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable marks a transient service failure that survived the
	// retry budget. Callers must not conflate it with ErrNotFound: it means
	// the record is unresolved for this pass, not unmatched.
	ErrUnavailable = errors.New("worms unavailable")
)

type httpStatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("worms request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}
