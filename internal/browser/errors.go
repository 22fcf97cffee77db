package browser

import (
	"context"
	"errors"
	"fmt"
)

// ErrNavigationTimeout means the page did not reach the awaited lifecycle event in time.
var ErrNavigationTimeout = errors.New("navigation timeout")

// NavigationError is a navigation the engine itself rejected, e.g. net::ERR_NAME_NOT_RESOLVED.
type NavigationError struct {
	URL    string
	Reason string
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation to %s failed: %s", e.URL, e.Reason)
}

// IsTimeout reports whether err is a navigation timeout, including a raw deadline error.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrNavigationTimeout) || errors.Is(err, context.DeadlineExceeded)
}
