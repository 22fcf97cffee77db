package urlhandler

import "errors"

// ErrInvalidURL is wrapped by every validation failure of an audit target.
var ErrInvalidURL = errors.New("invalid URL")
