package osrs

import (
	"errors"
	"fmt"
)

// ErrorKind distinguishes why a fetch failed. Users only ever see one
// advisory message; the kind exists for logs.
type ErrorKind string

const (
	KindNetwork    ErrorKind = "network"
	KindHTTPStatus ErrorKind = "http_status"
	KindParse      ErrorKind = "parse"
)

// FetchError is returned by every failed API request.
type FetchError struct {
	Kind       ErrorKind
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case KindHTTPStatus:
		return fmt.Sprintf("%s: API returned status %d", e.Endpoint, e.StatusCode)
	case KindParse:
		return fmt.Sprintf("%s: parsing response: %v", e.Endpoint, e.Err)
	default:
		return fmt.Sprintf("%s: making request: %v", e.Endpoint, e.Err)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// KindOf reports the FetchError kind anywhere in err's chain, or "" if there is none.
func KindOf(err error) ErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}
