package ecode

import (
	"errors"
	"fmt"
	"net/http"
)

// RemoteError is a non-2xx answer from the database server.
type RemoteError struct {
	Status int    `json:"-"`
	Method string `json:"-"`
	URL    string `json:"-"`
	Code   string `json:"error"`  // server error code, e.g. "not_found", "badmatch"
	Reason string `json:"reason"` // server supplied reason
}

// Error implements error
func (e *RemoteError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.Status, http.StatusText(e.Status))
	if e.Code != "" {
		msg += ": " + e.Code
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// IsRemote reports whether err carries a RemoteError with the given status.
// A zero status matches any status.
func IsRemote(err error, status int) bool {
	var re *RemoteError
	if !errors.As(err, &re) {
		return false
	}
	return status == 0 || re.Status == status
}

// IsNotFound reports whether err is a 404 from the server
func IsNotFound(err error) bool {
	return IsRemote(err, http.StatusNotFound)
}
