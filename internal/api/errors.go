package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// StatusError is a response whose status the caller does not accept.
type StatusError struct {
	Method  string
	Path    string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Code)
	if strings.TrimSpace(e.Message) != "" {
		msg += ": " + e.Message
	}
	return msg
}

// TransportError is a request that never produced a usable response.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ErrNoCredentials is returned when the credential provider has no token.
var ErrNoCredentials = errors.New("not logged in")

func statusOf(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return 0, false
}

// IsUnauthorized reports whether err is a 401 response or a missing token.
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrNoCredentials) {
		return true
	}
	code, ok := statusOf(err)
	return ok && code == http.StatusUnauthorized
}

// Describe turns a client error into a short notice for the user. Client and
// server failures are worded differently; both leave the caller's state intact.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	if IsUnauthorized(err) {
		return "Session expired or missing. Log in again."
	}
	var se *StatusError
	if errors.As(err, &se) {
		switch {
		case se.Code == http.StatusNotFound:
			return "Not found. It may have been removed already."
		case se.Code >= 400 && se.Code < 500:
			if m := strings.TrimSpace(se.Message); m != "" {
				return "Request rejected: " + m
			}
			return fmt.Sprintf("Request rejected (%d).", se.Code)
		case se.Code >= 500:
			return "Server error. Try again."
		default:
			return fmt.Sprintf("Unexpected response (%d). Try again.", se.Code)
		}
	}
	var te *TransportError
	if errors.As(err, &te) {
		return "Could not reach the server. Try again."
	}
	return "Something went wrong. Try again."
}
