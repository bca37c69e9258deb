// Package common defines shared constants and sentinel errors used across
// the exporter. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Input validation errors, raised before any network activity.
	ErrorInvalidDate       = errors.New("invalid date")
	ErrorUnsupportedFormat = errors.New("unsupported export format")

	// ErrorAuthentication means a login did not yield a usable session:
	// the transport call failed, no session cookie came back, or the
	// cookie carried no access-token value.
	ErrorAuthentication = errors.New("authentication failed")

	// ErrorUnauthorized is a 401 on an already-authenticated call. It is
	// distinct from ErrorAuthentication: the session looked fine at login
	// but the server rejected the request later.
	ErrorUnauthorized = errors.New("unauthorized")
)
