package adapter

import "errors"

var (
	// ErrUnauthorized is returned when the API key is rejected or a bearer
	// token is still refused after one refresh.
	ErrUnauthorized = errors.New("catalog rejected credentials")
	// ErrForbidden is returned for 403 on an API call.
	ErrForbidden = errors.New("catalog access forbidden")
	// ErrNotFound is returned for 404.
	ErrNotFound = errors.New("catalog resource not found")
	// ErrExpiredURL is returned when a resolved file link is no longer
	// valid (403 or 410 on the file URL).
	ErrExpiredURL = errors.New("download url expired")
	// ErrTransient covers timeouts, connection failures, 408, 429 and 5xx.
	// Retrying later may succeed.
	ErrTransient = errors.New("transient catalog failure")
	// ErrBadResponse is returned when a successful response cannot be
	// understood.
	ErrBadResponse = errors.New("unexpected catalog response")
	// ErrBadRequest is returned for any other 4xx status.
	ErrBadRequest = errors.New("catalog rejected request")
)
