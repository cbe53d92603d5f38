package coupon

import "errors"

var (
	// ErrInvalidRequest is returned when the request or configuration is invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrNetworkError is returned when the service could not be reached
	ErrNetworkError = errors.New("network error")

	// ErrUnexpectedResponse is returned for non-2xx or undecodable responses
	ErrUnexpectedResponse = errors.New("unexpected response from coupon service")
)
