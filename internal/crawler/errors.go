package crawler

import "errors"

var (
	// ErrUnavailable covers network failures, timeouts and non-success statuses.
	ErrUnavailable = errors.New("upstream unavailable")
	// ErrRejectedParameters means the upstream refused a parameter such as a region code.
	ErrRejectedParameters = errors.New("upstream rejected parameters")
	// ErrMalformedResponse means the body arrived but the expected data was not in it.
	ErrMalformedResponse = errors.New("malformed upstream response")
)
