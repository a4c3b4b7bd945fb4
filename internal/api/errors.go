package api

import (
	"errors"
	"fmt"
	"net"
	"net/url"

	"fileconv/internal/services"
)

// RejectedError reports an explicit refusal from the service. Message is the
// server-provided text, shown to the user verbatim.
type RejectedError struct {
	Endpoint string
	Status   int
	Message  string
}

func (e *RejectedError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s rejected: %s", e.Endpoint, e.Message)
}

// Unwrap lets errors.Is match services.ErrRejected.
func (e *RejectedError) Unwrap() error {
	return services.ErrRejected
}

// IsRejected reports whether err carries a server rejection and returns it.
func IsRejected(err error) (*RejectedError, bool) {
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		return rejected, true
	}
	return nil, false
}

// IsUnavailable reports whether err stems from the service being unreachable.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		err = urlErr.Err
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

func transportError(endpoint, message string, err error) error {
	return services.Wrap(services.ErrTransport, endpoint, "", message, err)
}
