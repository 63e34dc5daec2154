package proxy

import (
	"context"
	"errors"
	"net"

	"github.com/fautty/fautty/pkg/requestlog"
)

// classifyError maps a failure to obtain an upstream response to an error kind.
func classifyError(err error) string {
	var dnsErr *net.DNSError
	var netErr net.Error

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return requestlog.ErrorKindTimeout
	case errors.Is(err, context.Canceled):
		return requestlog.ErrorKindCanceled
	case errors.As(err, &dnsErr):
		return requestlog.ErrorKindDNS
	case errors.As(err, &netErr) && netErr.Timeout():
		return requestlog.ErrorKindTimeout
	default:
		// Refused, reset or malformed responses all mean the upstream
		// could not be reached usefully.
		return requestlog.ErrorKindConnection
	}
}
