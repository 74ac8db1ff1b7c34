package natsutil

import (
	"context"
	"errors"
	"strings"

	"github.com/nats-io/nats.go"
)

// RetryReason classifies a request error as transient and returns a metric
// label for it.
//
// Transient errors are the ones a rank sees while a peer has not subscribed
// yet or the connection is reconnecting.
//
// Parameters:
//   - err: Error returned by a NATS request
//
// Returns:
//   - string: "no_responders", "timeout" or "disconnected"; "" for permanent errors
func RetryReason(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, nats.ErrNoResponders):
		return "no_responders"
	case errors.Is(err, nats.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case IsConnectivityError(err):
		return "disconnected"
	default:
		return ""
	}
}

// IsConnectivityError reports whether err is caused by a lost or
// reconnecting connection.
func IsConnectivityError(err error) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, nats.ErrNoServers) ||
		errors.Is(err, nats.ErrDisconnected) ||
		errors.Is(err, nats.ErrConnectionReconnecting) ||
		strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "i/o timeout")
}
