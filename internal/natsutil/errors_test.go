package natsutil

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"
)

func TestRetryReason(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"no responders", nats.ErrNoResponders, "no_responders"},
		{"wrapped no responders", fmt.Errorf("request: %w", nats.ErrNoResponders), "no_responders"},
		{"nats timeout", nats.ErrTimeout, "timeout"},
		{"deadline", context.DeadlineExceeded, "timeout"},
		{"reconnecting", nats.ErrConnectionReconnecting, "disconnected"},
		{"refused", errors.New("dial tcp: connection refused"), "disconnected"},
		{"closed", nats.ErrConnectionClosed, ""},
		{"canceled", context.Canceled, ""},
		{"other", errors.New("boom"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, RetryReason(tt.err))
		})
	}
}

func TestIsConnectivityError(t *testing.T) {
	require.False(t, IsConnectivityError(nil))
	require.True(t, IsConnectivityError(nats.ErrNoServers))
	require.True(t, IsConnectivityError(errors.New("read: i/o timeout")))
	require.False(t, IsConnectivityError(errors.New("payload too large")))
}
