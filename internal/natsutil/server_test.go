package natsutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStartServer(t *testing.T) {
	ns, nc, err := StartServer(ServerConfig{MaxPayload: 4 << 20})
	require.NoError(t, err)
	t.Cleanup(func() {
		nc.Close()
		ns.Shutdown()
	})

	require.True(t, nc.IsConnected())
	require.Equal(t, int64(4<<20), nc.MaxPayload())
}
