package testing

import (
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"
)

func TestStartEmbeddedNATS(t *testing.T) {
	ns, nc := StartEmbeddedNATS(t)

	require.NotNil(t, ns)
	require.NotNil(t, nc)
	require.True(t, nc.IsConnected())
	require.True(t, ns.ReadyForConnections(1*time.Second))
}

func TestStartEmbeddedNATS_MaxPayload(t *testing.T) {
	_, nc := StartEmbeddedNATS(t, WithMaxPayload(8<<20))

	require.Equal(t, int64(8<<20), nc.MaxPayload())
}

// TestStartEmbeddedNATS_ParallelTests verifies parallel test execution.
func TestStartEmbeddedNATS_ParallelTests(t *testing.T) {
	t.Parallel()

	for range 5 {
		t.Run("parallel", func(t *testing.T) {
			t.Parallel()

			_, nc := StartEmbeddedNATS(t)
			require.True(t, nc.IsConnected())
		})
	}
}

func TestConnect_RequestReply(t *testing.T) {
	ns, nc := StartEmbeddedNATS(t)
	peer := Connect(t, ns.ClientURL())

	_, err := peer.Subscribe("echo", func(m *nats.Msg) {
		_ = m.Respond(m.Data)
	})
	require.NoError(t, err)
	require.NoError(t, peer.Flush())

	resp, err := nc.Request("echo", []byte("ping"), time.Second)
	require.NoError(t, err)
	require.Equal(t, []byte("ping"), resp.Data)
}

func TestStartEmbeddedNATSCluster(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping cluster test in short mode")
	}

	servers := StartEmbeddedNATSCluster(t)

	require.Len(t, servers, 3)
	for i, s := range servers {
		require.True(t, s.ReadyForConnections(1*time.Second), "server %d not ready", i)
		require.Equal(t, 2, s.NumRoutes(), "server %d should have 2 routes", i)
	}
}

func TestStartEmbeddedNATS_JetStream(t *testing.T) {
	ns, _ := StartEmbeddedNATS(t, WithJetStream(t.TempDir()))

	require.True(t, ns.JetStreamEnabled())
}
