package testing

import (
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

// ServerOption customizes the options of an embedded test server.
type ServerOption func(*server.Options)

// WithMaxPayload sets the server's maximum message size.
func WithMaxPayload(n int32) ServerOption {
	return func(o *server.Options) {
		o.MaxPayload = n
	}
}

// WithJetStream enables JetStream with its store under dir.
//
// Example:
//
//	_, nc := stenciltest.StartEmbeddedNATS(t, stenciltest.WithJetStream(t.TempDir()))
func WithJetStream(dir string) ServerOption {
	return func(o *server.Options) {
		o.JetStream = true
		o.StoreDir = dir
	}
}

// StartEmbeddedNATS starts an embedded NATS server for testing.
//
// The server runs in-process on a random port and is shut down automatically
// when the test completes, together with the returned connection.
//
// Parameters:
//   - t: Testing context for logging and cleanup
//   - opts: Optional server customizations
//
// Returns:
//   - *server.Server: The embedded NATS server instance
//   - *nats.Conn: Connected NATS client (closed automatically on test completion)
//
// Example:
//
//	func TestTransport(t *testing.T) {
//	    ns, nc := stenciltest.StartEmbeddedNATS(t)
//	    peer := stenciltest.Connect(t, ns.ClientURL())
//	    // Use nc and peer as two ranks
//	}
func StartEmbeddedNATS(t *testing.T, opts ...ServerOption) (*server.Server, *nats.Conn) {
	t.Helper()

	sopts := &server.Options{
		Host:   "127.0.0.1",
		Port:   -1,
		NoLog:  true,
		NoSigs: true,
	}
	for _, opt := range opts {
		opt(sopts)
	}

	ns, err := server.NewServer(sopts)
	if err != nil {
		t.Fatalf("Failed to create embedded NATS server: %v", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(5 * time.Second) {
		ns.Shutdown()
		t.Fatal("Embedded NATS server not ready within timeout")
	}

	t.Cleanup(func() {
		ns.Shutdown()
		ns.WaitForShutdown()
	})

	return ns, Connect(t, ns.ClientURL())
}

// Connect opens an extra client connection closed when the test completes.
//
// Each rank of a multi-rank test should use its own connection, as separate
// processes would.
func Connect(t *testing.T, clientURL string) *nats.Conn {
	t.Helper()

	nc, err := nats.Connect(clientURL,
		nats.Timeout(2*time.Second),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(3),
	)
	if err != nil {
		t.Fatalf("Failed to connect to embedded NATS server: %v", err)
	}
	t.Cleanup(nc.Close)

	return nc
}

// StartEmbeddedNATSCluster starts a 3-node NATS cluster.
//
// Connecting ranks to different nodes exercises subscription interest
// propagating over routes, during which senders see no responders.
//
// Parameters:
//   - t: Testing context for logging and cleanup
//
// Returns:
//   - []*server.Server: Slice of 3 NATS server instances
//
// Example:
//
//	servers := stenciltest.StartEmbeddedNATSCluster(t)
//	nc0 := stenciltest.Connect(t, servers[0].ClientURL())
//	nc1 := stenciltest.Connect(t, servers[1].ClientURL())
func StartEmbeddedNATSCluster(t *testing.T) []*server.Server {
	t.Helper()

	const clusterSize = 3
	servers := make([]*server.Server, clusterSize)
	clusterPorts := make([]int, clusterSize)

	for i := range clusterSize {
		ns := startClusterNode(t, i, clusterPorts, servers)
		servers[i] = ns
		clusterPorts[i] = getClusterPort(t, ns, i, servers)
	}

	t.Cleanup(func() {
		for _, s := range servers {
			s.Shutdown()
			s.WaitForShutdown()
		}
	})

	waitForClusterFormation(t, servers, clusterSize)

	return servers
}

// startClusterNode creates and starts a single NATS server node in the cluster.
func startClusterNode(t *testing.T, index int, clusterPorts []int, servers []*server.Server) *server.Server {
	t.Helper()

	opts := &server.Options{
		ServerName: fmt.Sprintf("test-server-%d", index),
		Host:       "127.0.0.1",
		Port:       -1,
		Cluster: server.ClusterOpts{
			Name: "test-cluster",
			Host: "127.0.0.1",
			Port: -1,
		},
		NoLog:  true,
		NoSigs: true,
	}

	if index > 0 {
		opts.Routes = buildClusterRoutes(index, clusterPorts)
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		shutdownServers(servers[:index])
		t.Fatalf("Failed to create NATS server %d: %v", index, err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(10 * time.Second) {
		servers[index] = ns
		shutdownServers(servers[:index+1])
		t.Fatalf("NATS server %d not ready", index)
	}

	return ns
}

// buildClusterRoutes builds the route URLs for cluster formation.
func buildClusterRoutes(count int, clusterPorts []int) []*url.URL {
	routes := make([]*url.URL, count)
	for j := range count {
		routeURL, _ := url.Parse(fmt.Sprintf("nats://127.0.0.1:%d", clusterPorts[j]))
		routes[j] = routeURL
	}

	return routes
}

// getClusterPort extracts the cluster port from a server.
func getClusterPort(t *testing.T, ns *server.Server, index int, servers []*server.Server) int {
	t.Helper()

	addr := ns.ClusterAddr()
	if addr == nil {
		servers[index] = ns
		shutdownServers(servers[:index+1])
		t.Fatalf("NATS server %d cluster address not available", index)
	}

	return addr.Port
}

// waitForClusterFormation waits for all servers to connect to each other.
func waitForClusterFormation(t *testing.T, servers []*server.Server, clusterSize int) {
	t.Helper()

	timeout := time.After(10 * time.Second)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			t.Fatal("Cluster failed to form within timeout")
		case <-ticker.C:
			if isClusterReady(servers, clusterSize) {
				return
			}
		}
	}
}

// isClusterReady checks if all servers are connected to each other.
func isClusterReady(servers []*server.Server, clusterSize int) bool {
	for _, s := range servers {
		if s.NumRoutes() < clusterSize-1 {
			return false
		}
	}

	return true
}

// shutdownServers shuts down all non-nil servers.
func shutdownServers(servers []*server.Server) {
	for _, s := range servers {
		if s != nil {
			s.Shutdown()
		}
	}
}
