// Package testing provides test utilities for the stencil library.
//
// This package offers helpers for setting up test environments, particularly
// embedded NATS servers for running multi-rank tests over the NATS transport.
// It follows Go's convention of providing testing utilities in a dedicated
// package (similar to net/http/httptest).
//
// Key utilities:
//   - StartEmbeddedNATS: Single NATS server plus a client connection
//   - Connect: Extra per-rank client connections
//   - StartEmbeddedNATSCluster: 3-node NATS cluster
//   - NewTestLogger: Logger writing to testing.T
//
// Example usage:
//
//	import (
//	    "testing"
//	    stenciltest "github.com/arloliu/stencil/testing"
//	)
//
//	func TestMyComponent(t *testing.T) {
//	    _, nc := stenciltest.StartEmbeddedNATS(t)
//	    // Use nc for your tests
//	}
package testing
