// Package comm provides the message-passing capability used by the engine.
//
// Comm implements types.Communicator on top of any types.Transport. All
// collectives (Bcast, Scatterv, Gatherv) are built from point-to-point sends:
// the root posts one non-blocking send per peer and joins them with WaitAll,
// peers block on a single receive. Every collective stamps a sequence number
// and an op name so a rank that calls collectives in a different order than
// its peers is reported as diverged instead of silently mixing payloads.
//
// Two transports are included:
//
//   - LocalTransport: ranks are goroutines in one process (NewLocalWorld)
//   - NATSTransport: ranks are separate processes connected through NATS
//
// Example:
//
//	world := comm.NewLocalWorld(4)
//	for _, t := range world {
//	    c := comm.New(t, comm.WithTimeout(30*time.Second))
//	    go run(c)
//	}
package comm
