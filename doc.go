// Package stencil provides a distributed 3x3 image smoothing engine that
// partitions an image by rows across a world of workers and exchanges
// one-row halos so every worker can smooth its rows independently.
//
// The output is bit-identical to the single-worker reference for every
// world size, including worlds with more workers than image rows.
//
// # Quick Start
//
// Smoothing an image on goroutine workers of this process:
//
//	import "github.com/arloliu/stencil"
//
//	cfg := stencil.DefaultConfig()
//	cfg.Workers = 8
//
//	input, err := stencil.EncodeInput(stencil.Shape{Height: h, Width: w}, pixels)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	out, err := stencil.RunLocal(ctx, &cfg, input)
//
// # Input Encoding
//
// An input is a flat integer sequence [H, Wd, p0 ... p(H*Wd-1)] with pixels
// in row-major order. The coordinator (rank 0) validates it and broadcasts a
// verdict before any other collective, so a malformed input makes every rank
// return an error instead of hanging.
//
// # Architecture
//
// Each rank runs an Engine that walks the phases:
//
//	Idle → Validate → Prepare → Run → Finalize → Idle
//
// The row partition and halo plan are pure functions of (H, Wd, W) computed
// by every rank (see the partition package). The kernel package holds the
// stencil itself. Ranks talk through a Communicator (see the comm package),
// either in-process or across processes over NATS.
//
// # Multi-process Usage
//
// Each process connects to NATS and runs one rank:
//
//	t, err := comm.NewNATSTransport(nc, rank, cfg.Workers, cfg.NATSConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer t.Close()
//
//	eng, err := stencil.NewEngine(&cfg, comm.New(t, comm.WithTimeout(cfg.OperationTimeout)),
//	    stencil.WithLogger(logger),
//	    stencil.WithMetrics(collector),
//	)
//	out, err := eng.Run(ctx, input) // input is ignored on ranks other than 0
//
// See cmd/stencil for a complete command-line driver.
package stencil
