// Command stencil smooths a synthetic image with the distributed engine and
// prints the digest of the result.
//
// Modes:
//   - local: every rank is a goroutine over an in-process world
//   - embedded-nats: every rank is a goroutine over NATS, using an
//     in-process NATS server
//   - nats: this process runs a single rank (-rank) against the server
//     at transport.url; start one process per rank, or pass -rank -1 to
//     every process and let them claim ranks through JetStream
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/arloliu/stencil"
	"github.com/arloliu/stencil/comm"
	"github.com/arloliu/stencil/internal/logging"
	"github.com/arloliu/stencil/internal/metrics"
	"github.com/arloliu/stencil/internal/natsutil"
	"github.com/arloliu/stencil/internal/rankclaim"
	"github.com/arloliu/stencil/source"
)

// embeddedMaxPayload is the message size limit of the in-process server.
const embeddedMaxPayload = 64 << 20

// rankTTL is how long a claimed rank outlives a crashed process.
const rankTTL = 30 * time.Second

type flags struct {
	configPath string
	mode       string
	rank       int
	workers    int
	height     int
	width      int
	seed       uint64
	out        string
	verify     bool
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.configPath, "config", "", "Path to YAML configuration file (defaults when empty)")
	flag.StringVar(&f.mode, "mode", "local", "Run mode: local, embedded-nats or nats")
	flag.IntVar(&f.rank, "rank", 0, "Rank of this process in nats mode, -1 claims a free rank")
	flag.IntVar(&f.workers, "workers", 0, "World size, overrides the config when > 0")
	flag.IntVar(&f.height, "height", 512, "Image height")
	flag.IntVar(&f.width, "width", 512, "Image width")
	flag.Uint64Var(&f.seed, "seed", 1, "Seed of the synthetic image")
	flag.StringVar(&f.out, "out", "", "Write the smoothed image to this file")
	flag.BoolVar(&f.verify, "verify", false, "Compare the result against the single-worker reference")
	flag.Parse()

	return f
}

func main() {
	f := parseFlags()

	cfg := stencil.DefaultConfig()
	if f.configPath != "" {
		var err error
		cfg, err = stencil.LoadConfig(f.configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if f.workers > 0 {
		cfg.Workers = f.workers
	}
	if f.mode != "local" {
		cfg.Transport.Kind = stencil.TransportNATS
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sk := sinks{logger: logger}
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		sk.metrics = metrics.NewPrometheus(reg, cfg.Metrics.Namespace)

		if cfg.Metrics.ListenAddr != "" {
			srv := metrics.NewServer(cfg.Metrics.ListenAddr, reg, logger)
			go func() {
				if err := srv.Serve(ctx); err != nil {
					logger.Error("metrics server failed", "error", err)
				}
			}()
		}
	}

	src := source.NewRandom(stencil.Shape{Height: f.height, Width: f.width}, f.seed)

	var input, out []int
	switch f.mode {
	case "local":
		if input, err = src.Load(ctx); err == nil {
			out, err = stencil.RunLocal(ctx, &cfg, input, sk.engineOpts()...)
		}
	case "embedded-nats":
		if input, err = src.Load(ctx); err == nil {
			out, err = runEmbedded(ctx, &cfg, input, sk)
		}
	case "nats":
		input, out, err = runRank(ctx, &cfg, f.rank, src, sk)
	default:
		err = fmt.Errorf("unknown mode: %s", f.mode)
	}
	if err != nil {
		logger.Fatal("run failed", "mode", f.mode, "error", err)
	}

	if input == nil {
		logger.Info("rank finished")
		return
	}

	fmt.Printf("shape=%dx%d workers=%d digest=%016x\n", f.height, f.width, cfg.Workers, stencil.Digest(out))

	if f.verify {
		want, err := stencil.Reference(input)
		if err != nil {
			logger.Fatal("reference failed", "error", err)
		}
		if stencil.Digest(want) != stencil.Digest(out) {
			logger.Fatal("output differs from reference", "want", stencil.Digest(want), "got", stencil.Digest(out))
		}
		fmt.Println("verified against reference")
	}

	if f.out != "" {
		if err := writeImage(f.out, f.height, f.width, out); err != nil {
			logger.Fatal("failed to write output", "path", f.out, "error", err)
		}
	}
}

// runEmbedded starts an in-process NATS server and runs every rank over it,
// each on its own connection.
func runEmbedded(ctx context.Context, cfg *stencil.Config, input []int, sk sinks) ([]int, error) {
	ns, nc, err := natsutil.StartServer(natsutil.ServerConfig{Port: -1, MaxPayload: embeddedMaxPayload})
	if err != nil {
		return nil, fmt.Errorf("failed to start embedded NATS: %w", err)
	}
	defer ns.Shutdown()
	defer nc.Close()

	outs := make([][]int, cfg.Workers)
	g, gctx := errgroup.WithContext(ctx)
	for rank := range cfg.Workers {
		rankConn, err := nats.Connect(ns.ClientURL())
		if err != nil {
			return nil, fmt.Errorf("rank %d: connect: %w", rank, err)
		}
		defer rankConn.Close()

		var rankInput []int
		if rank == stencil.Coordinator {
			rankInput = input
		}
		eng, closeFn, err := newNATSEngine(cfg, rankConn, rank, sk)
		if err != nil {
			return nil, err
		}
		defer closeFn()

		g.Go(func() error {
			out, err := eng.Run(gctx, rankInput)
			outs[rank] = out

			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return outs[stencil.Coordinator], nil
}

// runRank runs one rank against an external NATS server. A negative rank
// is replaced by the lowest rank no other process holds. Only the
// coordinator loads the input.
func runRank(ctx context.Context, cfg *stencil.Config, rank int, src stencil.ImageSource, sk sinks) ([]int, []int, error) {
	nc, err := nats.Connect(cfg.Transport.URL,
		nats.Name("stencil-"+cfg.Transport.SubjectPrefix),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	defer nc.Close()

	if rank < 0 {
		claimer, err := claimRank(ctx, cfg, nc, sk.logger)
		if err != nil {
			return nil, nil, err
		}
		defer func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := claimer.Release(releaseCtx); err != nil {
				sk.logger.Warn("failed to release rank", "error", err)
			}
		}()
		rank = claimer.Rank()
	}

	var input []int
	if rank == stencil.Coordinator {
		if input, err = src.Load(ctx); err != nil {
			return nil, nil, err
		}
	}

	eng, closeFn, err := newNATSEngine(cfg, nc, rank, sk)
	if err != nil {
		return nil, nil, err
	}
	defer closeFn()

	out, err := eng.Run(ctx, input)

	return input, out, err
}

// claimRank claims a free rank in the "<prefix>-ranks" bucket and keeps it
// renewed until released.
func claimRank(ctx context.Context, cfg *stencil.Config, nc *nats.Conn, logger stencil.Logger) (*rankclaim.Claimer, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to get JetStream: %w", err)
	}

	kv, err := rankclaim.EnsureBucket(ctx, js, cfg.Transport.SubjectPrefix+"-ranks", rankTTL)
	if err != nil {
		return nil, err
	}

	claimer := rankclaim.NewClaimer(kv, cfg.Workers, rankTTL, logger)
	if _, err := claimer.Claim(ctx); err != nil {
		return nil, err
	}
	if err := claimer.StartRenewal(); err != nil {
		return nil, err
	}

	return claimer, nil
}

func newNATSEngine(cfg *stencil.Config, nc *nats.Conn, rank int, sk sinks) (*stencil.Engine, func(), error) {
	t, err := comm.NewNATSTransport(nc, rank, cfg.Workers, cfg.NATSConfig(), sk.commOpts()...)
	if err != nil {
		return nil, nil, fmt.Errorf("rank %d: %w", rank, err)
	}
	closeFn := func() { _ = t.Close() }

	commOpts := append([]comm.Option{comm.WithTimeout(cfg.OperationTimeout)}, sk.commOpts()...)
	eng, err := stencil.NewEngine(cfg, comm.New(t, commOpts...), sk.engineOpts()...)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("rank %d: %w", rank, err)
	}

	return eng, closeFn, nil
}

// sinks are the logger and metrics collector shared by engines,
// communicators and transports.
type sinks struct {
	logger  stencil.Logger
	metrics stencil.MetricsCollector
}

func (s sinks) engineOpts() []stencil.Option {
	opts := []stencil.Option{stencil.WithLogger(s.logger)}
	if s.metrics != nil {
		opts = append(opts, stencil.WithMetrics(s.metrics))
	}

	return opts
}

func (s sinks) commOpts() []comm.Option {
	opts := []comm.Option{comm.WithLogger(s.logger)}
	if s.metrics != nil {
		opts = append(opts, comm.WithMetrics(s.metrics))
	}

	return opts
}

// writeImage writes "H W" followed by one line of space-separated pixels per row.
func writeImage(path string, h, w int, pixels []int) (err error) {
	if len(pixels) != h*w {
		return errors.New("pixel count does not match shape")
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()

	bw := bufio.NewWriter(file)
	_, _ = fmt.Fprintf(bw, "%d %d\n", h, w)
	for i := range h {
		row := pixels[i*w : (i+1)*w]
		for j, p := range row {
			if j > 0 {
				_ = bw.WriteByte(' ')
			}
			_, _ = bw.WriteString(strconv.Itoa(p))
		}
		_ = bw.WriteByte('\n')
	}

	return bw.Flush()
}
