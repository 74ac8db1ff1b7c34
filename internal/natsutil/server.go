package natsutil

import (
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

// ServerConfig configures an in-process NATS server.
type ServerConfig struct {
	// Host to listen on. Empty means 127.0.0.1.
	Host string

	// Port to listen on. -1 picks a random free port.
	Port int

	// MaxPayload raises the server's message size limit when non-zero.
	MaxPayload int32

	// ReadyTimeout bounds the wait for the server to accept clients.
	ReadyTimeout time.Duration
}

// StartServer starts an in-process NATS server and connects a client to it.
//
// Returns:
//   - *server.Server: Running NATS server
//   - *nats.Conn: Client connection to the server
//   - error: Error if startup fails
func StartServer(cfg ServerConfig) (*server.Server, *nats.Conn, error) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = -1
	}
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = 10 * time.Second
	}

	opts := &server.Options{
		Host:       cfg.Host,
		Port:       cfg.Port,
		MaxPayload: cfg.MaxPayload,
		NoLog:      true,
		NoSigs:     true,
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create NATS server: %w", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(cfg.ReadyTimeout) {
		ns.Shutdown()
		return nil, nil, errors.New("NATS server not ready")
	}

	nc, err := nats.Connect(ns.ClientURL())
	if err != nil {
		ns.Shutdown()
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return ns, nc, nil
}
