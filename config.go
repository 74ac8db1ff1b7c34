package stencil

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/stencil/comm"
	"github.com/arloliu/stencil/internal/logging"
)

// Transport kinds.
const (
	// TransportLocal runs every rank as a goroutine of one process.
	TransportLocal = "local"

	// TransportNATS runs ranks as separate processes connected through NATS.
	TransportNATS = "nats"
)

// TransportConfig selects and tunes the message transport between ranks.
type TransportConfig struct {
	// Kind is "local" or "nats".
	Kind string `yaml:"kind"`

	// URL is the NATS server URL. Ignored for local transports.
	URL string `yaml:"url"`

	// SubjectPrefix namespaces the per-rank subjects "<prefix>.<rank>".
	// Concurrent worlds sharing one NATS server need distinct prefixes.
	SubjectPrefix string `yaml:"subjectPrefix"`

	// RequestTimeout bounds a single delivery attempt.
	RequestTimeout time.Duration `yaml:"requestTimeout"`

	// RetryBase is the first delay between delivery attempts.
	RetryBase time.Duration `yaml:"retryBase"`

	// RetryCap bounds the delay between delivery attempts.
	RetryCap time.Duration `yaml:"retryCap"`
}

// MetricsConfig controls Prometheus instrumentation.
type MetricsConfig struct {
	// Enabled turns on the Prometheus collector.
	Enabled bool `yaml:"enabled"`

	// Namespace prefixes every metric name.
	Namespace string `yaml:"namespace"`

	// ListenAddr is where the CLI serves /metrics. Empty disables the endpoint.
	ListenAddr string `yaml:"listenAddr"`
}

// LogConfig controls the slog-backed logger built by the CLI.
type LogConfig struct {
	// Level is "debug", "info", "warn" or "error".
	Level string `yaml:"level"`

	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// Config is the configuration of an engine run.
//
// All duration fields accept standard Go duration strings like "30s", "5m", "1h".
type Config struct {
	// Workers is the world size W. Every rank of a world must use the same value.
	Workers int `yaml:"workers"`

	// OperationTimeout bounds each collective operation. Zero waits for the
	// caller's context only.
	OperationTimeout time.Duration `yaml:"operationTimeout"`

	// Transport selects the rank-to-rank transport.
	Transport TransportConfig `yaml:"transport"`

	// Metrics controls Prometheus instrumentation.
	Metrics MetricsConfig `yaml:"metrics"`

	// Log controls logging.
	Log LogConfig `yaml:"log"`
}

// DefaultConfig returns a configuration with sensible defaults.
//
// Returns:
//   - Config: Configuration with default values
//
// Example:
//
//	cfg := stencil.DefaultConfig()
//	cfg.Workers = 8
func DefaultConfig() Config {
	return Config{
		Workers:          4,
		OperationTimeout: 60 * time.Second,
		Transport: TransportConfig{
			Kind:           TransportLocal,
			URL:            "nats://127.0.0.1:4222",
			SubjectPrefix:  "stencil",
			RequestTimeout: 2 * time.Second,
			RetryBase:      10 * time.Millisecond,
			RetryCap:       500 * time.Millisecond,
		},
		Metrics: MetricsConfig{
			Enabled:   false,
			Namespace: "stencil",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// SetDefaults fills zero-valued fields of cfg with DefaultConfig values.
//
// OperationTimeout is left alone: zero is a valid choice meaning "no bound".
//
// Parameters:
//   - cfg: Configuration to fill (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.Workers == 0 {
		cfg.Workers = defaults.Workers
	}
	if cfg.Transport.Kind == "" {
		cfg.Transport.Kind = defaults.Transport.Kind
	}
	if cfg.Transport.URL == "" {
		cfg.Transport.URL = defaults.Transport.URL
	}
	if cfg.Transport.SubjectPrefix == "" {
		cfg.Transport.SubjectPrefix = defaults.Transport.SubjectPrefix
	}
	if cfg.Transport.RequestTimeout == 0 {
		cfg.Transport.RequestTimeout = defaults.Transport.RequestTimeout
	}
	if cfg.Transport.RetryBase == 0 {
		cfg.Transport.RetryBase = defaults.Transport.RetryBase
	}
	if cfg.Transport.RetryCap == 0 {
		cfg.Transport.RetryCap = defaults.Transport.RetryCap
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = defaults.Metrics.Namespace
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = defaults.Log.Format
	}
}

// Validate checks the configuration for consistency.
//
// Returns:
//   - error: Error wrapping ErrInvalidConfig describing the first violation, nil if valid
func (cfg *Config) Validate() error {
	if cfg.Workers < 1 {
		return fmt.Errorf("%w: Workers must be >= 1, got %d", ErrInvalidConfig, cfg.Workers)
	}
	if cfg.OperationTimeout < 0 {
		return fmt.Errorf("%w: OperationTimeout must be >= 0, got %v", ErrInvalidConfig, cfg.OperationTimeout)
	}

	switch cfg.Transport.Kind {
	case TransportLocal, TransportNATS:
	default:
		return fmt.Errorf("%w: unknown transport kind %q", ErrInvalidConfig, cfg.Transport.Kind)
	}
	if cfg.Transport.RequestTimeout <= 0 {
		return fmt.Errorf("%w: Transport.RequestTimeout must be > 0, got %v", ErrInvalidConfig, cfg.Transport.RequestTimeout)
	}
	if cfg.Transport.RetryBase <= 0 || cfg.Transport.RetryCap < cfg.Transport.RetryBase {
		return fmt.Errorf("%w: Transport retry window [%v, %v] is invalid",
			ErrInvalidConfig, cfg.Transport.RetryBase, cfg.Transport.RetryCap)
	}

	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	switch cfg.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, cfg.Log.Format)
	}

	return nil
}

// ValidateWithWarnings logs configuration choices that are legal but
// likely to misbehave.
//
// Parameters:
//   - logger: Logger for warning messages
func (cfg *Config) ValidateWithWarnings(logger Logger) {
	if cfg.OperationTimeout == 0 {
		logger.Warn("OperationTimeout is disabled, a lost rank blocks the run until the context ends")
	}

	if cfg.Transport.Kind == TransportNATS && cfg.OperationTimeout > 0 &&
		cfg.OperationTimeout < 2*cfg.Transport.RequestTimeout {
		logger.Warn(
			"OperationTimeout allows fewer than two delivery attempts",
			"operationTimeout", cfg.OperationTimeout,
			"requestTimeout", cfg.Transport.RequestTimeout,
		)
	}
}

// NATSConfig returns the transport settings in the form comm.NewNATSTransport takes.
func (cfg *Config) NATSConfig() comm.NATSConfig {
	return comm.NATSConfig{
		SubjectPrefix:  cfg.Transport.SubjectPrefix,
		RequestTimeout: cfg.Transport.RequestTimeout,
		RetryBase:      cfg.Transport.RetryBase,
		RetryCap:       cfg.Transport.RetryCap,
	}
}

// TestConfig returns a configuration with short timeouts for tests.
//
// Returns:
//   - Config: Configuration suitable for unit and integration tests
func TestConfig() Config {
	cfg := DefaultConfig()

	cfg.Workers = 3
	cfg.OperationTimeout = 10 * time.Second
	cfg.Transport.RequestTimeout = 500 * time.Millisecond
	cfg.Transport.RetryBase = 2 * time.Millisecond
	cfg.Transport.RetryCap = 50 * time.Millisecond
	cfg.Log.Level = "debug"

	return cfg
}

// ParseConfig decodes YAML into a configuration, applies defaults and validates it.
//
// Parameters:
//   - data: YAML document
//
// Returns:
//   - Config: Decoded configuration
//   - error: Decode or validation error
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	SetDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadConfig reads a YAML configuration file.
//
// Parameters:
//   - path: Path to the YAML file
//
// Returns:
//   - Config: Decoded configuration with defaults applied
//   - error: Read, decode or validation error
//
// Example:
//
//	cfg, err := stencil.LoadConfig("stencil.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	return ParseConfig(data)
}
