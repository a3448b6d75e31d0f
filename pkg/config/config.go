// Package config enables config file parsing.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"

	"github.com/mr-shifu/pedersen-commit/core/group"
	"github.com/mr-shifu/pedersen-commit/core/hash"
	"github.com/mr-shifu/pedersen-commit/pkg/commitreveal"
	"github.com/mr-shifu/pedersen-commit/pkg/log"
)

// Defaults applied before the config file and the environment.
var defaults = map[string]interface{}{
	"scheme.group":              "ristretto255",
	"scheme.hash":               "sha512",
	"scheme.max_message_length": commitreveal.DefaultMaxMessageLength,
	"scheme.generator_policy":   "caller",
	"scheme.terminal_reveal":    false,
	"storage.backend":           "memory",
	"clock.kind":                "system",
	"log.format":                "json",
	"log.level":                 "info",
}

// Config contains the CLI configuration.
type Config struct {
	Scheme  *SchemeConfig  `koanf:"scheme"`
	Storage *StorageConfig `koanf:"storage"`
	Clock   *ClockConfig   `koanf:"clock"`
	Server  *ServerConfig  `koanf:"server"`
	Log     *LogConfig     `koanf:"log"`
	Metrics *MetricsConfig `koanf:"metrics"`
}

// Validate performs config validation.
func (cfg *Config) Validate() error {
	if cfg.Scheme != nil {
		if err := cfg.Scheme.Validate(); err != nil {
			return fmt.Errorf("scheme: %w", err)
		}
	}
	if cfg.Storage != nil {
		if err := cfg.Storage.Validate(); err != nil {
			return fmt.Errorf("storage: %w", err)
		}
	}
	if cfg.Clock != nil {
		if err := cfg.Clock.Validate(); err != nil {
			return fmt.Errorf("clock: %w", err)
		}
	}
	if cfg.Server != nil {
		if err := cfg.Server.Validate(); err != nil {
			return fmt.Errorf("server: %w", err)
		}
	}
	if cfg.Log != nil {
		if err := cfg.Log.Validate(); err != nil {
			return fmt.Errorf("log: %w", err)
		}
	}
	if cfg.Metrics != nil {
		if err := cfg.Metrics.Validate(); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}
	return nil
}

// SchemeConfig selects the commitment scheme and the engine behaviour.
type SchemeConfig struct {
	Group            string `koanf:"group"`
	Hash             string `koanf:"hash"`
	MaxMessageLength uint32 `koanf:"max_message_length"`
	GeneratorPolicy  string `koanf:"generator_policy"`
	FixedHSeed       string `koanf:"fixed_h_seed"`
	TerminalReveal   bool   `koanf:"terminal_reveal"`
}

// Validate validates the scheme configuration.
func (cfg *SchemeConfig) Validate() error {
	if _, err := group.ByName(cfg.Group); err != nil {
		return err
	}
	var fn hash.Function
	if err := fn.Set(cfg.Hash); err != nil {
		return err
	}
	engineCfg, err := cfg.EngineConfig()
	if err != nil {
		return err
	}
	return engineCfg.Validate()
}

// EngineConfig converts the scheme configuration into an engine Config.
func (cfg *SchemeConfig) EngineConfig() (commitreveal.Config, error) {
	var policy commitreveal.Policy
	if err := policy.Set(cfg.GeneratorPolicy); err != nil {
		return commitreveal.Config{}, err
	}
	return commitreveal.Config{
		MaxMessageLength: cfg.MaxMessageLength,
		Policy:           policy,
		FixedHSeed:       cfg.FixedHSeed,
		TerminalReveal:   cfg.TerminalReveal,
	}, nil
}

// StorageBackend is a storage backend. It implements the pflag.Value interface.
type StorageBackend uint

const (
	// BackendMemory keeps commitments in process memory.
	BackendMemory StorageBackend = iota
	// BackendPogreb is the embedded pogreb key-value store.
	BackendPogreb
	// BackendPostgres is the PostgreSQL storage backend.
	BackendPostgres
)

// String returns the string representation of a StorageBackend.
func (sb *StorageBackend) String() string {
	switch *sb {
	case BackendMemory:
		return "memory"
	case BackendPogreb:
		return "pogreb"
	case BackendPostgres:
		return "postgres"
	default:
		panic("config: unsupported storage backend")
	}
}

// Set sets the StorageBackend to the value specified by the provided string.
func (sb *StorageBackend) Set(s string) error {
	switch strings.ToLower(s) {
	case "memory":
		*sb = BackendMemory
	case "pogreb":
		*sb = BackendPogreb
	case "postgres":
		*sb = BackendPostgres
	default:
		return fmt.Errorf("config: invalid storage backend: '%s'", s)
	}
	return nil
}

// Type returns the list of supported StorageBackends.
func (sb *StorageBackend) Type() string {
	return "[memory,pogreb,postgres]"
}

// StorageConfig contains the storage layer configuration.
type StorageConfig struct {
	Backend string `koanf:"backend"`

	// Path is the pogreb database directory.
	Path string `koanf:"path"`

	// Endpoint is the PostgreSQL connection string.
	Endpoint string `koanf:"endpoint"`
}

// Validate validates the storage configuration.
func (cfg *StorageConfig) Validate() error {
	var sb StorageBackend
	if err := sb.Set(cfg.Backend); err != nil {
		return err
	}
	switch sb {
	case BackendPogreb:
		if cfg.Path == "" {
			return fmt.Errorf("pogreb backend requires a path")
		}
	case BackendPostgres:
		if cfg.Endpoint == "" {
			return fmt.Errorf("malformed storage endpoint '%s'", cfg.Endpoint)
		}
	}
	return nil
}

// ClockKind selects the clock commitments are stamped with.
type ClockKind uint

const (
	// ClockSystem stamps with unix milliseconds.
	ClockSystem ClockKind = iota
	// ClockHeight stamps with a block height advanced by the host.
	ClockHeight
)

func (ck *ClockKind) String() string {
	switch *ck {
	case ClockSystem:
		return "system"
	case ClockHeight:
		return "height"
	default:
		panic("config: unsupported clock kind")
	}
}

func (ck *ClockKind) Set(s string) error {
	switch strings.ToLower(s) {
	case "system":
		*ck = ClockSystem
	case "height":
		*ck = ClockHeight
	default:
		return fmt.Errorf("config: invalid clock kind: '%s'", s)
	}
	return nil
}

func (ck *ClockKind) Type() string {
	return "[system,height]"
}

type ClockConfig struct {
	Kind string `koanf:"kind"`
}

func (cfg *ClockConfig) Validate() error {
	var ck ClockKind
	return ck.Set(cfg.Kind)
}

// ServerConfig contains the HTTP front end configuration.
type ServerConfig struct {
	Endpoint string `koanf:"endpoint"`
}

// Validate validates the server configuration.
func (cfg *ServerConfig) Validate() error {
	if cfg.Endpoint == "" {
		return fmt.Errorf("malformed server endpoint '%s'", cfg.Endpoint)
	}
	return nil
}

// LogConfig contains the logging configuration.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
	File   string `koanf:"file"`
}

// Validate validates the logging configuration.
func (cfg *LogConfig) Validate() error {
	var format log.Format
	if err := format.Set(cfg.Format); err != nil {
		return err
	}
	var level log.Level
	return level.Set(cfg.Level)
}

// MetricsConfig contains the metrics configuration.
type MetricsConfig struct {
	PullEndpoint string `koanf:"pull_endpoint"`
}

// Validate validates the metrics configuration.
func (cfg *MetricsConfig) Validate() error {
	if cfg.PullEndpoint == "" {
		return fmt.Errorf("malformed Prometheus pull endpoint '%s'", cfg.PullEndpoint)
	}
	return nil
}

// InitConfig initializes configuration from file. An empty file name loads
// the defaults and the environment only.
func InitConfig(f string) (*Config, error) {
	var p koanf.Provider
	if f != "" {
		p = file.Provider(f)
	}
	return initConfig(p)
}

func initConfig(p koanf.Provider) (*Config, error) {
	var config Config
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, err
	}

	// Load configuration from the yaml config.
	if p != nil {
		if err := k.Load(p, yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Load environment variables and merge into the loaded config.
	if err := k.Load(env.Provider("", ".", func(s string) string {
		// `__` is used as a hierarchy delimiter.
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	if err := k.Unmarshal("", &config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
