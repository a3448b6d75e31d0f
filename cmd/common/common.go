// Package common implements common command options.
package common

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mr-shifu/pedersen-commit/core/group"
	"github.com/mr-shifu/pedersen-commit/core/hash"
	"github.com/mr-shifu/pedersen-commit/core/pedersen"
	"github.com/mr-shifu/pedersen-commit/pkg/clock"
	com_clock "github.com/mr-shifu/pedersen-commit/pkg/common/clock"
	com_vault "github.com/mr-shifu/pedersen-commit/pkg/common/vault"
	"github.com/mr-shifu/pedersen-commit/pkg/config"
	"github.com/mr-shifu/pedersen-commit/pkg/log"
	"github.com/mr-shifu/pedersen-commit/pkg/vault"
)

var rootLogger = log.NewDefaultLogger("pedersen")

// Init initializes the common environment.
func Init(cfg *config.Config) error {
	var w io.Writer = os.Stdout
	format := log.FmtJSON
	level := log.LevelInfo

	if cfg.Log != nil {
		var err error
		if w, err = getLoggingStream(cfg.Log); err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		if err := format.Set(cfg.Log.Format); err != nil {
			return err
		}
		if err := level.Set(cfg.Log.Level); err != nil {
			return err
		}
	}
	logger, err := log.NewLogger("pedersen", w, format, level)
	if err != nil {
		return err
	}
	rootLogger = logger
	return nil
}

// RootLogger returns the logger defined by the logging config.
func RootLogger() *log.Logger {
	return rootLogger
}

func getLoggingStream(cfg *config.LogConfig) (io.Writer, error) {
	if cfg == nil || cfg.File == "" {
		return os.Stdout, nil
	}
	w, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// NewScheme builds the scheme over the named group and hash function.
func NewScheme(groupName, hashName string) (*pedersen.Scheme, error) {
	grp, err := group.ByName(groupName)
	if err != nil {
		return nil, err
	}
	var fn hash.Function
	if err := fn.Set(hashName); err != nil {
		return nil, err
	}
	return pedersen.NewScheme(grp, hash.NewScalarHasher(grp, fn)), nil
}

// NewVault opens the storage backend selected by cfg.
func NewVault(ctx context.Context, cfg *config.StorageConfig, logger *log.Logger) (com_vault.Vault, error) {
	var backend config.StorageBackend
	if err := backend.Set(cfg.Backend); err != nil {
		return nil, err
	}

	switch backend {
	case config.BackendMemory:
		return vault.NewInMemoryVault(), nil
	case config.BackendPogreb:
		return vault.OpenPogrebVault(cfg.Path, logger)
	case config.BackendPostgres:
		return vault.OpenPostgresVault(ctx, cfg.Endpoint, logger)
	default:
		panic(fmt.Sprintf("unsupported storage backend: %v", backend.String()))
	}
}

// NewClock creates the clock selected by cfg. The height clock resumes from
// the height persisted in v and is returned separately so the caller can
// drive it.
func NewClock(ctx context.Context, cfg *config.ClockConfig, v com_vault.Vault) (com_clock.Clock, *clock.HeightClock, error) {
	var kind config.ClockKind
	if err := kind.Set(cfg.Kind); err != nil {
		return nil, nil, err
	}
	if kind == config.ClockHeight {
		hc, err := clock.OpenHeightClock(ctx, v)
		if err != nil {
			return nil, nil, err
		}
		return hc, hc, nil
	}
	return clock.NewSystemClock(), nil, nil
}
