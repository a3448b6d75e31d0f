// Package serve implements the serve sub-command.
package serve

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mr-shifu/pedersen-commit/cmd/common"
	"github.com/mr-shifu/pedersen-commit/pkg/api"
	"github.com/mr-shifu/pedersen-commit/pkg/commitreveal"
	"github.com/mr-shifu/pedersen-commit/pkg/commitstore"
	com_vault "github.com/mr-shifu/pedersen-commit/pkg/common/vault"
	"github.com/mr-shifu/pedersen-commit/pkg/config"
	"github.com/mr-shifu/pedersen-commit/pkg/events"
	"github.com/mr-shifu/pedersen-commit/pkg/host"
	"github.com/mr-shifu/pedersen-commit/pkg/log"
	"github.com/mr-shifu/pedersen-commit/pkg/metrics"
)

const moduleName = "serve"

var (
	// Path to the configuration file.
	configFile string

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the commit-reveal HTTP API",
		Run:   runServer,
	}
)

func runServer(cmd *cobra.Command, args []string) {
	cfg, err := config.InitConfig(configFile)
	if err != nil {
		log.NewDefaultLogger("init").Error("init failed",
			"error", err,
		)
		os.Exit(1)
	}

	if err = common.Init(cfg); err != nil {
		log.NewDefaultLogger("init").Error("init failed",
			"error", err,
		)
		os.Exit(1)
	}
	logger := common.RootLogger().WithModule(moduleName)

	if cfg.Server == nil {
		logger.Error("server config not provided")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Run(ctx, cfg, logger); err != nil {
		logger.Error("service stopped", "error", err)
		os.Exit(1)
	}
}

// Service is the wired commit-reveal backend behind the HTTP API.
type Service struct {
	handler http.Handler
	vault   com_vault.Vault
}

// NewService opens the storage and clock selected by cfg and wires the engine
// behind the HTTP handler. Under a height clock every request is applied as
// its own block.
func NewService(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Service, error) {
	scheme, err := common.NewScheme(cfg.Scheme.Group, cfg.Scheme.Hash)
	if err != nil {
		return nil, err
	}
	engineCfg, err := cfg.Scheme.EngineConfig()
	if err != nil {
		return nil, err
	}
	v, err := common.NewVault(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, err
	}

	clk, height, err := common.NewClock(ctx, cfg.Clock, v)
	if err != nil {
		v.Close()
		return nil, err
	}

	engine, err := commitreveal.NewEngine(
		scheme,
		commitstore.NewVaultCommitStore(v),
		clk,
		events.NewLogSink(logger),
		engineCfg,
		commitreveal.WithLogger(logger),
		commitreveal.WithMetrics(metrics.NewDefaultEngineMetrics("pedersen")),
	)
	if err != nil {
		v.Close()
		return nil, err
	}

	var backend api.Backend = engine
	if height != nil {
		logger.Info("resuming height clock", "height", uint64(height.Now()))
		backend = host.NewExecutor(engine, height, host.DefaultParallelism, logger)
	}

	return &Service{
		handler: api.NewHandler(backend, logger).Router(),
		vault:   v,
	}, nil
}

func (s *Service) Handler() http.Handler {
	return s.handler
}

// Close releases the storage backend.
func (s *Service) Close() error {
	return s.vault.Close()
}

// Run wires the engine from cfg and serves it until ctx is done.
func Run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	svc, err := NewService(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	server := &http.Server{
		Addr:           cfg.Server.Endpoint,
		Handler:        svc.Handler(),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	if cfg.Metrics != nil {
		pull := metrics.NewPullService(cfg.Metrics.PullEndpoint, logger)
		group.Go(func() error {
			return pull.Run(groupCtx)
		})
	}
	group.Go(func() error {
		logger.Info("starting api service", "endpoint", cfg.Server.Endpoint,
			"group", cfg.Scheme.Group, "hash", cfg.Scheme.Hash, "policy", cfg.Scheme.GeneratorPolicy)
		return metrics.RunServer(groupCtx, server, logger)
	})
	return group.Wait()
}

// Register registers the serve sub-command.
func Register(parentCmd *cobra.Command) {
	serveCmd.Flags().StringVar(&configFile, "config", "", "path to the config.yml file")
	parentCmd.AddCommand(serveCmd)
}
