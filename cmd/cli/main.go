package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/authflow/internal/buildinfo"
	"github.com/dmitrijs2005/authflow/internal/client/cli"
	"github.com/dmitrijs2005/authflow/internal/client/client"
	"github.com/dmitrijs2005/authflow/internal/client/config"
	"github.com/dmitrijs2005/authflow/internal/client/device"
	"github.com/dmitrijs2005/authflow/internal/client/repositories/secrets"
	"github.com/dmitrijs2005/authflow/internal/client/services"
	"github.com/dmitrijs2005/authflow/internal/client/session"
	"github.com/dmitrijs2005/authflow/internal/cryptox"
	"github.com/dmitrijs2005/authflow/internal/filex"
	"github.com/dmitrijs2005/authflow/internal/logging"
	"github.com/dmitrijs2005/authflow/internal/netx"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogFormat, cfg.LogLevel, os.Stderr)
	if err != nil {
		return err
	}
	if z, ok := logger.(*logging.ZapLogger); ok {
		defer func() { _ = z.Sync() }()
	}

	if err := filex.EnsureParentDir(cfg.StorePath); err != nil {
		return fmt.Errorf("prepare store directory: %w", err)
	}
	db, err := secrets.OpenSQLiteStore(ctx, cfg.StorePath)
	if err != nil {
		return err
	}
	defer db.Close()

	key, err := cryptox.LoadKey(cfg.StoreKeyFile, cfg.StorePassphrase)
	if err != nil {
		return fmt.Errorf("load store key: %w", err)
	}
	store, err := secrets.NewSealedStore(db, key)
	if err != nil {
		return err
	}

	deviceID, err := device.Ensure(ctx, store)
	if err != nil {
		return fmt.Errorf("device identifier: %w", err)
	}
	logger.Debug(ctx, "device ready", "device_id", deviceID)

	opts := []netx.Option{
		netx.WithTimeout(cfg.RequestTimeout),
		netx.WithLogger(logger.With("component", "netx")),
		netx.WithRetryPolicy(netx.RetryPolicy{
			MaxRetries:   cfg.MaxRetries,
			InitialDelay: cfg.InitialBackoff,
			Jitter:       cfg.Jitter,
		}),
	}
	if cfg.RequestsPerSecond > 0 {
		opts = append(opts, netx.WithRateLimit(cfg.RequestsPerSecond, 1))
	}

	api, err := client.NewHTTPClient(cfg.ServerBaseURL, netx.New(opts...))
	if err != nil {
		return err
	}

	as := services.NewAuthService(api, store, session.New(), services.WithLogger(logger.With("component", "auth")))
	if err := as.Resume(ctx); err != nil {
		return fmt.Errorf("resume flow: %w", err)
	}

	cli.NewApp(cfg, as, logger).Run(ctx)
	return nil
}
