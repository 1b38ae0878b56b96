package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/NyiNyiSoePaing/blockscout-automation/internal/api"
	"github.com/NyiNyiSoePaing/blockscout-automation/internal/cleanup"
	"github.com/NyiNyiSoePaing/blockscout-automation/internal/config"
	"github.com/NyiNyiSoePaing/blockscout-automation/internal/deploy"
	"github.com/NyiNyiSoePaing/blockscout-automation/internal/platform/hcloud"
	"github.com/NyiNyiSoePaing/blockscout-automation/internal/provisioning"
	"github.com/NyiNyiSoePaing/blockscout-automation/internal/store"
	"github.com/NyiNyiSoePaing/blockscout-automation/internal/tasks"
)

const (
	shutdownTimeout = 10 * time.Second
	drainTimeout    = 2 * time.Minute
)

// Serve returns the command that runs the HTTP service.
//
// Environment variables:
//
//	DB_CONN:      Postgres connection string (required)
//	HCLOUD_TOKEN: Hetzner Cloud API token (required)
//	MODE:         "production" switches to the production logger
//	LISTEN:       HTTP listen address (default :8080)
func Serve() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the provisioning service",
		Long: `Run the provisioning service.

The service exposes the project and server management API, provisions
cloud instances in the background, and reports progress through the
persisted server status.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, err := newLogger(cfg.System.IsProd)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	db, err := store.Open(cfg.System.DBConn)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	servers := store.NewGormServerStore(db)
	projects := store.NewGormProjectStore(db)

	taskRunner := tasks.NewRunner(log)
	cloud := hcloud.NewRealClient(cfg.Cloud.Token)
	execRunner := deploy.NewExecRunner(log)

	deployer := deploy.NewConfigDeployer(servers, execRunner, log, deploy.ConfigDeployerOptions{
		PlaybookDir: cfg.Deploy.PlaybookDir,
		SSHKeyPath:  cfg.Deploy.SSHKeyPath,
		Timeout:     cfg.Deploy.ConfigTimeout,
	})
	certs := deploy.NewCertProvisioner(servers, execRunner, taskRunner, log, deploy.CertProvisionerOptions{
		PlaybookDir: cfg.Deploy.PlaybookDir,
		SSHKeyPath:  cfg.Deploy.SSHKeyPath,
		Watchdog:    cfg.Deploy.CertWatchdog,
	})
	orchestrator := provisioning.NewOrchestrator(servers, cloud, deployer, taskRunner, log, provisioning.Options{
		ServerType:   cfg.Cloud.ServerType,
		Image:        cfg.Cloud.Image,
		Location:     cfg.Cloud.Location,
		SSHKeys:      cfg.Cloud.SSHKeys,
		PollInterval: cfg.Provision.PollInterval,
		PollAttempts: cfg.Provision.PollAttempts,
	})
	cleaner := cleanup.NewCoordinator(servers, projects, cloud, taskRunner, log)

	app := api.NewApp(log, servers, projects, orchestrator, cleaner, certs)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogMethod: true,
		LogStatus: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				zap.String("method", v.Method),
				zap.String("URI", v.URI),
				zap.Int("status", v.Status),
			)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	app.Register(e)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(cfg.System.Listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	log.Info("service started", zap.String("listen", cfg.System.Listen))

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutCtx); err != nil {
		log.Error("http shutdown failed", zap.Error(err))
	}

	// Detached lifecycle work keeps running after the HTTP listener closes.
	// Give it a bounded window to settle before the process exits.
	drainCtx, cancelDrain := context.WithTimeout(context.Background(), drainTimeout)
	defer cancelDrain()
	if err := taskRunner.Drain(drainCtx); err != nil {
		log.Warn("background tasks did not settle before exit", zap.Error(err))
	}

	log.Info("service stopped")
	return nil
}

func newLogger(isProd bool) (*zap.Logger, error) {
	if isProd {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
