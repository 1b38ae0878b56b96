package deploy

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/NyiNyiSoePaing/blockscout-automation/internal/metrics"
	"github.com/NyiNyiSoePaing/blockscout-automation/internal/models"
	"github.com/NyiNyiSoePaing/blockscout-automation/internal/status"
	"github.com/NyiNyiSoePaing/blockscout-automation/internal/store"
)

// ConfigDeployerOptions tunes a ConfigDeployer.
type ConfigDeployerOptions struct {
	// PlaybookDir holds the per-kind playbooks (rpc.yml, explorer.yml).
	PlaybookDir string
	// SSHKeyPath is the private key handed to ansible.
	SSHKeyPath string
	// Timeout bounds one deployment run. Zero means the 30 minute default.
	Timeout time.Duration
}

// ConfigDeployer runs the configuration playbook against a freshly
// provisioned instance. Exit 0 re-affirms ready_to_domain_setup as the stable
// post-config state; any other outcome moves the record to failed.
type ConfigDeployer struct {
	servers store.ServerStore
	runner  CommandRunner
	log     *zap.Logger
	opts    ConfigDeployerOptions
}

// NewConfigDeployer wires a ConfigDeployer.
func NewConfigDeployer(servers store.ServerStore, runner CommandRunner, log *zap.Logger, opts ConfigDeployerOptions) *ConfigDeployer {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Minute
	}
	return &ConfigDeployer{
		servers: servers,
		runner:  runner,
		log:     log.Named("configure"),
		opts:    opts,
	}
}

// Deploy runs the configuration tool for the given server. Callers must not
// invoke it more than once per provisioning attempt: nothing prevents two
// overlapping deployments for the same record.
func (d *ConfigDeployer) Deploy(ctx context.Context, server *models.ManagedServer) {
	log := d.log.With(zap.Uint("server_id", server.ID), zap.String("ip", server.IPAddress))

	ctx, cancel := context.WithTimeout(ctx, d.opts.Timeout)
	defer cancel()

	err := d.runner.Run(ctx, "ansible-playbook",
		d.deployArgs(server)...,
	)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Error("configuration deployment timed out")
			metrics.ProvisionTotal.WithLabelValues(string(server.Kind), metrics.ResultTimeout).Inc()
		} else {
			log.Error("configuration deployment failed", zap.Error(err))
			metrics.ProvisionTotal.WithLabelValues(string(server.Kind), metrics.ResultFailure).Inc()
		}
		d.writeStatus(server.ID, status.Failed, log)
		return
	}

	log.Info("configuration deployed")
	metrics.ProvisionTotal.WithLabelValues(string(server.Kind), metrics.ResultSuccess).Inc()
	d.writeStatus(server.ID, status.ReadyToDomainSetup, log)
}

func (d *ConfigDeployer) deployArgs(server *models.ManagedServer) []string {
	playbook := filepath.Join(d.opts.PlaybookDir, string(server.Kind)+".yml")
	args := []string{
		playbook,
		"-i", server.IPAddress + ",",
		"--private-key", d.opts.SSHKeyPath,
		"-e", fmt.Sprintf("server_id=%d", server.ID),
		"-e", fmt.Sprintf("server_kind=%s", server.Kind),
	}
	if server.NetworkType != "" {
		args = append(args, "-e", fmt.Sprintf("network_type=%s", server.NetworkType))
	}
	if server.ChainID != "" {
		args = append(args, "-e", fmt.Sprintf("chain_id=%s", server.ChainID))
	}
	return args
}

// writeStatus persists the outcome. Deploy runs inside a detached task, so
// failures degrade to a log line here rather than propagating anywhere.
func (d *ConfigDeployer) writeStatus(id uint, to status.Status, log *zap.Logger) {
	// The triggering context may already be past its deadline.
	if err := store.TransitionStatus(context.Background(), d.servers, id, to); err != nil {
		var illegal *status.ErrIllegalTransition
		if errors.As(err, &illegal) {
			log.Warn("skipping illegal status transition", zap.Error(err))
		} else {
			log.Error("failed to persist status", zap.String("status", string(to)), zap.Error(err))
		}
	}
}
