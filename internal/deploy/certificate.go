package deploy

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/NyiNyiSoePaing/blockscout-automation/internal/metrics"
	"github.com/NyiNyiSoePaing/blockscout-automation/internal/status"
	"github.com/NyiNyiSoePaing/blockscout-automation/internal/store"
	"github.com/NyiNyiSoePaing/blockscout-automation/internal/tasks"
)

// ErrNoAddress is returned synchronously when certificate setup is requested
// for a server that has no known IP address yet.
var ErrNoAddress = errors.New("server has no ip address yet")

// CertProvisionerOptions tunes a CertProvisioner.
type CertProvisionerOptions struct {
	// PlaybookDir holds ssl.yml.
	PlaybookDir string
	// SSHKeyPath is the private key handed to ansible.
	SSHKeyPath string
	// Watchdog bounds one issuance run. Zero means the 10 minute default.
	Watchdog time.Duration
}

// CertProvisioner drives TLS/domain setup for a server: it persists the
// requested domain, answers the caller, then runs the certificate playbook as
// detached work under a watchdog.
type CertProvisioner struct {
	servers store.ServerStore
	runner  CommandRunner
	tasks   *tasks.Runner
	log     *zap.Logger
	opts    CertProvisionerOptions
}

// NewCertProvisioner wires a CertProvisioner.
func NewCertProvisioner(servers store.ServerStore, runner CommandRunner, taskRunner *tasks.Runner, log *zap.Logger, opts CertProvisionerOptions) *CertProvisioner {
	if opts.Watchdog == 0 {
		opts.Watchdog = 10 * time.Minute
	}
	return &CertProvisioner{
		servers: servers,
		runner:  runner,
		tasks:   taskRunner,
		log:     log.Named("certificate"),
		opts:    opts,
	}
}

// RequestCertificate validates the precondition, persists the domain and
// ssl_setup_started, and hands the issuance subprocess to the task runner.
// Everything after the returned nil is observable only via the record status.
func (p *CertProvisioner) RequestCertificate(ctx context.Context, serverID uint, domain string) error {
	server, err := p.servers.Get(ctx, serverID)
	if err != nil {
		return err
	}
	if server.IPAddress == "" {
		return ErrNoAddress
	}
	if err := status.Check(server.Status, status.SSLSetupStarted); err != nil {
		return err
	}

	started := status.SSLSetupStarted
	if err := p.servers.Update(ctx, serverID, store.ServerUpdate{
		Domain: &domain,
		Status: &started,
	}); err != nil {
		return fmt.Errorf("failed to persist domain: %w", err)
	}

	ip := server.IPAddress
	return p.tasks.Go("certificate", func(ctx context.Context) {
		p.issue(ctx, serverID, ip, domain)
	})
}

// issue runs the certificate playbook under the watchdog and finalizes the
// record status exactly once. The watchdog kill and a late subprocess exit
// both funnel through the same single-assignment guard, so neither can
// overwrite the other's terminal outcome.
func (p *CertProvisioner) issue(ctx context.Context, serverID uint, ip, domain string) {
	log := p.log.With(zap.Uint("server_id", serverID), zap.String("domain", domain))

	ctx, cancel := context.WithTimeout(ctx, p.opts.Watchdog)
	defer cancel()

	var finalized atomic.Bool
	finalize := func(outcome status.Status, result string) {
		if !finalized.CompareAndSwap(false, true) {
			return
		}
		metrics.CertificateTotal.WithLabelValues(result).Inc()
		p.writeStatus(serverID, outcome, log)
	}

	// Finalize on watchdog expiry even if the killed subprocess never
	// reports back.
	watchdogDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				log.Error("certificate issuance killed by watchdog")
				finalize(status.SSLFailed, metrics.ResultTimeout)
			}
		case <-watchdogDone:
		}
	}()
	defer close(watchdogDone)

	err := p.runner.Run(ctx, "ansible-playbook",
		filepath.Join(p.opts.PlaybookDir, "ssl.yml"),
		"-i", ip+",",
		"--private-key", p.opts.SSHKeyPath,
		"-e", fmt.Sprintf("server_id=%d", serverID),
		"-e", fmt.Sprintf("domain=%s", domain),
	)

	switch {
	case err == nil:
		log.Info("certificate issued")
		finalize(status.Running, metrics.ResultSuccess)
	case errors.Is(err, context.DeadlineExceeded):
		finalize(status.SSLFailed, metrics.ResultTimeout)
	default:
		log.Error("certificate issuance failed", zap.Error(err))
		finalize(status.SSLFailed, metrics.ResultFailure)
	}
}

func (p *CertProvisioner) writeStatus(id uint, to status.Status, log *zap.Logger) {
	if err := store.TransitionStatus(context.Background(), p.servers, id, to); err != nil {
		var illegal *status.ErrIllegalTransition
		if errors.As(err, &illegal) {
			log.Warn("skipping illegal status transition", zap.Error(err))
		} else {
			log.Error("failed to persist status", zap.String("status", string(to)), zap.Error(err))
		}
	}
}
