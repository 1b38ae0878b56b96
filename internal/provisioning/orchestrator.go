// Package provisioning drives the create, poll, configure lifecycle of a
// managed server.
//
// RequestProvision returns as soon as the work is handed to the task runner;
// from then on the persisted record's status is the only window into
// progress. Every failure inside the detached task degrades to a status
// write, never to a propagated error.
package provisioning

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/NyiNyiSoePaing/blockscout-automation/internal/metrics"
	"github.com/NyiNyiSoePaing/blockscout-automation/internal/models"
	"github.com/NyiNyiSoePaing/blockscout-automation/internal/platform/hcloud"
	"github.com/NyiNyiSoePaing/blockscout-automation/internal/status"
	"github.com/NyiNyiSoePaing/blockscout-automation/internal/store"
	"github.com/NyiNyiSoePaing/blockscout-automation/internal/tasks"
	"github.com/NyiNyiSoePaing/blockscout-automation/internal/util/naming"
)

// ConfigurationDeployer is the post-provisioning configuration step.
type ConfigurationDeployer interface {
	Deploy(ctx context.Context, server *models.ManagedServer)
}

// Options tunes the orchestrator.
type Options struct {
	// Instance shape for created servers.
	ServerType string
	Image      string
	Location   string
	SSHKeys    []string

	// PollInterval between readiness checks. Zero means 10 seconds.
	PollInterval time.Duration
	// PollAttempts bounds the readiness wait. Zero means 30 attempts
	// (a 5 minute ceiling at the default interval).
	PollAttempts int
}

// Orchestrator owns the create, poll, configure flow.
type Orchestrator struct {
	servers  store.ServerStore
	cloud    hcloud.InstanceClient
	deployer ConfigurationDeployer
	tasks    *tasks.Runner
	log      *zap.Logger
	opts     Options
}

// NewOrchestrator wires an Orchestrator.
func NewOrchestrator(servers store.ServerStore, cloud hcloud.InstanceClient, deployer ConfigurationDeployer, taskRunner *tasks.Runner, log *zap.Logger, opts Options) *Orchestrator {
	if opts.PollInterval == 0 {
		opts.PollInterval = 10 * time.Second
	}
	if opts.PollAttempts == 0 {
		opts.PollAttempts = 30
	}
	return &Orchestrator{
		servers:  servers,
		cloud:    cloud,
		deployer: deployer,
		tasks:    taskRunner,
		log:      log.Named("provisioning"),
		opts:     opts,
	}
}

// RequestProvision hands the provisioning flow for a freshly persisted
// record to the task runner and returns immediately. The record must already
// be in status provisioning.
func (o *Orchestrator) RequestProvision(server *models.ManagedServer) error {
	snapshot := *server
	return o.tasks.Go("provision", func(ctx context.Context) {
		o.provision(ctx, snapshot)
	})
}

func (o *Orchestrator) provision(ctx context.Context, server models.ManagedServer) {
	log := o.log.With(zap.Uint("server_id", server.ID), zap.String("kind", string(server.Kind)))
	start := time.Now()

	instanceID, err := o.cloud.CreateInstance(ctx, hcloud.InstanceCreateOpts{
		Name:       naming.Instance(string(server.Kind), string(server.NetworkType), server.ID),
		ServerType: o.opts.ServerType,
		Image:      o.opts.Image,
		Location:   o.opts.Location,
		SSHKeys:    o.opts.SSHKeys,
		Labels:     naming.InstanceLabels(string(server.Kind), server.ProjectID, server.ID),
	})
	if err != nil {
		log.Error("instance creation failed", zap.Error(err))
		metrics.ProvisionTotal.WithLabelValues(string(server.Kind), metrics.ResultFailure).Inc()
		o.writeStatus(server.ID, status.Failed, log)
		return
	}

	// Record the instance id before polling so the cleanup fallback chain
	// is never needed for this record.
	if err := o.servers.Update(ctx, server.ID, store.ServerUpdate{CloudInstanceID: &instanceID}); err != nil {
		log.Error("failed to persist instance id", zap.String("instance_id", instanceID), zap.Error(err))
	}
	log.Info("instance created", zap.String("instance_id", instanceID))

	ip, ok := o.pollUntilActive(ctx, instanceID, log)
	if !ok {
		// The instance is left in place; only the record is marked failed.
		log.Error("instance never became active", zap.Int("attempts", o.opts.PollAttempts))
		metrics.ProvisionTotal.WithLabelValues(string(server.Kind), metrics.ResultTimeout).Inc()
		o.writeStatus(server.ID, status.Failed, log)
		return
	}

	ready := status.ReadyToDomainSetup
	if err := o.servers.Update(ctx, server.ID, store.ServerUpdate{
		IPAddress: &ip,
		Status:    &ready,
	}); err != nil {
		log.Error("failed to persist instance address", zap.Error(err))
		return
	}
	log.Info("instance active", zap.String("ip", ip), zap.Duration("took", time.Since(start)))
	metrics.ProvisionDuration.WithLabelValues(string(server.Kind)).Observe(time.Since(start).Seconds())

	configured, err := o.servers.Get(ctx, server.ID)
	if err != nil {
		log.Error("failed to reload record for configuration", zap.Error(err))
		return
	}
	if err := o.tasks.Go("configure", func(ctx context.Context) {
		o.deployer.Deploy(ctx, configured)
	}); err != nil {
		log.Error("failed to start configuration deployment", zap.Error(err))
	}
}

// pollUntilActive checks the instance at a fixed interval until it is
// running with a public address, or attempts are exhausted. A transient
// lookup error consumes an attempt but does not abort the loop.
func (o *Orchestrator) pollUntilActive(ctx context.Context, instanceID string, log *zap.Logger) (string, bool) {
	for attempt := 1; attempt <= o.opts.PollAttempts; attempt++ {
		instance, err := o.cloud.GetInstance(ctx, instanceID)
		if err != nil {
			log.Warn("instance poll failed", zap.Int("attempt", attempt), zap.Error(err))
		} else if instance.Active() {
			return instance.PublicIPv4, true
		}

		if attempt < o.opts.PollAttempts {
			select {
			case <-ctx.Done():
				return "", false
			case <-time.After(o.opts.PollInterval):
			}
		}
	}
	return "", false
}

func (o *Orchestrator) writeStatus(id uint, to status.Status, log *zap.Logger) {
	if err := store.TransitionStatus(context.Background(), o.servers, id, to); err != nil {
		var illegal *status.ErrIllegalTransition
		if errors.As(err, &illegal) {
			log.Warn("skipping illegal status transition", zap.Error(err))
		} else {
			log.Error("failed to persist status", zap.String("status", string(to)), zap.Error(err))
		}
	}
}
