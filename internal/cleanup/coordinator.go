// Package cleanup tears down managed servers and their cloud instances.
//
// Cloud-side failures are logged and counted but never block record cleanup:
// by the time the coordinator runs, the user-facing response has already been
// sent, so the record is the only thing left to keep truthful.
package cleanup

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/NyiNyiSoePaing/blockscout-automation/internal/metrics"
	"github.com/NyiNyiSoePaing/blockscout-automation/internal/models"
	"github.com/NyiNyiSoePaing/blockscout-automation/internal/platform/hcloud"
	"github.com/NyiNyiSoePaing/blockscout-automation/internal/store"
	"github.com/NyiNyiSoePaing/blockscout-automation/internal/tasks"
	"github.com/NyiNyiSoePaing/blockscout-automation/internal/util/async"
	"github.com/NyiNyiSoePaing/blockscout-automation/internal/util/naming"
)

// Coordinator owns the delete flows.
type Coordinator struct {
	servers  store.ServerStore
	projects store.ProjectStore
	cloud    hcloud.InstanceClient
	tasks    *tasks.Runner
	log      *zap.Logger
}

// NewCoordinator wires a Coordinator.
func NewCoordinator(servers store.ServerStore, projects store.ProjectStore, cloud hcloud.InstanceClient, taskRunner *tasks.Runner, log *zap.Logger) *Coordinator {
	return &Coordinator{
		servers:  servers,
		projects: projects,
		cloud:    cloud,
		tasks:    taskRunner,
		log:      log.Named("cleanup"),
	}
}

// RequestDeleteServer hands a single-server teardown to the task runner.
func (c *Coordinator) RequestDeleteServer(id uint, hard bool) error {
	return c.tasks.Go("delete-server", func(ctx context.Context) {
		if err := c.DeleteServer(ctx, id, hard); err != nil {
			c.log.Error("server cleanup failed", zap.Uint("server_id", id), zap.Error(err))
		}
	})
}

// RequestDeleteProject hands a cascading project teardown to the task runner.
func (c *Coordinator) RequestDeleteProject(id uint) error {
	return c.tasks.Go("delete-project", func(ctx context.Context) {
		if err := c.DeleteProject(ctx, id); err != nil {
			c.log.Error("project cleanup failed", zap.Uint("project_id", id), zap.Error(err))
		}
	})
}

// DeleteServer tears down the cloud instance backing a record, then removes
// (hard) or deactivates (soft) the record itself. It is idempotent: a missing
// record or an already-gone instance both count as success.
func (c *Coordinator) DeleteServer(ctx context.Context, id uint, hard bool) error {
	log := c.log.With(zap.Uint("server_id", id))

	server, err := c.servers.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load server: %w", err)
	}

	instanceID := c.resolveInstanceID(ctx, server, log)
	if instanceID == "" {
		log.Info("no cloud instance found, skipping cloud deletion")
	} else if err := c.cloud.DeleteInstance(ctx, instanceID); err != nil {
		// The record is cleaned up regardless; the instance may leak and
		// needs operator attention.
		log.Error("failed to delete cloud instance", zap.String("instance_id", instanceID), zap.Error(err))
		metrics.CleanupTotal.WithLabelValues(metrics.ResultFailure).Inc()
	} else {
		log.Info("cloud instance deleted", zap.String("instance_id", instanceID))
		metrics.CleanupTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	}

	if hard {
		err = c.servers.Delete(ctx, id)
	} else {
		err = c.servers.Deactivate(ctx, id)
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to remove server record: %w", err)
	}
	return nil
}

// resolveInstanceID finds the cloud instance for a record through an ordered
// fallback chain: the stored id, then a label lookup, then the deterministic
// name. First match wins; no match means there is nothing to delete.
func (c *Coordinator) resolveInstanceID(ctx context.Context, server *models.ManagedServer, log *zap.Logger) string {
	if server.CloudInstanceID != "" {
		return server.CloudInstanceID
	}

	instances, err := c.cloud.ListInstances(ctx, naming.ServerSelector(server.ID))
	if err != nil {
		log.Warn("label lookup failed", zap.Error(err))
	} else if len(instances) > 0 {
		return instances[0].ID
	}

	name := naming.Instance(string(server.Kind), string(server.NetworkType), server.ID)
	instance, err := c.cloud.GetInstanceByName(ctx, name)
	if err != nil {
		log.Warn("name lookup failed", zap.String("name", name), zap.Error(err))
		return ""
	}
	if instance == nil {
		return ""
	}
	return instance.ID
}

// DeleteProject tears down every server owned by the project concurrently,
// waits for all of them to settle, then deletes the project record. One
// server's failure never aborts another's cleanup; servers already cleaned
// stay cleaned even when the final project deletion fails.
func (c *Coordinator) DeleteProject(ctx context.Context, projectID uint) error {
	log := c.log.With(zap.Uint("project_id", projectID))

	servers, err := c.servers.List(ctx, store.ServerFilter{ProjectID: projectID})
	if err != nil {
		return fmt.Errorf("failed to enumerate project servers: %w", err)
	}

	cleanups := make([]async.Task, 0, len(servers))
	for _, server := range servers {
		server := server
		cleanups = append(cleanups, async.Task{
			Name: fmt.Sprintf("server-%d", server.ID),
			Func: func(ctx context.Context) error {
				return c.DeleteServer(ctx, server.ID, true)
			},
		})
	}

	results := async.RunAllSettled(ctx, cleanups)
	for _, failed := range async.Failed(results) {
		log.Error("cascade cleanup failed for one server", zap.String("task", failed.Name), zap.Error(failed.Err))
	}

	if err := c.projects.Delete(ctx, projectID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		// best-effort retry of the project deletion alone
		log.Warn("project deletion failed, retrying", zap.Error(err))
		if err := c.projects.Delete(ctx, projectID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("failed to delete project record: %w", err)
		}
	}

	log.Info("project deleted", zap.Int("servers_cleaned", len(servers)))
	return nil
}
