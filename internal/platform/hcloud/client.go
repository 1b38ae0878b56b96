// Package hcloud provides a wrapper around the Hetzner Cloud API.
package hcloud

import "context"

// InstanceStatus is the reported lifecycle state of a cloud instance.
type InstanceStatus string

const (
	// InstanceStatusRunning means the instance is booted and serving.
	InstanceStatusRunning InstanceStatus = "running"
	// InstanceStatusStarting covers all pre-running states (initializing,
	// starting, migrating).
	InstanceStatusStarting InstanceStatus = "starting"
	// InstanceStatusOff means the instance exists but is powered off.
	InstanceStatusOff InstanceStatus = "off"
)

// Instance is the subset of cloud instance state the orchestrator needs.
type Instance struct {
	ID         string
	Name       string
	Status     InstanceStatus
	PublicIPv4 string // empty when no public IPv4 is assigned yet
}

// Active reports whether the instance is running and has a public address.
func (i *Instance) Active() bool {
	return i.Status == InstanceStatusRunning && i.PublicIPv4 != ""
}

// InstanceCreateOpts holds all parameters for creating a cloud instance.
type InstanceCreateOpts struct {
	Name       string
	ServerType string
	Image      string
	Location   string
	SSHKeys    []string
	Labels     map[string]string
	UserData   string
}

// InstanceClient defines the typed interface over the compute-instance API.
type InstanceClient interface {
	// CreateInstance creates a new instance and returns its provider id.
	CreateInstance(ctx context.Context, opts InstanceCreateOpts) (string, error)

	// GetInstance returns the instance with the given provider id.
	GetInstance(ctx context.Context, id string) (*Instance, error)

	// DeleteInstance deletes the instance with the given provider id.
	// A missing instance is treated as already deleted, not as an error.
	DeleteInstance(ctx context.Context, id string) error

	// ListInstances returns all instances matching the given labels.
	// Used only as a fallback lookup during cleanup.
	ListInstances(ctx context.Context, labels map[string]string) ([]*Instance, error)

	// GetInstanceByName returns the instance with the given name, or nil
	// when no such instance exists.
	GetInstanceByName(ctx context.Context, name string) (*Instance, error)
}
