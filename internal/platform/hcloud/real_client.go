package hcloud

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/NyiNyiSoePaing/blockscout-automation/internal/util/retry"
)

// RealClient implements InstanceClient using the Hetzner Cloud API.
type RealClient struct {
	client        *hcloud.Client
	createTimeout time.Duration
}

// ClientOption configures a RealClient.
type ClientOption func(*RealClient)

// WithHCloudClient sets a custom hcloud client (useful for testing).
func WithHCloudClient(hc *hcloud.Client) ClientOption {
	return func(c *RealClient) {
		c.client = hc
	}
}

// WithCreateTimeout sets the deadline for instance creation.
func WithCreateTimeout(d time.Duration) ClientOption {
	return func(c *RealClient) {
		c.createTimeout = d
	}
}

// NewRealClient creates a new RealClient with optional configuration.
func NewRealClient(token string, opts ...ClientOption) *RealClient {
	c := &RealClient{
		client:        hcloud.NewClient(hcloud.WithToken(token)),
		createTimeout: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateInstance creates a new instance and waits for the create action.
func (c *RealClient) CreateInstance(ctx context.Context, opts InstanceCreateOpts) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.createTimeout)
	defer cancel()

	createOpts, err := c.buildCreateOpts(ctx, opts)
	if err != nil {
		return "", err
	}

	var result hcloud.ServerCreateResult
	err = retry.Do(ctx, func() error {
		res, _, err := c.client.Server.Create(ctx, createOpts)
		if err != nil {
			if isInvalidParameter(err) {
				return retry.Fatal(err)
			}
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to create instance: %w", err)
	}

	if err := c.client.Action.WaitFor(ctx, result.Action); err != nil {
		return "", fmt.Errorf("failed to wait for instance creation: %w", err)
	}

	return strconv.FormatInt(result.Server.ID, 10), nil
}

// buildCreateOpts resolves server type, image and location to API objects.
func (c *RealClient) buildCreateOpts(ctx context.Context, opts InstanceCreateOpts) (hcloud.ServerCreateOpts, error) {
	serverType, _, err := c.client.ServerType.Get(ctx, opts.ServerType)
	if err != nil {
		return hcloud.ServerCreateOpts{}, fmt.Errorf("failed to get server type: %w", err)
	}
	if serverType == nil {
		return hcloud.ServerCreateOpts{}, fmt.Errorf("server type not found: %s", opts.ServerType)
	}

	image, err := c.resolveImage(ctx, opts.Image, serverType)
	if err != nil {
		return hcloud.ServerCreateOpts{}, err
	}

	location, _, err := c.client.Location.Get(ctx, opts.Location)
	if err != nil {
		return hcloud.ServerCreateOpts{}, fmt.Errorf("failed to get location %s: %w", opts.Location, err)
	}

	sshKeys, err := c.resolveSSHKeys(ctx, opts.SSHKeys)
	if err != nil {
		return hcloud.ServerCreateOpts{}, err
	}

	return hcloud.ServerCreateOpts{
		Name:       opts.Name,
		ServerType: serverType,
		Image:      image,
		Location:   location,
		SSHKeys:    sshKeys,
		Labels:     opts.Labels,
		UserData:   opts.UserData,
	}, nil
}

// resolveImage finds an image matching the server type architecture.
func (c *RealClient) resolveImage(ctx context.Context, name string, serverType *hcloud.ServerType) (*hcloud.Image, error) {
	images, _, err := c.client.Image.List(ctx, hcloud.ImageListOpts{
		Name:         name,
		Architecture: []hcloud.Architecture{serverType.Architecture},
		Sort:         []string{"created:desc"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	if len(images) > 0 {
		return images[0], nil
	}

	image, _, err := c.client.Image.Get(ctx, name) //nolint:staticcheck
	if err != nil {
		return nil, fmt.Errorf("failed to get image: %w", err)
	}
	if image == nil {
		return nil, fmt.Errorf("image not found: %s", name)
	}
	return image, nil
}

// resolveSSHKeys resolves SSH key names/IDs to SSH key objects.
func (c *RealClient) resolveSSHKeys(ctx context.Context, keys []string) ([]*hcloud.SSHKey, error) {
	var out []*hcloud.SSHKey
	for _, key := range keys {
		keyObj, _, err := c.client.SSHKey.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to get ssh key %s: %w", key, err)
		}
		if keyObj == nil {
			return nil, fmt.Errorf("ssh key not found: %s", key)
		}
		out = append(out, keyObj)
	}
	return out, nil
}

// GetInstance returns the instance with the given provider id.
func (c *RealClient) GetInstance(ctx context.Context, id string) (*Instance, error) {
	numericID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid instance id: %s", id)
	}

	server, _, err := c.client.Server.GetByID(ctx, numericID)
	if err != nil {
		return nil, fmt.Errorf("failed to get instance: %w", err)
	}
	if server == nil {
		return nil, fmt.Errorf("instance not found: %s", id)
	}

	return fromServer(server), nil
}

// DeleteInstance deletes the instance with the given provider id. A missing
// instance is treated as already deleted.
func (c *RealClient) DeleteInstance(ctx context.Context, id string) error {
	numericID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid instance id: %s", id)
	}

	server, _, err := c.client.Server.GetByID(ctx, numericID)
	if err != nil {
		if IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to get instance: %w", err)
	}
	if server == nil {
		return nil
	}

	result, _, err := c.client.Server.DeleteWithResult(ctx, server)
	if err != nil {
		if IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to delete instance: %w", err)
	}

	if err := c.client.Action.WaitFor(ctx, result.Action); err != nil {
		return fmt.Errorf("failed to wait for instance deletion: %w", err)
	}
	return nil
}

// ListInstances returns all instances matching the given labels.
func (c *RealClient) ListInstances(ctx context.Context, labels map[string]string) ([]*Instance, error) {
	servers, err := c.client.Server.AllWithOpts(ctx, hcloud.ServerListOpts{
		ListOpts: hcloud.ListOpts{LabelSelector: buildLabelSelector(labels)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list instances: %w", err)
	}

	out := make([]*Instance, 0, len(servers))
	for _, s := range servers {
		out = append(out, fromServer(s))
	}
	return out, nil
}

// GetInstanceByName returns the instance with the given name, or nil when no
// such instance exists.
func (c *RealClient) GetInstanceByName(ctx context.Context, name string) (*Instance, error) {
	server, _, err := c.client.Server.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get instance by name: %w", err)
	}
	if server == nil {
		return nil, nil
	}
	return fromServer(server), nil
}

func fromServer(s *hcloud.Server) *Instance {
	inst := &Instance{
		ID:     strconv.FormatInt(s.ID, 10),
		Name:   s.Name,
		Status: mapStatus(s.Status),
	}
	if s.PublicNet.IPv4.IP != nil {
		inst.PublicIPv4 = s.PublicNet.IPv4.IP.String()
	}
	return inst
}

func mapStatus(s hcloud.ServerStatus) InstanceStatus {
	switch s {
	case hcloud.ServerStatusRunning:
		return InstanceStatusRunning
	case hcloud.ServerStatusOff:
		return InstanceStatusOff
	default:
		return InstanceStatusStarting
	}
}

func buildLabelSelector(labels map[string]string) string {
	parts := make([]string, 0, len(labels))
	for k, v := range labels {
		parts = append(parts, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}
