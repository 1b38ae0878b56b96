package hcloud

import (
	"errors"
	"net"
	"testing"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"github.com/stretchr/testify/assert"
)

func TestInstanceActive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		instance Instance
		want     bool
	}{
		{
			name:     "running with address",
			instance: Instance{Status: InstanceStatusRunning, PublicIPv4: "203.0.113.5"},
			want:     true,
		},
		{
			name:     "running without address",
			instance: Instance{Status: InstanceStatusRunning},
			want:     false,
		},
		{
			name:     "starting with address",
			instance: Instance{Status: InstanceStatusStarting, PublicIPv4: "203.0.113.5"},
			want:     false,
		},
		{
			name:     "off",
			instance: Instance{Status: InstanceStatusOff, PublicIPv4: "203.0.113.5"},
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.instance.Active())
		})
	}
}

func TestFromServer(t *testing.T) {
	t.Parallel()

	server := &hcloud.Server{
		ID:     42,
		Name:   "rpc-mainnet-7",
		Status: hcloud.ServerStatusRunning,
	}
	server.PublicNet.IPv4.IP = net.ParseIP("203.0.113.5")

	inst := fromServer(server)

	assert.Equal(t, "42", inst.ID)
	assert.Equal(t, "rpc-mainnet-7", inst.Name)
	assert.Equal(t, InstanceStatusRunning, inst.Status)
	assert.Equal(t, "203.0.113.5", inst.PublicIPv4)
}

func TestFromServer_NoPublicIP(t *testing.T) {
	t.Parallel()

	inst := fromServer(&hcloud.Server{ID: 1, Status: hcloud.ServerStatusInitializing})

	assert.Equal(t, InstanceStatusStarting, inst.Status)
	assert.Empty(t, inst.PublicIPv4)
	assert.False(t, inst.Active())
}

func TestMapStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, InstanceStatusRunning, mapStatus(hcloud.ServerStatusRunning))
	assert.Equal(t, InstanceStatusOff, mapStatus(hcloud.ServerStatusOff))
	assert.Equal(t, InstanceStatusStarting, mapStatus(hcloud.ServerStatusInitializing))
	assert.Equal(t, InstanceStatusStarting, mapStatus(hcloud.ServerStatusStarting))
}

func TestBuildLabelSelector(t *testing.T) {
	t.Parallel()

	sel := buildLabelSelector(map[string]string{
		"server-id":  "42",
		"managed-by": "blockscout-automation",
	})

	// deterministic regardless of map order
	assert.Equal(t, "managed-by=blockscout-automation,server-id=42", sel)
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	assert.True(t, IsNotFound(hcloud.Error{Code: hcloud.ErrorCodeNotFound}))
	assert.False(t, IsNotFound(hcloud.Error{Code: hcloud.ErrorCodeRateLimitExceeded}))
	assert.False(t, IsNotFound(errors.New("boom")))
	assert.False(t, IsNotFound(nil))
}
