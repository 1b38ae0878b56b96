package deploy

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/NyiNyiSoePaing/blockscout-automation/internal/models"
	"github.com/NyiNyiSoePaing/blockscout-automation/internal/status"
	"github.com/NyiNyiSoePaing/blockscout-automation/internal/store/storetest"
	"github.com/NyiNyiSoePaing/blockscout-automation/internal/tasks"
)

// fakeRunner records invocations and settles after an optional delay.
type fakeRunner struct {
	mu    sync.Mutex
	calls [][]string

	err        error
	delay      time.Duration
	ignoreCtx  bool // keep "running" past the context deadline
	runStarted chan struct{}
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) error {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{name}, args...))
	f.mu.Unlock()
	if f.runStarted != nil {
		close(f.runStarted)
	}

	if f.delay == 0 {
		if !f.ignoreCtx && ctx.Err() != nil {
			return ctx.Err()
		}
		return f.err
	}

	if f.ignoreCtx {
		time.Sleep(f.delay)
		return f.err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(f.delay):
		return f.err
	}
}

func (f *fakeRunner) lastCall() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1]
}

func seedReadyServer(servers *storetest.FakeServerStore) *models.ManagedServer {
	return servers.Seed(models.ManagedServer{
		ProjectID:       7,
		Kind:            models.KindRPC,
		NetworkType:     models.NetworkMainnet,
		ChainID:         "1",
		CloudInstanceID: "42",
		IPAddress:       "203.0.113.5",
		Status:          status.ReadyToDomainSetup,
		IsActive:        true,
	})
}

func TestConfigDeployer_SuccessReaffirmsReadyState(t *testing.T) {
	t.Parallel()

	servers := storetest.NewFakeServerStore()
	server := seedReadyServer(servers)
	runner := &fakeRunner{}

	d := NewConfigDeployer(servers, runner, zap.NewNop(), ConfigDeployerOptions{
		PlaybookDir: "/etc/playbooks",
		SSHKeyPath:  "/etc/keys/id_ed25519",
	})
	d.Deploy(context.Background(), server)

	got, err := servers.Get(context.Background(), server.ID)
	require.NoError(t, err)
	assert.Equal(t, status.ReadyToDomainSetup, got.Status)

	call := runner.lastCall()
	require.NotNil(t, call)
	assert.Equal(t, "ansible-playbook", call[0])
	assert.Equal(t, "/etc/playbooks/rpc.yml", call[1])
	assert.Contains(t, call, "203.0.113.5,")
	assert.Contains(t, call, "server_id=1")
	assert.Contains(t, call, "network_type=mainnet")
	assert.Contains(t, call, "chain_id=1")
}

func TestConfigDeployer_FailureMovesToFailed(t *testing.T) {
	t.Parallel()

	servers := storetest.NewFakeServerStore()
	server := seedReadyServer(servers)
	runner := &fakeRunner{err: errors.New("exit status 2")}

	d := NewConfigDeployer(servers, runner, zap.NewNop(), ConfigDeployerOptions{})
	d.Deploy(context.Background(), server)

	got, err := servers.Get(context.Background(), server.ID)
	require.NoError(t, err)
	assert.Equal(t, status.Failed, got.Status)
}

func TestConfigDeployer_TimeoutMovesToFailed(t *testing.T) {
	t.Parallel()

	servers := storetest.NewFakeServerStore()
	server := seedReadyServer(servers)
	runner := &fakeRunner{delay: time.Hour}

	d := NewConfigDeployer(servers, runner, zap.NewNop(), ConfigDeployerOptions{
		Timeout: 20 * time.Millisecond,
	})
	d.Deploy(context.Background(), server)

	got, err := servers.Get(context.Background(), server.ID)
	require.NoError(t, err)
	assert.Equal(t, status.Failed, got.Status)
}

func newCertProvisioner(t *testing.T, servers *storetest.FakeServerStore, runner CommandRunner, watchdog time.Duration) (*CertProvisioner, *tasks.Runner) {
	t.Helper()
	taskRunner := tasks.NewRunner(zap.NewNop())
	p := NewCertProvisioner(servers, runner, taskRunner, zap.NewNop(), CertProvisionerOptions{
		PlaybookDir: "/etc/playbooks",
		SSHKeyPath:  "/etc/keys/id_ed25519",
		Watchdog:    watchdog,
	})
	return p, taskRunner
}

func TestCertProvisioner_RejectsWithoutAddress(t *testing.T) {
	t.Parallel()

	servers := storetest.NewFakeServerStore()
	server := servers.Seed(models.ManagedServer{
		ProjectID: 7,
		Kind:      models.KindRPC,
		Status:    status.Provisioning,
		IsActive:  true,
	})
	runner := &fakeRunner{}
	p, _ := newCertProvisioner(t, servers, runner, 0)

	err := p.RequestCertificate(context.Background(), server.ID, "rpc.example.com")
	require.ErrorIs(t, err, ErrNoAddress)

	// no mutation happened
	got, getErr := servers.Get(context.Background(), server.ID)
	require.NoError(t, getErr)
	assert.Equal(t, status.Provisioning, got.Status)
	assert.Empty(t, got.Domain)
	assert.Nil(t, runner.lastCall())
}

func TestCertProvisioner_RejectsIllegalStatus(t *testing.T) {
	t.Parallel()

	servers := storetest.NewFakeServerStore()
	server := servers.Seed(models.ManagedServer{
		ProjectID: 7,
		Kind:      models.KindRPC,
		IPAddress: "203.0.113.5",
		Status:    status.Running,
		IsActive:  true,
	})
	p, _ := newCertProvisioner(t, servers, &fakeRunner{}, 0)

	err := p.RequestCertificate(context.Background(), server.ID, "rpc.example.com")

	var illegal *status.ErrIllegalTransition
	require.ErrorAs(t, err, &illegal)
}

func TestCertProvisioner_SuccessReachesRunning(t *testing.T) {
	t.Parallel()

	servers := storetest.NewFakeServerStore()
	server := seedReadyServer(servers)
	runner := &fakeRunner{}
	p, taskRunner := newCertProvisioner(t, servers, runner, 0)

	require.NoError(t, p.RequestCertificate(context.Background(), server.ID, "rpc.example.com"))

	// domain and ssl_setup_started are persisted before the caller returns
	got, err := servers.Get(context.Background(), server.ID)
	require.NoError(t, err)
	assert.Equal(t, "rpc.example.com", got.Domain)

	require.NoError(t, taskRunner.Drain(context.Background()))

	got, err = servers.Get(context.Background(), server.ID)
	require.NoError(t, err)
	assert.Equal(t, status.Running, got.Status)

	call := runner.lastCall()
	require.NotNil(t, call)
	assert.Equal(t, "/etc/playbooks/ssl.yml", call[1])
	assert.Contains(t, call, "domain=rpc.example.com")
}

func TestCertProvisioner_SubprocessFailure(t *testing.T) {
	t.Parallel()

	servers := storetest.NewFakeServerStore()
	server := seedReadyServer(servers)
	p, taskRunner := newCertProvisioner(t, servers, &fakeRunner{err: errors.New("exit status 1")}, 0)

	require.NoError(t, p.RequestCertificate(context.Background(), server.ID, "rpc.example.com"))
	require.NoError(t, taskRunner.Drain(context.Background()))

	got, err := servers.Get(context.Background(), server.ID)
	require.NoError(t, err)
	assert.Equal(t, status.SSLFailed, got.Status)
}

func TestCertProvisioner_WatchdogKillsAndLateExitCannotOverwrite(t *testing.T) {
	t.Parallel()

	servers := storetest.NewFakeServerStore()
	server := seedReadyServer(servers)
	// The subprocess ignores the kill and reports success long after the
	// watchdog fired; the terminal ssl_failed must stand.
	runner := &fakeRunner{delay: 120 * time.Millisecond, ignoreCtx: true}
	p, taskRunner := newCertProvisioner(t, servers, runner, 20*time.Millisecond)

	require.NoError(t, p.RequestCertificate(context.Background(), server.ID, "rpc.example.com"))
	require.NoError(t, taskRunner.Drain(context.Background()))

	got, err := servers.Get(context.Background(), server.ID)
	require.NoError(t, err)
	assert.Equal(t, status.SSLFailed, got.Status)
}

func TestCertProvisioner_RetryAfterSSLFailed(t *testing.T) {
	t.Parallel()

	servers := storetest.NewFakeServerStore()
	server := servers.Seed(models.ManagedServer{
		ProjectID: 7,
		Kind:      models.KindRPC,
		IPAddress: "203.0.113.5",
		Domain:    "rpc.example.com",
		Status:    status.SSLFailed,
		IsActive:  true,
	})
	p, taskRunner := newCertProvisioner(t, servers, &fakeRunner{}, 0)

	require.NoError(t, p.RequestCertificate(context.Background(), server.ID, "rpc.example.com"))
	require.NoError(t, taskRunner.Drain(context.Background()))

	got, err := servers.Get(context.Background(), server.ID)
	require.NoError(t, err)
	assert.Equal(t, status.Running, got.Status)
}
