package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition_HappyPath(t *testing.T) {
	t.Parallel()

	// running is reachable only through the full chain
	assert.True(t, CanTransition(Provisioning, ReadyToDomainSetup))
	assert.True(t, CanTransition(ReadyToDomainSetup, SSLSetupStarted))
	assert.True(t, CanTransition(SSLSetupStarted, Running))

	// no edge may be skipped
	assert.False(t, CanTransition(Provisioning, SSLSetupStarted))
	assert.False(t, CanTransition(Provisioning, Running))
	assert.False(t, CanTransition(ReadyToDomainSetup, Running))
}

func TestCanTransition_FailureSinks(t *testing.T) {
	t.Parallel()

	assert.True(t, CanTransition(Provisioning, Failed))
	assert.True(t, CanTransition(ReadyToDomainSetup, Failed))
	assert.True(t, CanTransition(SSLSetupStarted, SSLFailed))

	// failure sinks are not auto-retried
	assert.False(t, CanTransition(Failed, Provisioning))
	assert.False(t, CanTransition(Failed, ReadyToDomainSetup))

	// a new domain-setup request may leave ssl_failed
	assert.True(t, CanTransition(SSLFailed, SSLSetupStarted))
	assert.False(t, CanTransition(SSLFailed, Running))
}

func TestCanTransition_ReaffirmReadyState(t *testing.T) {
	t.Parallel()

	// the configuration deployer re-affirms ready_to_domain_setup on exit 0
	assert.True(t, CanTransition(ReadyToDomainSetup, ReadyToDomainSetup))
	assert.False(t, CanTransition(Provisioning, Provisioning))
	assert.False(t, CanTransition(Running, Running))
}

func TestCheck(t *testing.T) {
	t.Parallel()

	require.NoError(t, Check(Provisioning, Failed))

	err := Check(Running, Provisioning)
	require.Error(t, err)
	var illegal *ErrIllegalTransition
	require.ErrorAs(t, err, &illegal)
	assert.Equal(t, Running, illegal.From)
	assert.Equal(t, Provisioning, illegal.To)
}

func TestTerminal(t *testing.T) {
	t.Parallel()

	assert.True(t, Terminal(Running))
	assert.True(t, Terminal(Failed))
	assert.False(t, Terminal(SSLFailed))
	assert.False(t, Terminal(Provisioning))
}

func TestValid(t *testing.T) {
	t.Parallel()

	for _, s := range []Status{Provisioning, ReadyToDomainSetup, SSLSetupStarted, Running, Failed, SSLFailed} {
		assert.True(t, Valid(s), "expected %s to be valid", s)
	}
	assert.False(t, Valid(Status("deleted")))
	assert.False(t, Valid(Status("")))
}
