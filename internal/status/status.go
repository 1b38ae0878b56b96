// Package status defines the lifecycle states of a managed server and the
// legal transitions between them.
//
// Every status write performed by the orchestration components goes through
// [CanTransition] first; an edge not present in the transition table is
// rejected and the write is skipped.
package status

import "fmt"

// Status is the lifecycle state of a managed server record.
type Status string

const (
	// Provisioning is the initial state: the record exists and a cloud
	// instance is being created for it.
	Provisioning Status = "provisioning"

	// ReadyToDomainSetup means the instance is active, has a public address
	// and the base configuration has been deployed. The server is usable and
	// may optionally receive a domain/TLS setup.
	ReadyToDomainSetup Status = "ready_to_domain_setup"

	// SSLSetupStarted means certificate issuance for a requested domain is
	// in flight.
	SSLSetupStarted Status = "ssl_setup_started"

	// Running is the terminal happy-path state: domain and certificate are
	// in place.
	Running Status = "running"

	// Failed is the failure sink for instance creation and readiness
	// polling. It is left only by a fresh creation request.
	Failed Status = "failed"

	// SSLFailed is the failure sink for certificate issuance. It is left
	// only by a new domain-setup request.
	SSLFailed Status = "ssl_failed"
)

// ErrIllegalTransition is returned when a requested status edge is not in the
// transition table.
type ErrIllegalTransition struct {
	From Status
	To   Status
}

func (e *ErrIllegalTransition) Error() string {
	return fmt.Sprintf("illegal status transition %s -> %s", e.From, e.To)
}

// transitions holds the legal edges. A re-affirmation of
// ready_to_domain_setup is allowed so the configuration deployer can record
// its stable post-config state, and the failure sinks are re-enterable from a
// fresh domain-setup request only.
var transitions = map[Status][]Status{
	Provisioning:       {ReadyToDomainSetup, Failed},
	ReadyToDomainSetup: {ReadyToDomainSetup, SSLSetupStarted, Failed},
	SSLSetupStarted:    {Running, SSLFailed},
	SSLFailed:          {SSLSetupStarted},
	Running:            {},
	Failed:             {},
}

// Valid reports whether s is a known status value.
func Valid(s Status) bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether the edge from -> to is legal.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Check returns an *ErrIllegalTransition if the edge from -> to is not legal.
func Check(from, to Status) error {
	if !CanTransition(from, to) {
		return &ErrIllegalTransition{From: from, To: to}
	}
	return nil
}

// Terminal reports whether s has no outgoing edges.
func Terminal(s Status) bool {
	return len(transitions[s]) == 0
}
