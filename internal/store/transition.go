package store

import (
	"context"

	"github.com/NyiNyiSoePaing/blockscout-automation/internal/status"
)

// TransitionStatus moves a server record to the given status after checking
// the edge against the state machine. An illegal edge returns
// *status.ErrIllegalTransition and skips the write.
func TransitionStatus(ctx context.Context, servers ServerStore, id uint, to status.Status) error {
	server, err := servers.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := status.Check(server.Status, to); err != nil {
		return err
	}
	return servers.Update(ctx, id, ServerUpdate{Status: &to})
}
