// Package naming provides deterministic names and labels for cloud instances.
//
// Instance names follow the pattern {kind}-{network}-{id}. The cleanup
// coordinator relies on these being reproducible from the stored record, so
// an instance can still be found when its persisted cloud id is missing.
package naming

import "fmt"

const (
	// LabelManagedBy marks every instance this service owns.
	LabelManagedBy = "managed-by"
	// ManagedByValue is the value of LabelManagedBy.
	ManagedByValue = "blockscout-automation"
	// LabelServerID carries the managed server record id.
	LabelServerID = "server-id"
	// LabelProjectID carries the owning project id.
	LabelProjectID = "project-id"
	// LabelKind carries the server kind (rpc or explorer).
	LabelKind = "kind"
)

// Instance returns the deterministic cloud instance name for a server record.
func Instance(kind string, network string, id uint) string {
	if network == "" {
		return fmt.Sprintf("%s-%d", kind, id)
	}
	return fmt.Sprintf("%s-%s-%d", kind, network, id)
}

// InstanceLabels returns the label set applied to a server's cloud instance.
func InstanceLabels(kind string, projectID, serverID uint) map[string]string {
	return map[string]string{
		LabelManagedBy: ManagedByValue,
		LabelKind:      kind,
		LabelProjectID: fmt.Sprintf("%d", projectID),
		LabelServerID:  fmt.Sprintf("%d", serverID),
	}
}

// ServerSelector returns the labels identifying a single server's instance.
func ServerSelector(serverID uint) map[string]string {
	return map[string]string{
		LabelManagedBy: ManagedByValue,
		LabelServerID:  fmt.Sprintf("%d", serverID),
	}
}
