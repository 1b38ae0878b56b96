package naming

import "testing"

func TestInstance(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{
			name:     "rpc with network",
			got:      Instance("rpc", "mainnet", 7),
			expected: "rpc-mainnet-7",
		},
		{
			name:     "explorer with network",
			got:      Instance("explorer", "testnet", 12),
			expected: "explorer-testnet-12",
		},
		{
			name:     "no network",
			got:      Instance("rpc", "", 3),
			expected: "rpc-3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, tt.got)
			}
		})
	}
}

func TestInstanceLabels(t *testing.T) {
	labels := InstanceLabels("explorer", 7, 42)

	if labels[LabelManagedBy] != ManagedByValue {
		t.Errorf("Expected managed-by %q, got %q", ManagedByValue, labels[LabelManagedBy])
	}
	if labels[LabelKind] != "explorer" {
		t.Errorf("Expected kind explorer, got %q", labels[LabelKind])
	}
	if labels[LabelProjectID] != "7" {
		t.Errorf("Expected project-id 7, got %q", labels[LabelProjectID])
	}
	if labels[LabelServerID] != "42" {
		t.Errorf("Expected server-id 42, got %q", labels[LabelServerID])
	}
}

func TestServerSelector(t *testing.T) {
	sel := ServerSelector(42)

	if len(sel) != 2 {
		t.Errorf("Expected 2 labels, got %d", len(sel))
	}
	if sel[LabelServerID] != "42" {
		t.Errorf("Expected server-id 42, got %q", sel[LabelServerID])
	}
}
