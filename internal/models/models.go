// Package models defines the persisted entities.
package models

import (
	"gorm.io/gorm"

	"github.com/NyiNyiSoePaing/blockscout-automation/internal/status"
)

// ServerKind distinguishes the two managed server variants.
type ServerKind string

const (
	KindRPC      ServerKind = "rpc"
	KindExplorer ServerKind = "explorer"
)

// NetworkType is the blockchain network a server is attached to.
type NetworkType string

const (
	NetworkMainnet NetworkType = "mainnet"
	NetworkTestnet NetworkType = "testnet"
)

// Project owns a collection of managed servers. Deleting a project tears
// down every owned server's cloud instance before the project record itself
// is removed.
type Project struct {
	gorm.Model

	Name        string `gorm:"column:name;uniqueIndex"`
	Description string `gorm:"column:description"`

	Servers []ManagedServer `gorm:"foreignKey:ProjectID"`
}

// ManagedServer is one logical RPC or explorer node and its backing cloud
// instance. CloudInstanceID and IPAddress are set exactly once during
// provisioning and never cleared except by deletion of the record.
type ManagedServer struct {
	gorm.Model

	ProjectID   uint        `gorm:"column:project_id;index"`
	Kind        ServerKind  `gorm:"column:kind"`
	NetworkType NetworkType `gorm:"column:network_type"` // required for explorer servers
	ChainID     string      `gorm:"column:chain_id"`
	Description string      `gorm:"column:description"`

	CloudInstanceID string `gorm:"column:cloud_instance_id"` // empty until the instance exists
	IPAddress       string `gorm:"column:ip_address"`        // empty until the instance has a public address
	Domain          string `gorm:"column:domain"`
	ServerURL       string `gorm:"column:server_url"`

	Status   status.Status `gorm:"column:status"`
	IsActive bool          `gorm:"column:is_active;default:true"`
}
