// Package main is the entry point for the blockscoutd daemon.
//
// blockscoutd is the provisioning service behind blockchain-node hosting:
// it manages RPC and explorer servers on Hetzner Cloud, drives their
// configuration deployment over Ansible, and handles TLS/domain setup.
//
// For detailed usage information, run:
//
//	blockscoutd --help
package main

import (
	"fmt"
	"os"

	"github.com/NyiNyiSoePaing/blockscout-automation/cmd/blockscoutd/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
