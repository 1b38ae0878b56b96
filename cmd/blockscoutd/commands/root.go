// Package commands defines the CLI command structure for blockscoutd.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the blockscoutd daemon.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blockscoutd",
		Short: "Provision and manage blockchain node servers on Hetzner Cloud",
	}

	cmd.AddCommand(Serve())
	cmd.AddCommand(Version())

	return cmd
}
