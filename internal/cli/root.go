// Package cli defines the govportal command tree.
package cli

import (
	"github.com/sanandreas/govportal/internal/version"
	"github.com/spf13/cobra"
)

// NewRootCommand creates the root command for the govportal CLI.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "govportal",
		Short:        "San Andreas government portal backend",
		Long:         "Backend for the San Andreas roleplay government portal: department sites, citizen complaints, and court records.",
		Version:      version.Version,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewChangelogCommand())
	cmd.AddCommand(NewGrantRoleCommand())
	cmd.AddCommand(NewRevokeRoleCommand())

	return cmd
}
