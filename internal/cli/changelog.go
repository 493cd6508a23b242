package cli

import (
	"fmt"

	"github.com/sanandreas/govportal/internal/changelog"
	"github.com/spf13/cobra"
)

// NewChangelogCommand creates the "changelog" command that regenerates the
// JSON changelog artifact from CHANGELOG.md.
func NewChangelogCommand() *cobra.Command {
	var (
		in  string
		out string
	)

	cmd := &cobra.Command{
		Use:   "changelog",
		Short: "Regenerate the JSON changelog artifact from the markdown changelog",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := changelog.Generate(in, out); err != nil {
				return fmt.Errorf("generate changelog: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&in, "in", "CHANGELOG.md", "path to the markdown changelog")
	cmd.Flags().StringVar(&out, "out", "changelog.json", "path of the JSON artifact to write")

	return cmd
}
