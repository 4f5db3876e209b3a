package version

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/strontium-cloud/strontium/pkg/version"
)

const (
	usage   = "version"
	short   = "Print the strontium version"
	long    = "This command prints the strontium build version and commit"
	example = "strontium version"
)

var (
	// Cmd is the version command.
	Cmd = &cobra.Command{
		Use:     usage,
		Short:   short,
		Long:    long,
		Aliases: []string{"v"},
		Example: example,
		RunE:    run,
	}
)

func run(cmd *cobra.Command, args []string) error {
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "strontium %s\n", version.String())
	return err
}
