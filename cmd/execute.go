package cmd

import (
	"github.com/spf13/cobra"
	"github.com/strontium-cloud/strontium/cmd/start"
	"github.com/strontium-cloud/strontium/cmd/version"
	"github.com/strontium-cloud/strontium/cmd/worker"
)

var cmds = []*cobra.Command{
	start.Cmd,
	version.Cmd,
	worker.Cmd,
}

// Execute builds the command tree and executes commands.
func Execute() error {
	command := &cobra.Command{
		Use: "strontium",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Usage()
		},
	}

	for _, c := range cmds {
		command.AddCommand(c)
	}

	return command.Execute()
}
