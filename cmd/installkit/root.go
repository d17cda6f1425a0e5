package main

import (
	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/installkit/internal/engine"
)

type rootFlags struct {
	verbose bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           engine.Name,
		Short:         "Installkit runs staged, transactional host installations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Print debug logging to stderr")

	cmd.AddCommand(newInstallCmd(flags))
	cmd.AddCommand(newStagesCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}
