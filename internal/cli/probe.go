package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/obinnaokechukwu/xpevent"
	"github.com/spf13/cobra"
)

func newProbeCommand(g *globalOptions) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Report whether the event exists, without creating it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ev, err := xpevent.Open(name, g.eventOptions()...)
			if xpevent.IsNotFound(err) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: absent\n", name)
				return nil
			}
			if err != nil {
				return err
			}
			defer ev.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "%s: present\n", ev.Name())
			return nil
		},
	}

	addNameFlag(cmd, &name)
	return cmd
}

func newNameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "name [prefix]",
		Short: "Print a unique event name to share between sleeper and waker",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), uniqueName(args))
			return nil
		},
	}
}

func uniqueName(args []string) string {
	prefix := "xpevent"
	if len(args) > 0 && args[0] != "" {
		prefix = args[0]
	}
	return prefix + "-" + uuid.NewString()
}
