// Package cli implements the xpevent command: a sleeper that creates an event
// and reports wakes, and a waker that opens it and signals it.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/obinnaokechukwu/xpevent"
	"github.com/obinnaokechukwu/xpevent/internal/platform"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// EnvName supplies the default event name for every subcommand.
const EnvName = "XPEVENT_NAME"

// DefaultName is used when neither --name nor EnvName is set.
const DefaultName = "some-random-event"

type globalOptions struct {
	logLevel  string
	namespace string

	logger *logrus.Logger
	ns     xpevent.Namespace
}

// Main runs the command line and returns the process exit code.
func Main(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := NewRootCommand()
	cmd.SetArgs(args[1:])
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", args[0], err)
		return 1
	}
	return 0
}

// NewRootCommand builds the xpevent command tree.
func NewRootCommand() *cobra.Command {
	gopts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "xpevent",
		Short:         "Create, signal and probe named cross-process events",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return gopts.init(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&gopts.logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&gopts.namespace, "namespace", "default", "Kernel object namespace (default, global, local)")

	cmd.AddCommand(
		newSleepCommand(gopts),
		newWakeCommand(gopts),
		newProbeCommand(gopts),
		newNameCommand(),
	)
	return cmd
}

func (g *globalOptions) init(cmd *cobra.Command) error {
	level, err := logrus.ParseLevel(g.logLevel)
	if err != nil {
		return errors.Wrap(err, "--log-level")
	}
	ns, err := platform.ParseNamespace(g.namespace)
	if err != nil {
		return errors.Wrap(err, "--namespace")
	}

	logger := logrus.New()
	formatter := new(logrus.TextFormatter)
	formatter.FullTimestamp = true
	logger.Formatter = formatter
	logger.Level = level
	logger.SetOutput(cmd.ErrOrStderr())

	g.logger = logger
	g.ns = ns
	return nil
}

// eventOptions returns the library options every subcommand shares.
func (g *globalOptions) eventOptions() []xpevent.Option {
	return []xpevent.Option{
		xpevent.WithLogger(g.logger),
		xpevent.WithNamespace(g.ns),
		xpevent.WithFaultHandler(func(f *xpevent.InvocationFault) {
			g.logger.WithField("event", f.Name).Errorf("callback fault: %v\n%s", f.Value, f.Stack)
		}),
	}
}

// addNameFlag binds --name with the environment fallback.
func addNameFlag(cmd *cobra.Command, dst *string) {
	def := os.Getenv(EnvName)
	if def == "" {
		def = DefaultName
	}
	cmd.Flags().StringVarP(dst, "name", "n", def, "Event name (env "+EnvName+")")
}
