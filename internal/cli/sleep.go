package cli

import (
	"github.com/obinnaokechukwu/xpevent"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type sleepOptions struct {
	name  string
	count int
}

func newSleepCommand(g *globalOptions) *cobra.Command {
	opts := &sleepOptions{}

	cmd := &cobra.Command{
		Use:   "sleep",
		Short: "Create the event and report every wake until --count wakes arrived",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSleep(cmd, g, opts)
		},
	}

	addNameFlag(cmd, &opts.name)
	cmd.Flags().IntVarP(&opts.count, "count", "c", 3, "Number of wakes to wait for (0 waits until interrupted)")
	return cmd
}

func runSleep(cmd *cobra.Command, g *globalOptions, opts *sleepOptions) error {
	if opts.count < 0 {
		return errors.Errorf("--count must not be negative, got %d", opts.count)
	}
	ctx := cmd.Context()
	log := g.logger.WithField("event", opts.name)

	ev, err := xpevent.Create(opts.name, g.eventOptions()...)
	if err != nil {
		return err
	}
	defer ev.Close()

	if ev.Existed() {
		log.Info("joined an existing event")
	}

	woke, err := ev.Notify()
	if err != nil {
		return err
	}

	received := 0
	for opts.count == 0 || received < opts.count {
		log.Info("waiting for waker")
		select {
		case <-woke:
			received++
			log.WithField("wakes", received).Info("received wake")
		case <-ctx.Done():
			log.WithField("wakes", received).Info("interrupted")
			return nil
		}
	}

	log.Info("terminating")
	return nil
}
