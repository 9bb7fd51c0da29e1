package cli

import (
	"context"
	"time"

	"github.com/obinnaokechukwu/xpevent"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// retryInterval is how often wake polls for a missing event under --retry.
const retryInterval = 100 * time.Millisecond

type wakeOptions struct {
	name     string
	repeat   int
	interval time.Duration
	retry    time.Duration
}

func newWakeCommand(g *globalOptions) *cobra.Command {
	opts := &wakeOptions{}

	cmd := &cobra.Command{
		Use:   "wake",
		Short: "Open an existing event and signal it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWake(cmd.Context(), g, opts)
		},
	}

	addNameFlag(cmd, &opts.name)
	cmd.Flags().IntVarP(&opts.repeat, "repeat", "r", 1, "Number of wakes to send")
	cmd.Flags().DurationVar(&opts.interval, "interval", 500*time.Millisecond, "Pause between repeated wakes")
	cmd.Flags().DurationVar(&opts.retry, "retry", 0, "Keep retrying while the event does not exist yet, up to this long")
	return cmd
}

func runWake(ctx context.Context, g *globalOptions, opts *wakeOptions) error {
	if opts.repeat < 1 {
		return errors.Errorf("--repeat must be at least 1, got %d", opts.repeat)
	}
	log := g.logger.WithField("event", opts.name)

	ev, err := openWithRetry(ctx, opts.name, opts.retry, g.eventOptions())
	if err != nil {
		return err
	}
	defer ev.Close()

	for i := 1; i <= opts.repeat; i++ {
		if err := ev.Wake(); err != nil {
			return err
		}
		log.WithField("wake", i).Info("signaled")

		if i == opts.repeat {
			break
		}
		select {
		case <-time.After(opts.interval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// openWithRetry treats ErrNotFound as "producer not ready yet" until the
// retry budget runs out. Every other error is returned immediately.
func openWithRetry(ctx context.Context, name string, retry time.Duration, opts []xpevent.Option) (*xpevent.Event, error) {
	deadline := time.Now().Add(retry)
	for {
		ev, err := xpevent.Open(name, opts...)
		if err == nil {
			return ev, nil
		}
		if !xpevent.IsNotFound(err) || !time.Now().Before(deadline) {
			return nil, err
		}
		select {
		case <-time.After(retryInterval):
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "waiting for event")
		}
	}
}
