package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// healthPollInterval is the pause between attempts while waiting for the server
const healthPollInterval = 250 * time.Millisecond

func newHealthCmd() *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		Long:  "Check server health. With --wait, keep retrying until the server answers or the wait runs out.",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := waitHealthy(func(r *HealthResult) error {
				return client.Get("/api/v1/health", r)
			}, wait, healthPollInterval)
			if err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().DurationVar(&wait, "wait", 0, "Retry for up to this long, e.g. 10s")
	return cmd
}

// waitHealthy calls check until it succeeds or wait has passed. A zero wait tries once.
func waitHealthy(check func(*HealthResult) error, wait, interval time.Duration) (HealthResult, error) {
	deadline := time.Now().Add(wait)
	for {
		var result HealthResult
		err := check(&result)
		if err == nil {
			return result, nil
		}
		if !time.Now().Add(interval).Before(deadline) {
			if wait > 0 {
				return HealthResult{}, fmt.Errorf("server not healthy after %s: %w", wait, err)
			}
			return HealthResult{}, err
		}
		time.Sleep(interval)
	}
}
