package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yildizm/TruthWeaver/internal/emoji"
)

func newHealthCommand() *cobra.Command {
	var (
		endpoint string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the Truth Weaver service is reachable",
		Long: `Probe the service health endpoint and print its status.

Exits non-zero when the service is unreachable or reports anything other
than "healthy".`,
		Example: `  truthweaver health
  truthweaver health --endpoint http://localhost:5000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newServices(serviceOverrides{endpoint: endpoint})
			if err != nil {
				return err
			}
			defer svc.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			out := cmd.OutOrStdout()
			health, err := svc.client.HealthCheck(ctx)
			svc.metrics.HealthCheck(err == nil && health.Healthy())

			if err != nil {
				fmt.Fprintf(out, "%s %s is unreachable: %v\n", emoji.GetEmoji("error"), svc.client.BaseURL(), err)
				return fmt.Errorf("health check failed: %w", err)
			}

			if !health.Healthy() {
				fmt.Fprintf(out, "%s %s reported status %q\n", emoji.GetEmoji("warning"), svc.client.BaseURL(), health.Status)
				return fmt.Errorf("service is not healthy: %s", health.Status)
			}

			fmt.Fprintf(out, "%s %s is %s\n", emoji.GetEmoji("health"), svc.client.BaseURL(), health.Status)
			if health.Message != "" {
				fmt.Fprintf(out, "   %s\n", health.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", "", "service base URL (overrides service.base_url)")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "health check timeout")

	return cmd
}
