package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	grpcadapter "github.com/andrescamacho/citysim-go/internal/adapters/grpc"
)

// NewHealthCommand creates the health command
func NewHealthCommand() *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check daemon health status",
		Long: `Verify that the daemon is running and its tick loop is live.

The simulation reports SERVING once the daemon has completed a tick.

Examples:
  citysim health
  citysim health --address localhost:50061`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if address == "" {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				address = cfg.Health.Address
			}

			client, err := grpcadapter.NewHealthClient(address)
			if err != nil {
				return err
			}
			defer client.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()

			overall, err := client.Check(ctx, "")
			if err != nil {
				return err
			}
			loop, err := client.Check(ctx, grpcadapter.SimulationService)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if overall == healthpb.HealthCheckResponse_SERVING && loop == healthpb.HealthCheckResponse_SERVING {
				fmt.Fprintln(out, "✓ Daemon is healthy")
			} else {
				fmt.Fprintln(out, "✗ Daemon is not ready")
			}
			fmt.Fprintf(out, "  Address:    %s\n", address)
			fmt.Fprintf(out, "  Daemon:     %s\n", overall)
			fmt.Fprintf(out, "  Simulation: %s\n", loop)

			return nil
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "Daemon health address (default: health.address from config)")

	return cmd
}
