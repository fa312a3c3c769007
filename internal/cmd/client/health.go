package client

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// NewStatsCommand constructs the `stats` command.
func NewStatsCommand(baseURL BaseURLFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show ingest and storage counters of a running process",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var data map[string]any
			if err := getJSON(cmd.Context(), baseURL()+"/v1/stats", &data); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}
}

// NewHealthCommand constructs the `health` command.
func NewHealthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check the gRPC health service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			service, _ := cmd.Flags().GetString("service")
			timeout, _ := cmd.Flags().GetDuration("timeout")

			conn, err := dialGRPC()
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			res, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: service})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "status:", res.GetStatus())
			if res.GetStatus() != healthpb.HealthCheckResponse_SERVING {
				return fmt.Errorf("not serving")
			}
			return nil
		},
	}
	cmd.Flags().String("service", "", "Service name (empty = overall)")
	cmd.Flags().Duration("timeout", 3*time.Second, "Check timeout")
	return cmd
}
