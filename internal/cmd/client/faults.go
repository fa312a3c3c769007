package client

import (
	"fmt"

	"github.com/rhurkes/rofka/internal/faultlog"
	"github.com/rhurkes/rofka/internal/query"
	"github.com/rhurkes/rofka/internal/runtime"
	"github.com/spf13/cobra"
)

type faultView struct {
	Seq      uint64        `json:"seq"`
	Kind     faultlog.Kind `json:"kind"`
	ID       string        `json:"id"`
	Reason   string        `json:"reason"`
	AtMs     int64         `json:"at_ms"`
	Attempts int           `json:"attempts,omitempty"`
	Payload  []byte        `json:"payload,omitempty"`
}

// NewFaultsCommand constructs the `faults` command.
func NewFaultsCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "faults",
		Short: "List messages whose projection or write failed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dataDir, _ := cmd.Flags().GetString("data-dir")
			limit, _ := cmd.Flags().GetInt("limit")
			start, _ := cmd.Flags().GetUint64("start")

			var page struct {
				Items []faultView `json:"items"`
				Next  uint64      `json:"next,omitempty"`
			}
			if dataDir != "" {
				err := withLocalRuntime(dataDir, func(rt *runtime.Runtime) error {
					entries, next, err := rt.Faults().Read(faultlog.ReadOptions{Start: start, Limit: limit})
					if err != nil {
						return err
					}
					for _, e := range entries {
						page.Items = append(page.Items, faultView{
							Seq: e.Seq, Kind: e.Fault.Kind, ID: query.KeyText(e.Fault.Key), Reason: e.Fault.Reason,
							AtMs: e.Fault.AtMs, Attempts: e.Fault.Attempts, Payload: e.Payload,
						})
					}
					page.Next = next
					return nil
				})
				if err != nil {
					return err
				}
			} else {
				url := fmt.Sprintf("%s/v1/faults?limit=%d&start=%d", baseURL(), limit, start)
				if err := getJSON(cmd.Context(), url, &page); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			for _, f := range page.Items {
				fmt.Fprintf(out, "%d\t%s\t%s\t%s\n", f.Seq, f.Kind, f.ID, f.Reason)
			}
			if page.Next != 0 {
				fmt.Fprintf(out, "next: %d\n", page.Next)
			}
			return nil
		},
	}
	cmd.Flags().Int("limit", 100, "Maximum entries to list")
	cmd.Flags().Uint64("start", 0, "First sequence to list (0 = oldest)")
	cmd.Flags().String("data-dir", "", "Read this store directly instead of the admin API")
	return cmd
}
