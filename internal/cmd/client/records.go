package client

import (
	"errors"
	"net/url"

	"github.com/rhurkes/rofka/internal/query"
	"github.com/rhurkes/rofka/internal/record"
	"github.com/rhurkes/rofka/internal/runtime"
	"github.com/rhurkes/rofka/internal/store"
	"github.com/spf13/cobra"
)

type recordView struct {
	ID              string                   `json:"id"`
	Raw             []byte                   `json:"raw"`
	Projection      *record.StatusProjection `json:"projection,omitempty"`
	ProjectionError string                   `json:"projection_error,omitempty"`
}

// NewGetCommand constructs the `get` command.
func NewGetCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Show the raw value and projection stored for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, _ := cmd.Flags().GetString("data-dir")
			var v recordView
			var err error
			if dataDir != "" {
				v, err = localRecord(dataDir, args[0])
			} else {
				err = getJSON(cmd.Context(), baseURL()+"/v1/records/"+url.PathEscape(args[0]), &v)
			}
			if err != nil {
				return err
			}
			out := map[string]any{"id": v.ID, "value": decodedValue(v.Raw)}
			if v.Projection != nil {
				out["projection"] = v.Projection
			}
			if v.ProjectionError != "" {
				out["projection_error"] = v.ProjectionError
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().String("data-dir", "", "Read this store directly instead of the admin API")
	return cmd
}

func localRecord(dataDir, id string) (recordView, error) {
	key, err := query.ParseKeyText(id)
	if err != nil {
		return recordView{}, err
	}
	var v recordView
	err = withLocalRuntime(dataDir, func(rt *runtime.Runtime) error {
		raw, err := rt.Store().ReadRaw(key)
		if err != nil {
			return err
		}
		v = recordView{ID: query.KeyText(key), Raw: raw}
		pb, err := rt.Store().ReadProjection(key)
		if errors.Is(err, store.ErrNotFound) {
			if _, derr := record.DecodeProjection(raw); derr != nil {
				v.ProjectionError = derr.Error()
			}
			return nil
		}
		if err != nil {
			return err
		}
		p, err := record.DecodeProjection(pb)
		if err != nil {
			v.ProjectionError = err.Error()
			return nil
		}
		v.Projection = &p
		return nil
	})
	return v, err
}
