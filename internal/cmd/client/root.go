package client

import (
	"github.com/spf13/cobra"
)

// BaseURLFunc provides the base HTTP API URL (e.g., from env or flag).
type BaseURLFunc func() string

// Commands returns the inspection commands for embedding in a root command.
func Commands(baseURL BaseURLFunc) []*cobra.Command {
	return []*cobra.Command{
		NewGetCommand(baseURL),
		NewFaultsCommand(baseURL),
		NewStatsCommand(baseURL),
		NewHealthCommand(),
	}
}
