package cmds

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewHealthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Probe the backend liveness endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient()
			status, err := client.Health(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("%s: %s\n", client.BaseURL(), status.Status)
			return nil
		},
	}
}
