package cmds

import (
	"github.com/spf13/cobra"

	"github.com/go-go-golems/jiminy/pkg/tui"
)

func NewChatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Open the interactive chat UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(newAPIClient())
		},
	}
}
