package cmds

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/go-go-golems/jiminy/pkg/api"
)

func newAPIClient() *api.Client {
	return api.NewClient(viper.GetString("server"))
}

func NewChatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chats",
		Short: "Manage conversations",
	}
	cmd.AddCommand(newChatsListCommand())
	cmd.AddCommand(newChatsCreateCommand())
	cmd.AddCommand(newChatsDeleteCommand())
	cmd.AddCommand(newChatsClearCommand())
	return cmd
}

func newChatsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List conversations, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			conversations, err := newAPIClient().ListChats(cmd.Context())
			if err != nil {
				return err
			}
			for _, conversation := range conversations {
				title := conversation.Title
				if title == "" {
					title = "Untitled"
				}
				updated := ""
				if !conversation.UpdatedAt.IsZero() {
					updated = conversation.UpdatedAt.Format("2006-01-02 15:04")
				}
				fmt.Printf("%-26s  %-18s  %s\n", conversation.ID, updated, title)
			}
			return nil
		},
	}
}

func newChatsCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create [title]",
		Short: "Create a conversation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := ""
			if len(args) > 0 {
				title = args[0]
			}
			conversation, err := newAPIClient().CreateChat(cmd.Context(), title)
			if err != nil {
				return err
			}
			fmt.Println(conversation.ID)
			return nil
		},
	}
}

func newChatsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return newAPIClient().DeleteChat(cmd.Context(), args[0])
		},
	}
}

func newChatsClearCommand() *cobra.Command {
	var parallel int
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient()
			conversations, err := client.ListChats(cmd.Context())
			if err != nil {
				return err
			}

			eg, ctx := errgroup.WithContext(cmd.Context())
			eg.SetLimit(parallel)
			for _, conversation := range conversations {
				chatID := conversation.ID
				eg.Go(func() error {
					return deleteOne(ctx, client, chatID)
				})
			}
			if err := eg.Wait(); err != nil {
				return err
			}
			fmt.Printf("deleted %d conversations\n", len(conversations))
			return nil
		},
	}
	cmd.Flags().IntVar(&parallel, "parallel", 4, "maximum concurrent deletions")
	return cmd
}

func deleteOne(ctx context.Context, client *api.Client, chatID string) error {
	if err := client.DeleteChat(ctx, chatID); err != nil {
		log.Error().Err(err).Str("chat_id", chatID).Msg("could not delete conversation")
		return err
	}
	log.Debug().Str("chat_id", chatID).Msg("deleted conversation")
	return nil
}
