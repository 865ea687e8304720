package cmds

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	isatty "github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/go-go-golems/jiminy/pkg/api"
)

func NewAskCommand() *cobra.Command {
	var chatID string
	var topK int
	var temperature float64
	var maxTokens int

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a one-shot question and print the answer with its sources",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient()
			question := strings.Join(args, " ")

			if chatID == "" {
				conversation, err := client.CreateChat(cmd.Context(), "")
				if err != nil {
					return err
				}
				chatID = conversation.ID
				log.Debug().Str("chat_id", chatID).Msg("created conversation")
			}

			response, err := client.SendMessage(cmd.Context(), chatID, question, api.SendOptions{
				TopK:        topK,
				Temperature: temperature,
				MaxTokens:   maxTokens,
			})
			if err != nil {
				return err
			}

			if err := printAnswer(response); err != nil {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&chatID, "chat", "", "existing conversation id to continue")
	cmd.Flags().IntVar(&topK, "top-k", 0, "number of retrieved sources (default 4)")
	cmd.Flags().Float64Var(&temperature, "temperature", 0, "sampling temperature in [0,1] (default 0.3)")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "response length cap (default 1000)")
	return cmd
}

func printAnswer(response api.ChatResponse) error {
	answer := response.Answer
	if isatty.IsTerminal(os.Stdout.Fd()) {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
		if err == nil {
			if rendered, err := renderer.Render(answer); err == nil {
				answer = rendered
			}
		}
	}
	fmt.Print(answer)
	if !strings.HasSuffix(answer, "\n") {
		fmt.Println()
	}

	for i, source := range response.Sources {
		label := source.Source
		if label == "" {
			label = "unknown source"
		}
		fmt.Printf("[%d] %s\n", i+1, label)
	}
	return nil
}
