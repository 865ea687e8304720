package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"

	"github.com/go-go-golems/jiminy/pkg/api"
	"github.com/go-go-golems/jiminy/pkg/chat"
)

// Run wires the controllers to a fresh transport client and blocks until
// the user quits.
func Run(client *api.Client) error {
	list := chat.NewListController(client)
	session := chat.NewSessionController(client)

	program := tea.NewProgram(
		New(client, list, session),
		tea.WithAltScreen(),
	)
	go program.Send(ProgramReady{Program: program})

	if _, err := program.Run(); err != nil {
		return errors.Wrap(err, "chat ui failed")
	}
	return nil
}
