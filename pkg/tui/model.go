package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/jiminy/pkg/api"
	"github.com/go-go-golems/jiminy/pkg/chat"
)

type focusArea int

const (
	focusSidebar focusArea = iota
	focusInput
)

// ProgramReady hands the running tea.Program to the model so controller
// callbacks can inject messages into the event loop.
type ProgramReady struct {
	Program *tea.Program
}

type chatsRefreshedMsg struct{ err error }
type sessionLoadedMsg struct {
	chatID string
	err    error
}
type sendFinishedMsg struct {
	chatID string
	err    error
}
type feedbackSavedMsg struct {
	messageID string
	err       error
}
type titleChangedMsg struct {
	chatID string
	title  string
}
type chatCreatedMsg struct {
	conversation api.Conversation
	err          error
}
type chatDeletedMsg struct {
	chatID string
	err    error
}
type healthCheckedMsg struct{ err error }

// Model wires the two controllers together. It owns the currently selected
// conversation id; the controllers own everything else. All network work
// runs in tea.Cmds and is applied back to the controllers before the result
// message reaches Update, so Update itself never blocks.
type Model struct {
	client  *api.Client
	list    *chat.ListController
	session *chat.SessionController

	program  *tea.Program
	keys     KeyMap
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	width  int
	height int
	ready  bool

	focus        focusArea
	cursor       int
	activeID     string
	sending      bool
	healthErr    string
	messageCount int
}

func New(client *api.Client, list *chat.ListController, session *chat.SessionController) Model {
	input := textinput.New()
	input.Placeholder = "Ask a question..."
	input.CharLimit = 4000

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	return Model{
		client:  client,
		list:    list,
		session: session,
		keys:    DefaultKeyMap(),
		input:   input,
		spinner: sp,
		focus:   focusSidebar,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		textinput.Blink,
		m.refreshChats(),
		m.checkHealth(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ProgramReady:
		m.program = msg.Program
		program := msg.Program
		m.session.SetTitleListener(func(chatID string, title string) {
			program.Send(titleChangedMsg{chatID: chatID, title: title})
		})
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.sending || m.list.Loading() || m.session.Loading() {
			m.refreshViewport()
		}
		return m, cmd

	case chatsRefreshedMsg:
		m.clampCursor()
		return m, nil

	case sessionLoadedMsg:
		if msg.chatID == m.activeID {
			m.refreshViewport()
			m.viewport.GotoBottom()
		}
		return m, nil

	case sendFinishedMsg:
		m.sending = false
		m.refreshViewport()
		m.viewport.GotoBottom()
		return m, nil

	case titleChangedMsg:
		return m, m.refreshChats()

	case chatCreatedMsg:
		if msg.err != nil {
			return m, nil
		}
		m.cursor = 0
		cmd := m.activate(msg.conversation.ID)
		return m, cmd

	case chatDeletedMsg:
		m.clampCursor()
		if msg.err == nil && msg.chatID == m.activeID {
			m.activeID = ""
			m.session.SetActive("")
			m.refreshViewport()
		}
		return m, nil

	case feedbackSavedMsg:
		m.refreshViewport()
		return m, nil

	case healthCheckedMsg:
		if msg.err != nil {
			m.healthErr = msg.err.Error()
		} else {
			m.healthErr = ""
		}
		return m, nil
	}

	return m.updateComponents(msg)
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	chatWidth := m.width - sidebarWidth - 2
	if chatWidth < 20 {
		chatWidth = 20
	}
	chatHeight := m.height - 5
	if chatHeight < 3 {
		chatHeight = 3
	}
	if !m.ready {
		m.viewport = viewport.New(chatWidth, chatHeight)
		m.ready = true
	} else {
		m.viewport.Width = chatWidth
		m.viewport.Height = chatHeight
	}
	m.input.Width = chatWidth - 4

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(chatWidth-2),
	)
	if err != nil {
		log.Warn().Err(err).Msg("could not build markdown renderer")
	} else {
		m.renderer = renderer
	}
	m.refreshViewport()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Tab):
		if m.focus == focusSidebar {
			m.focus = focusInput
			m.input.Focus()
		} else {
			m.focus = focusSidebar
			m.input.Blur()
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		cmds := []tea.Cmd{m.refreshChats(), m.checkHealth()}
		if m.activeID != "" {
			cmds = append(cmds, m.loadSession(m.activeID))
		}
		return m, tea.Batch(cmds...)

	case key.Matches(msg, m.keys.NewChat):
		return m, m.createChat()

	case key.Matches(msg, m.keys.DeleteChat):
		conversations := m.list.Conversations()
		if m.cursor < len(conversations) {
			return m, m.deleteChat(conversations[m.cursor].ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.Like):
		return m, m.feedbackOnLastAnswer(api.FeedbackLike)

	case key.Matches(msg, m.keys.Dislike):
		return m, m.feedbackOnLastAnswer(api.FeedbackDislike)

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	if m.focus == focusSidebar {
		return m.handleSidebarKey(msg)
	}
	return m.handleInputKey(msg)
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.list.Conversations())-1 {
			m.cursor++
		}
		return m, nil
	case key.Matches(msg, m.keys.Select):
		conversations := m.list.Conversations()
		if m.cursor < len(conversations) {
			m.focus = focusInput
			m.input.Focus()
			cmd := m.activate(conversations[m.cursor].ID)
			return m, cmd
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Select) {
		content := m.input.Value()
		if content == "" || m.activeID == "" || m.sending {
			return m, nil
		}
		m.input.Reset()
		m.sending = true
		return m, tea.Batch(m.sendMessage(content), m.spinner.Tick)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// activate switches the active conversation, clearing the previous timeline
// synchronously and scheduling the load of the new one.
func (m *Model) activate(chatID string) tea.Cmd {
	m.activeID = chatID
	needsLoad := m.session.SetActive(chatID)
	m.refreshViewport()
	if !needsLoad {
		return nil
	}
	return tea.Batch(m.loadSession(chatID), m.spinner.Tick)
}

func (m *Model) clampCursor() {
	count := len(m.list.Conversations())
	if m.cursor >= count {
		m.cursor = count - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) feedbackOnLastAnswer(feedback string) tea.Cmd {
	messages := m.session.Messages()
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == api.RoleAssistant {
			return m.sendFeedback(messages[i].ID, feedback)
		}
	}
	return nil
}

func (m Model) refreshChats() tea.Cmd {
	list := m.list
	return func() tea.Msg {
		return chatsRefreshedMsg{err: list.Refresh(context.Background())}
	}
}

func (m Model) loadSession(chatID string) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		return sessionLoadedMsg{chatID: chatID, err: session.Load(context.Background())}
	}
}

func (m Model) sendMessage(content string) tea.Cmd {
	session := m.session
	chatID := m.activeID
	return func() tea.Msg {
		_, err := session.Send(context.Background(), content, api.SendOptions{})
		return sendFinishedMsg{chatID: chatID, err: err}
	}
}

func (m Model) sendFeedback(messageID string, feedback string) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		err := session.SendFeedback(context.Background(), messageID, feedback)
		return feedbackSavedMsg{messageID: messageID, err: err}
	}
}

func (m Model) createChat() tea.Cmd {
	list := m.list
	return func() tea.Msg {
		conversation, err := list.Create(context.Background(), "New chat")
		return chatCreatedMsg{conversation: conversation, err: err}
	}
}

func (m Model) deleteChat(chatID string) tea.Cmd {
	list := m.list
	return func() tea.Msg {
		return chatDeletedMsg{chatID: chatID, err: list.Delete(context.Background(), chatID)}
	}
}

func (m Model) checkHealth() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		_, err := client.Health(context.Background())
		return healthCheckedMsg{err: err}
	}
}
