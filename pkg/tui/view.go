package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/go-go-golems/jiminy/pkg/api"
)

const sourceExcerptLimit = 300

func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	sidebar := m.renderSidebar()
	main := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderInput(),
		m.renderFooter(),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)
}

func (m Model) renderHeader() string {
	title := "no conversation selected"
	if conversation, ok := m.session.Conversation(); ok {
		title = conversation.Title
		if title == "" {
			title = "Untitled"
		}
	}
	health := healthOKStyle.Render("●")
	if m.healthErr != "" {
		health = healthBadStyle.Render("●")
	}
	return titleStyle.Render(title) + " " + health
}

func (m Model) renderSidebar() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Conversations"))
	b.WriteString("\n")

	conversations := m.list.Conversations()
	if m.list.Loading() && len(conversations) == 0 {
		b.WriteString(itemStyle.Render(m.spinner.View() + " loading"))
		b.WriteString("\n")
	}
	for i, conversation := range conversations {
		title := conversation.Title
		if title == "" {
			title = "Untitled"
		}
		if len(title) > sidebarWidth-4 {
			title = title[:sidebarWidth-4] + "…"
		}
		mark := "  "
		if conversation.ID == m.activeID {
			mark = activeMarkStyle.Render("▍ ")
		}
		line := mark + title
		if i == m.cursor && m.focus == focusSidebar {
			b.WriteString(selectedItemStyle.Render(line))
		} else {
			b.WriteString(itemStyle.Render(line))
		}
		b.WriteString("\n")
	}
	if err := m.list.Err(); err != "" {
		b.WriteString("\n")
		b.WriteString(errStyle.Render(wordwrap.String(err, sidebarWidth-2)))
	}

	return sidebarStyle.Height(m.height - 1).Render(b.String())
}

func (m Model) renderInput() string {
	if m.activeID == "" {
		return helpStyle.Render("  select a conversation (tab, ↑/↓, enter) or create one (ctrl+n)")
	}
	prompt := "> "
	if m.sending {
		prompt = m.spinner.View() + " "
	}
	return prompt + m.input.View()
}

func (m Model) renderFooter() string {
	if err := m.session.Err(); err != "" {
		return errStyle.Render(wordwrap.String(err, m.viewport.Width))
	}
	if m.healthErr != "" {
		return errStyle.Render("backend unreachable: " + wordwrap.String(m.healthErr, m.viewport.Width-21))
	}
	return helpStyle.Render("enter send · ctrl+n new · ctrl+d delete · ctrl+g/b rate · ctrl+r refresh · ctrl+c quit")
}

// refreshViewport rebuilds the timeline view from the session controller's
// current snapshot.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	atBottom := m.viewport.AtBottom()
	messages := m.session.Messages()
	m.viewport.SetContent(m.renderTimeline(messages))
	if atBottom || len(messages) != m.messageCount {
		m.viewport.GotoBottom()
	}
	m.messageCount = len(messages)
}

func (m Model) renderTimeline(messages []api.Message) string {
	if m.activeID == "" {
		return helpStyle.Render("\n  Ask questions about your knowledge base.\n  Answers come with cited sources.")
	}
	if m.session.Loading() && len(messages) == 0 {
		return "  " + m.spinner.View() + " loading history..."
	}

	var b strings.Builder
	for _, message := range messages {
		b.WriteString(m.renderMessage(message))
		b.WriteString("\n")
	}
	if m.sending {
		b.WriteString(assistantLabelStyle.Render("assistant"))
		b.WriteString("\n")
		b.WriteString("  " + m.spinner.View() + " thinking...\n")
	}
	return b.String()
}

func (m Model) renderMessage(message api.Message) string {
	var b strings.Builder

	switch message.Role {
	case api.RoleAssistant:
		b.WriteString(assistantLabelStyle.Render("assistant"))
	default:
		b.WriteString(userLabelStyle.Render("you"))
	}
	if message.Feedback != "" {
		marker := "▲ liked"
		if message.Feedback == api.FeedbackDislike {
			marker = "▼ disliked"
		}
		b.WriteString(feedbackStyle.Render(marker))
	}
	b.WriteString("\n")

	content := message.Content
	if message.Role == api.RoleAssistant && m.renderer != nil {
		if rendered, err := m.renderer.Render(content); err == nil {
			content = strings.TrimRight(rendered, "\n") + "\n"
		}
	} else {
		content = wordwrap.String(content, m.viewport.Width-2) + "\n"
	}
	b.WriteString(content)

	// sources stay attached to the message they belong to
	for i, source := range message.Sources {
		label := source.Source
		if label == "" {
			label = "unknown source"
		}
		excerpt := source.Content
		if len(excerpt) > sourceExcerptLimit {
			excerpt = excerpt[:sourceExcerptLimit] + "…"
		}
		excerpt = strings.ReplaceAll(excerpt, "\n", " ")
		b.WriteString(sourceStyle.Render(wordwrap.String(
			fmt.Sprintf("[%d] %s: %s", i+1, label, excerpt),
			m.viewport.Width-4,
		)))
		b.WriteString("\n")
	}

	return b.String()
}
