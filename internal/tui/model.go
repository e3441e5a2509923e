package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"clicktap-chat/internal/conversation"
	"clicktap-chat/internal/render"
)

// replyMsg carries the outcome of one proxy call back into the update loop.
type replyMsg struct {
	reply conversation.Reply
}

// Model is the bubbletea view over a conversation.Session.
type Model struct {
	session *conversation.Session
	sender  conversation.Sender
	opts    conversation.Options

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	ready  bool
	width  int
	height int
	notice string
	model  string // model named by the latest reply

	markdownStyle string
	copyText      func(string) error
}

func NewModel(session *conversation.Session, sender conversation.Sender) Model {
	opts := session.Options()

	ta := textarea.New()
	ta.Placeholder = opts.Placeholder
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextMute)
	ta.BlurredStyle = ta.FocusedStyle
	ta.Focus()

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = thinkingStyle

	return Model{
		session:  session,
		sender:   sender,
		opts:     opts,
		textarea: ta,
		spinner:  s,

		markdownStyle: render.DefaultOptions().Style,
		copyText:      clipboard.WriteAll,
	}
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4
		inputHeight := 5
		footerHeight := 2
		vpHeight := m.height - headerHeight - inputHeight - footerHeight - 2
		if vpHeight < 5 {
			vpHeight = 5
		}
		contentWidth := m.width - 4
		if contentWidth < 20 {
			contentWidth = 20
		}

		// The messages panel pads one column on each side.
		if !m.ready {
			m.viewport = viewport.New(contentWidth-2, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = contentWidth - 2
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(contentWidth - 4)
		m.refresh()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			if !m.session.CanSend(m.textarea.Value()) {
				return m, nil
			}
			text, ok := m.session.Begin(m.textarea.Value())
			if !ok {
				return m, nil
			}
			m.notice = ""
			m.textarea.Reset()
			m.textarea.Blur()
			m.refresh()
			return m, tea.Batch(m.send(text), m.spinner.Tick)

		case "ctrl+y":
			m.notice = m.copyLastReply()
			return m, nil
		}

	case replyMsg:
		m.session.Finish(msg.reply)
		if msg.reply.Model != "" {
			m.model = msg.reply.Model
		}
		cmds = append(cmds, m.textarea.Focus())
		m.refresh()

	case spinner.TickMsg:
		if m.session.Loading() {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
			m.refresh()
		}
	}

	// The input is disabled while a response is awaited.
	if !m.session.Loading() {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// send runs the request off the update loop. A panicking sender still
// produces a reply so the session always returns to idle.
func (m Model) send(text string) tea.Cmd {
	sender := m.sender
	return func() (msg tea.Msg) {
		defer func() {
			if r := recover(); r != nil {
				msg = replyMsg{reply: conversation.Interpret(nil, fmt.Errorf("send panicked: %v", r))}
			}
		}()
		resp, err := sender.Send(context.Background(), text)
		return replyMsg{reply: conversation.Interpret(resp, err)}
	}
}

func (m Model) copyLastReply() string {
	msgs := m.session.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role != conversation.RoleAssistant {
			continue
		}
		if err := m.copyText(msgs[i].Content); err != nil {
			return "Copy failed: " + err.Error()
		}
		return "Copied last reply"
	}
	return ""
}

// refresh re-renders the transcript and keeps the newest entry in view.
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderMessages(m.viewport.Width - 2))
	m.viewport.GotoBottom()
}

func (m Model) renderMessages(width int) string {
	if width < 10 {
		width = 10
	}
	var b strings.Builder

	for i, msg := range m.session.Messages() {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if msg.Role == conversation.RoleUser {
			b.WriteString(userLabelStyle.Render("You") + "\n")
			b.WriteString(userBubbleStyle.Width(width - 2).Render(msg.Content))
			continue
		}

		b.WriteString(assistantLabelStyle.Render("Assistant") + "\n")
		b.WriteString(m.renderAssistant(msg.Content, width))
		if m.opts.ShowSources && len(msg.Sources) > 0 {
			b.WriteString("\n" + sourcesStyle.Render("Sources: "+strings.Join(msg.Sources, ", ")))
		}
	}

	if m.session.Loading() {
		b.WriteString("\n\n" + m.spinner.View() + " " + thinkingStyle.Render(conversation.ThinkingText))
	}
	return b.String()
}

func (m Model) renderAssistant(content string, width int) string {
	if strings.HasPrefix(content, "Error: ") {
		return errorTextStyle.Render(content)
	}
	rendered, err := render.Markdown(content, render.Options{Width: width, Style: m.markdownStyle})
	if err != nil {
		return content
	}
	return rendered
}

func (m Model) View() string {
	if !m.ready {
		return hintStyle.Render("  Initializing...")
	}
	contentWidth := m.width - 4
	if contentWidth < 20 {
		contentWidth = 20
	}

	title := titleStyle.Render(m.opts.Title)
	if m.opts.Badge != "" {
		title = lipgloss.JoinHorizontal(lipgloss.Center, title, badgeStyle.Render(m.opts.Badge))
	}
	headerLines := []string{title}
	if m.opts.Subtitle != "" {
		headerLines = append(headerLines, subtitleStyle.Render(m.opts.Subtitle))
	}
	header := headerStyle.Width(contentWidth).Render(lipgloss.JoinVertical(lipgloss.Left, headerLines...))

	messages := messagesAreaStyle.Width(contentWidth).Render(m.viewport.View())

	var input string
	if m.session.Loading() {
		input = hintStyle.Render("Waiting for reply…")
	} else {
		input = m.textarea.View()
	}
	inputPanel := inputPanelStyle.Width(contentWidth).Render(input)

	sections := []string{header, messages, inputPanel}
	if m.opts.Tip != "" {
		sections = append(sections, hintStyle.Render(m.opts.Tip))
	}
	sections = append(sections, m.renderStatusBar())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderStatusBar() string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"↑↓", "Scroll"},
		{"Ctrl+Y", "Copy reply"},
		{"Esc", "Quit"},
	}

	items := make([]string, 0, len(shortcuts))
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusBarStyle.Render(" "+s.desc))
	}
	bar := strings.Join(items, statusBarStyle.Render("  │  "))
	if m.model != "" {
		bar += statusBarStyle.Render("  │  ") + statusKeyStyle.Render("Model") + statusBarStyle.Render(" "+m.model)
	}
	if m.notice != "" {
		bar += statusBarStyle.Render("  │  ") + hintStyle.Render(m.notice)
	}
	return bar
}

// Run starts the full-screen chat.
func Run(session *conversation.Session, sender conversation.Sender) error {
	p := tea.NewProgram(NewModel(session, sender), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
