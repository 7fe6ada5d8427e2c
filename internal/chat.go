package internal

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	chatTitleStyle     = lipgloss.NewStyle().Bold(true)
	chatUserStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	chatAssistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	chatErrorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	chatStatusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	chatHistoryStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	chatInputStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// answerMsg carries a finished answer back into the update loop.
type answerMsg struct {
	question string
	answer   string
	err      error
}

// ChatModel is the terminal chat. Questions are answered off the update
// loop so the UI stays responsive.
type ChatModel struct {
	ctx      context.Context
	answerer Answerer
	input    textinput.Model
	viewport viewport.Model
	history  []Message
	errText  string
	pending  bool
	ready    bool
}

func NewChatModel(ctx context.Context, answerer Answerer) ChatModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a medical question and press Enter"
	ti.Focus()
	ti.CharLimit = 0

	return ChatModel{
		ctx:      ctx,
		answerer: answerer,
		input:    ti,
		viewport: viewport.New(80, 20),
	}
}

func (m ChatModel) Init() tea.Cmd { return textinput.Blink }

func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, hh := chatHistoryStyle.GetFrameSize()
		_, ih := chatInputStyle.GetFrameSize()
		m.viewport.Width = max(20, msg.Width-4)
		m.viewport.Height = max(3, msg.Height-hh-ih-4)
		m.refresh()
		return m, nil

	case answerMsg:
		m.pending = false
		if msg.err != nil {
			m.errText = "Error : " + msg.err.Error()
		} else {
			m.errText = ""
			m.history = append(m.history, Message{Role: RoleAssistant, Content: msg.answer})
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyCtrlL:
			m.history = nil
			m.errText = ""
			m.refresh()
			return m, nil
		case tea.KeyEnter:
			if m.pending {
				return m, nil
			}
			question, err := ValidateQuestion(m.input.Value())
			if err != nil {
				return m, nil
			}
			m.input.Reset()
			m.history = append(m.history, Message{Role: RoleUser, Content: question})
			m.pending = true
			m.errText = ""
			m.refresh()
			return m, m.ask(question)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m ChatModel) ask(question string) tea.Cmd {
	ctx, answerer := m.ctx, m.answerer
	return func() tea.Msg {
		answer, err := answerer.Answer(ctx, question)
		return answerMsg{question: question, answer: answer, err: err}
	}
}

func (m *ChatModel) refresh() {
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}

func (m ChatModel) renderHistory() string {
	if len(m.history) == 0 {
		return chatStatusStyle.Render("No messages yet.")
	}

	wrap := lipgloss.NewStyle().Width(max(10, m.viewport.Width-2))
	var sb strings.Builder
	for i, msg := range m.history {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		label := chatAssistantStyle.Render("assistant")
		if msg.Role == RoleUser {
			label = chatUserStyle.Render("you")
		}
		sb.WriteString(label + "\n" + wrap.Render(msg.Content))
	}
	return sb.String()
}

func (m ChatModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	status := chatStatusStyle.Render("enter: send  ctrl+l: clear  esc: quit")
	switch {
	case m.pending:
		status = chatStatusStyle.Render("Thinking...")
	case m.errText != "":
		status = chatErrorStyle.Render(m.errText)
	}

	return chatTitleStyle.Render("Medical Chatbot") + "\n" +
		chatHistoryStyle.Render(m.viewport.View()) + "\n" +
		chatInputStyle.Render(m.input.View()) + "\n" +
		status
}

// History returns the messages shown so far.
func (m ChatModel) History() []Message {
	return append([]Message{}, m.history...)
}
