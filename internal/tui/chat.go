package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kbot-ai/cli/internal/ollama"
	"github.com/kbot-ai/cli/internal/rag"
)

// localUserID keys the conversation context for the single terminal user.
const localUserID int64 = 1

var (
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	inputBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// Model is the Bubble Tea model for the chat front end.
type Model struct {
	retriever  *rag.Retriever
	contextSvc *rag.ContextService
	llm        *ollama.Client
	chatModel  string
	system     string

	input    textinput.Model
	viewport viewport.Model
	lines    []string
	status   string
	waiting  bool
	ready    bool
}

// New creates the chat model.
func New(retriever *rag.Retriever, contextSvc *rag.ContextService, llm *ollama.Client, chatModel, systemPrompt string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question (enter to send, ctrl+l to clear context)"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		retriever:  retriever,
		contextSvc: contextSvc,
		llm:        llm,
		chatModel:  chatModel,
		system:     systemPrompt,
		input:      ti,
		viewport:   vp,
		status:     "Ready.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

type answerMsg struct {
	reply string
	err   error
}

type clearedMsg struct{ err error }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := ih + 3 // input line, status line, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = msg.Width
		m.viewport.Height = vh
		m.viewport.SetContent(strings.Join(m.lines, "\n"))
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD:
			return m, tea.Quit
		case tea.KeyCtrlL:
			return m, m.clearContext()
		case tea.KeyEnter:
			question := strings.TrimSpace(m.input.Value())
			if question == "" || m.waiting {
				return m, nil
			}
			m.input.SetValue("")
			m.waiting = true
			m.status = "Thinking..."
			m.appendLine(userStyle.Render("You: ") + question)
			return m, m.ask(question)
		}
	case answerMsg:
		m.waiting = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.status = "Ready."
		m.appendLine(assistantStyle.Render("Assistant: ") + msg.reply)
		return m, nil
	case clearedMsg:
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
		} else {
			m.lines = nil
			m.viewport.SetContent("")
			m.status = "Context cleared."
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the chat transcript, input box and status line.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	return m.viewport.View() + "\n" +
		inputBoxStyle.Render(m.input.View()) + "\n" +
		statusStyle.Render(m.status)
}

func (m *Model) appendLine(line string) {
	m.lines = append(m.lines, line, "")
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

// ask runs one conversational turn: retrieve context, assemble the prompt,
// call the model and persist the new history.
func (m Model) ask(question string) tea.Cmd {
	retriever := m.retriever
	contextSvc := m.contextSvc
	llm := m.llm
	chatModel := m.chatModel
	system := m.system

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		snippets := retriever.Retrieve(ctx, question, retriever.TopK())
		history := contextSvc.Get(ctx, localUserID)
		messages := rag.BuildMessages(system, snippets, history, question)

		reply, err := llm.Chat(ctx, &ollama.ChatRequest{
			Model:    chatModel,
			Messages: messages,
		})
		if err != nil {
			return answerMsg{err: fmt.Errorf("chat failed: %w", err)}
		}

		if err := contextSvc.Append(ctx, localUserID, question, reply); err != nil {
			// The reply is still shown; only history persistence failed.
			return answerMsg{reply: reply, err: nil}
		}
		return answerMsg{reply: reply}
	}
}

func (m Model) clearContext() tea.Cmd {
	contextSvc := m.contextSvc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return clearedMsg{err: contextSvc.Clear(ctx, localUserID)}
	}
}
