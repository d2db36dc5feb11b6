// Package panel es el panel de chat de soporte en la terminal.
package panel

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"spicy-biryani/internal/conversation"
	"spicy-biryani/internal/domain"
)

// changedMsg llega cuando el orquestador cambió el log o el flag de escritura.
type changedMsg struct{}

type model struct {
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	conv     *conversation.Orchestrator
	messages []domain.Message
	typing   bool
	notice   string

	ready  bool
	width  int
	height int
}

func newModel(conv *conversation.Orchestrator) model {
	ti := textinput.New()
	ti.Placeholder = "Ask about menu, orders, delivery..."
	ti.Focus()
	ti.CharLimit = 500
	ti.Prompt = "❯ "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(Saffron)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(Saffron)

	return model{
		input:    ti,
		spinner:  sp,
		conv:     conv,
		messages: conv.Messages(),
		typing:   conv.Typing(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// header(1) + divider(1) + viewport + divider(1) + input(1) + status(1)
		vpHeight := msg.Height - 5
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vpHeight
		}
		m.input.Width = msg.Width - 4
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.conv.Close()
			return m, tea.Quit
		case tea.KeyEnter:
			if m.typing {
				return m, nil
			}
			err := m.conv.Submit(m.input.Value())
			switch {
			case err == nil:
				m.input.SetValue("")
				m.notice = ""
			case errors.Is(err, conversation.ErrEmptyMessage):
			default:
				m.notice = err.Error()
			}
			m.sync()
			return m, nil
		case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case changedMsg:
		m.sync()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// sync copia el estado del orquestador al modelo.
func (m *model) sync() {
	m.messages = m.conv.Messages()
	m.typing = m.conv.Typing()
	m.refresh()
}

func (m *model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(renderTranscript(m.messages))
	m.viewport.GotoBottom()
}

func (m model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	header := TitleStyle.Render(" 🍛 Spicy Biryani Support")
	divider := DimStyle.Render(strings.Repeat("─", m.width))

	inputLine := " " + m.input.View()
	if m.typing {
		inputLine = fmt.Sprintf(" %s Typing...", m.spinner.View())
	}

	status := DimStyle.Render(" Enter to send · Esc to close")
	if m.notice != "" {
		status = DimStyle.Render(" " + m.notice)
	}

	return header + "\n" +
		divider + "\n" +
		m.viewport.View() + "\n" +
		divider + "\n" +
		inputLine + "\n" +
		status
}

func renderTranscript(messages []domain.Message) string {
	var sb strings.Builder
	for _, msg := range messages {
		sb.WriteString("\n")
		label := BotLabel.Render("Spicy Biryani")
		if msg.Sender == domain.SenderUser {
			label = UserLabel.Render("You")
		}
		sb.WriteString("  " + label + DimStyle.Render(" "+msg.Timestamp.Local().Format("15:04")) + "\n")
		for _, line := range strings.Split(msg.Text, "\n") {
			sb.WriteString("  " + line + "\n")
		}
	}
	return sb.String()
}

// Run abre el panel sobre conv. Al salir la conversación queda cerrada.
func Run(conv *conversation.Orchestrator) error {
	p := tea.NewProgram(newModel(conv), tea.WithAltScreen())
	// Submit notifica desde dentro de Update; Send bloquearía el loop.
	conv.OnChange(func() { go p.Send(changedMsg{}) })
	_, err := p.Run()
	conv.Close()
	return err
}
