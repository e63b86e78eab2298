package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/smartbotics/automate-web/internal/model/chat"
	"github.com/smartbotics/automate-web/internal/widget"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	userStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
	botStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	sendStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("118"))
)

var launcherStyle = lipgloss.NewStyle().
	Bold(true).
	Padding(0, 1).
	Foreground(lipgloss.Color("230")).
	Background(lipgloss.Color("63"))

var panelStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("63"))

// Rows used by everything in the panel except the transcript and input.
const panelChrome = 5

type refreshMsg struct{}

func waitForRefresh(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return refreshMsg{}
	}
}

// Model renders the chat widget in a terminal. The controller is mounted on
// the first window size message so narrow mode reflects the real terminal.
type Model struct {
	sender  widget.Sender
	opts    []widget.Option
	surface *Surface
	ctrl    *widget.Controller

	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model

	cols, rows int
	frame      frame
	err        error
}

// NewModel creates a terminal widget talking to sender.
func NewModel(sender widget.Sender, surface *Surface, opts ...widget.Option) *Model {
	ta := textarea.New()
	ta.Placeholder = "Escribe tu mensaje..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 2000
	ta.SetHeight(1)
	ta.KeyMap.InsertNewline.SetEnabled(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)

	return &Model{
		sender:   sender,
		opts:     opts,
		surface:  surface,
		textarea: ta,
		viewport: viewport.New(80, 10),
		spinner:  sp,
	}
}

// Controller returns the mounted controller, nil before the first resize.
func (m *Model) Controller() *widget.Controller {
	return m.ctrl
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textarea.Blink, waitForRefresh(m.surface.Updates()))
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch ev := msg.(type) {
	case tea.WindowSizeMsg:
		m.cols, m.rows = ev.Width, ev.Height
		m.surface.SetSize(ev.Width, ev.Height)
		if m.ctrl == nil {
			m.mount()
		} else {
			m.ctrl.HandleResize()
		}
	case refreshMsg:
		cmds = append(cmds, waitForRefresh(m.surface.Updates()))
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(ev)
		cmds = append(cmds, cmd)
	case tea.KeyMsg:
		if quit := m.handleKey(ev, &cmds); quit {
			return m, tea.Quit
		}
	}

	m.sync()
	return m, tea.Batch(cmds...)
}

func (m *Model) mount() {
	ctrl, err := widget.Mount(m.surface.Elements(), m.surface, m.sender, m.opts...)
	if err != nil {
		m.err = err
		log.Error().Err(err).Str("component", "tui").Msg("mount widget")
		return
	}
	m.ctrl = ctrl
}

func (m *Model) handleKey(ev tea.KeyMsg, cmds *[]tea.Cmd) bool {
	if ev.Type == tea.KeyCtrlC {
		if m.ctrl != nil {
			m.ctrl.Teardown()
		}
		return true
	}
	if m.ctrl == nil {
		return false
	}

	switch ev.String() {
	case "ctrl+t":
		m.ctrl.Toggle()
		return false
	case "esc":
		m.ctrl.HandlePopState()
		return false
	}

	if !m.frame.windowActive {
		return false
	}

	if ev.Type == tea.KeyEnter {
		if !m.ctrl.HandleKeyDown("Enter", ev.Alt) {
			m.textarea.InsertString("\n")
			m.inputChanged()
		}
		return false
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(ev)
	*cmds = append(*cmds, cmd)
	m.inputChanged()
	return false
}

func (m *Model) inputChanged() {
	m.surface.SetInput(m.textarea.Value(), m.textarea.LineCount())
	m.ctrl.HandleInput()
}

// sync pulls the surface state into the bubbles components.
func (m *Model) sync() {
	f := m.surface.take()
	m.frame = f

	if f.inputDirty {
		m.textarea.SetValue(f.inputValue)
	}
	if f.focus {
		m.textarea.Focus()
	}
	m.textarea.SetHeight(max(1, f.inputHeight/cellHeight))

	width := max(20, m.cols-4)
	m.textarea.SetWidth(width)
	m.viewport.Width = width

	height := m.rows
	if f.windowHeight > 0 {
		height = min(height, f.windowHeight/cellHeight)
	}
	m.viewport.Height = max(1, height-panelChrome-m.textarea.Height())

	m.viewport.SetContent(renderTranscript(f.turns, width))
	if f.scroll {
		m.viewport.GotoBottom()
	}
}

func renderTranscript(turns []chat.Turn, width int) string {
	wrap := lipgloss.NewStyle().Width(width)
	var b strings.Builder
	for i, turn := range turns {
		if i > 0 {
			b.WriteString("\n")
		}
		switch {
		case turn.IsError:
			b.WriteString(wrap.Render(errorStyle.Render("Bot: ") + turn.Text))
		case turn.Origin == chat.User:
			b.WriteString(wrap.Render(userStyle.Render("Tú: ") + turn.Text))
		default:
			b.WriteString(wrap.Render(botStyle.Render("Bot: ") + turn.Text))
		}
	}
	return b.String()
}

func (m *Model) View() string {
	if m.err != nil {
		return errorStyle.Render("widget no disponible: " + m.err.Error())
	}
	if m.ctrl == nil {
		return dimStyle.Render("Cargando...")
	}

	launcher := launcherStyle.Render("Chat  ctrl+t")
	if m.frame.toggleActive {
		launcher = launcherStyle.Render("×  ctrl+t")
	}
	if !m.frame.windowActive {
		return launcher + "\n"
	}

	typing := ""
	if m.frame.typing {
		typing = m.spinner.View() + " " + dimStyle.Render(chat.TypingLabel)
	}

	send := dimStyle.Render("enter enviar")
	if !m.frame.sendDisabled {
		send = sendStyle.Render("enter enviar")
	}
	footer := send + dimStyle.Render(" · alt+enter nueva línea · esc atrás · ctrl+c salir")

	panel := lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render("Automate · asistente"),
		m.viewport.View(),
		typing,
		m.textarea.View(),
		footer,
	)
	return panelStyle.Render(panel) + "\n" + launcher + "\n"
}
