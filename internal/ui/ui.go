package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/pantry/internal/formatter"
	"github.com/desertthunder/pantry/internal/registry"
	"github.com/desertthunder/pantry/internal/shared"
	"github.com/desertthunder/pantry/internal/tasks"
)

// ViewState represents the current view in the console.
type ViewState int

const (
	RecipientListView ViewState = iota
	QuantityInputView
	PendingView
)

// Model represents the console state.
type Model struct {
	view       ViewState
	registry   *registry.Registry
	session    *tasks.Session
	logger     *log.Logger
	width      int
	height     int
	recipients list.Model
	input      textinput.Model
	urgent     bool
	target     int
	pending    string
	status     string
	failed     bool
	help       help.Model
	keys       keyMap
}

// NewModel creates a console over reg. Log output goes to logger, never to the terminal.
func NewModel(reg *registry.Registry, logger *log.Logger) *Model {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}

	input := textinput.New()
	input.Placeholder = "kg"
	input.CharLimit = 6
	input.Width = 10
	input.Cursor.SetMode(cursor.CursorStatic)

	m := &Model{
		view:     RecipientListView,
		registry: reg,
		session:  tasks.NewSession(reg, nil, logger),
		logger:   logger,
		width:    80,
		height:   24,
		input:    input,
		help:     help.New(),
		keys:     newKeyMap(),
	}

	m.recipients = list.New(m.items(), list.NewDefaultDelegate(), m.width-4, m.height-8)
	m.recipients.Title = "Recipients"
	m.recipients.SetShowHelp(false)
	return m
}

func (m *Model) items() []list.Item {
	items := make([]list.Item, 0, m.registry.Size())
	for rec := range m.registry.All() {
		items = append(items, recipientItem{recipient: rec})
	}
	return items
}

// Init has nothing to fetch; the registry is already loaded.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recipients.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case RecipientListView:
			return m.handleListKeys(msg)
		case QuantityInputView:
			return m.handleInputKeys(msg)
		case PendingView:
			return m.handlePendingKeys(msg)
		}

	case Msg:
		switch msg.kind {
		case MsgCommandDone:
			res := msg.data.(commandResult)
			m.failed = res.err != nil
			if res.err != nil {
				m.status = fmt.Sprintf("%s: %v", res.command, res.err)
				m.logger.Warn("console command failed", "command", res.command, "error", res.err)
			} else {
				m.status = strings.TrimSpace(res.output)
				m.logger.Info("console command", "command", res.command)
			}
			cmd := m.recipients.SetItems(m.items())
			return m, cmd
		}
	}

	var cmd tea.Cmd
	if m.view == RecipientListView {
		m.recipients, cmd = m.recipients.Update(msg)
	}
	return m, cmd
}

func (m *Model) selected() (int, bool) {
	item, ok := m.recipients.SelectedItem().(recipientItem)
	if !ok {
		return 0, false
	}
	return item.recipient.ID(), true
}

// exec runs a session command now and delivers its outcome as a [Msg].
func (m *Model) exec(command string) tea.Cmd {
	output, err := m.session.Exec(command)
	return func() tea.Msg {
		return commandDoneMsg(command, output, err)
	}
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.recipients.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.recipients, cmd = m.recipients.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.request), key.Matches(msg, m.keys.urgent):
		id, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.target = id
		m.urgent = key.Matches(msg, m.keys.urgent)
		m.input.SetValue("")
		m.view = QuantityInputView
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.distribute):
		id, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, m.exec(fmt.Sprintf("distribute %d", id))
	case key.Matches(msg, m.keys.pending):
		id, ok := m.selected()
		if !ok {
			return m, nil
		}
		if rec, found := m.registry.FindByID(id); found {
			m.pending = string(formatter.PendingRequests(rec))
			m.view = PendingView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.recipients, cmd = m.recipients.Update(msg)
	return m, cmd
}

func (m *Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.input.Blur()
		m.view = RecipientListView
		return m, nil
	case tea.KeyEnter:
		verb := "request"
		if m.urgent {
			verb = "urgent"
		}
		command := fmt.Sprintf("%s %d %s", verb, m.target, strings.TrimSpace(m.input.Value()))
		m.input.Blur()
		m.view = RecipientListView
		return m, m.exec(command)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handlePendingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = RecipientListView
	}
	return m, nil
}

// View renders the console based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case QuantityInputView:
		return m.renderInput()
	case PendingView:
		return m.renderPending()
	default:
		return m.renderList()
	}
}

func (m *Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	if m.failed {
		return styles.failed.Render(m.status)
	}
	return styles.served.Render(m.status)
}

func (m *Model) renderList() string {
	total := styles.muted.Render(fmt.Sprintf("Total distributed: %.2f kg", m.registry.TotalDistributed()))
	helpView := m.help.ShortHelpView(m.keys.ShortHelp())
	return fmt.Sprintf("%s\n%s\n%s\n\n%s", m.recipients.View(), total, m.renderStatus(), helpView)
}

func (m *Model) renderInput() string {
	title := styles.title.Render(fmt.Sprintf("Request for recipient %d", m.target))
	if m.urgent {
		title = styles.urgent.Render(fmt.Sprintf("Urgent request for recipient %d", m.target))
	}
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.back})
	return fmt.Sprintf("%s\n%s\n\n%s", title, m.input.View(), helpView)
}

func (m *Model) renderPending() string {
	title := styles.title.Render("Pending Requests")
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n%s", title, m.pending, helpView)
}

// Run starts the console and blocks until the operator quits.
func Run(reg *registry.Registry, logger *log.Logger, opts ...tea.ProgramOption) error {
	if _, err := tea.NewProgram(NewModel(reg, logger), opts...).Run(); err != nil {
		return fmt.Errorf("console failed: %w", err)
	}
	return nil
}
