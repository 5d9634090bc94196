// Package tui is the full-screen chat renderer built on bubbletea.
package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/finmate/internal/chat"
	"github.com/Veraticus/finmate/internal/cli"
	"github.com/Veraticus/finmate/internal/flow"
	"github.com/Veraticus/finmate/internal/tui/themes"
)

// State represents what the keyboard currently drives.
type State int

// States.
const (
	StateChat State = iota
	StateForm
	StateConfirm
)

// entry is one transcript line: a user message or a reply.
type entry struct {
	user  string
	reply chat.Reply
	// first is the number of the reply's first action shortcut.
	first int
}

// Model holds the chat TUI state.
type Model struct {
	ctx      context.Context
	session  *chat.Session
	renderer *cli.Renderer
	toggle   func(ctx context.Context) (bool, error)
	bell     io.Writer
	theme    themes.Theme
	keymap   KeyMap
	help     help.Model
	input    textinput.Model
	viewport viewport.Model
	form     editForm
	entries  []entry
	actions  []chat.Action
	status   string
	pending  int
	width    int
	height   int
	state    State
	// resume reopens the form or confirmation after a failed submission.
	resume   State
	sound    bool
	ready    bool
	quitting bool
}

// newModel creates a new model with the given configuration.
func newModel(ctx context.Context, session *chat.Session, cfg Config) (Model, error) {
	if session == nil {
		return Model{}, fmt.Errorf("session is required")
	}

	renderer, err := cli.NewRenderer(cfg.Theme.Dark, cfg.Width, session.Currency())
	if err != nil {
		return Model{}, err
	}

	input := textinput.New()
	input.Placeholder = "Type a message, or /1 to pick an action..."
	input.CharLimit = 500
	input.Focus()

	m := Model{
		ctx:      ctx,
		session:  session,
		renderer: renderer,
		toggle:   cfg.ToggleTheme,
		bell:     cfg.Bell,
		theme:    cfg.Theme,
		keymap:   DefaultKeyMap(),
		help:     help.New(),
		input:    input,
		viewport: viewport.New(cfg.Width, max(cfg.Height-chromeHeight, 1)),
		width:    cfg.Width,
		height:   cfg.Height,
		sound:    cfg.Sound && cfg.Bell != nil,
		state:    StateChat,
	}
	m.input.Width = max(cfg.Width-6, 10)
	return m, nil
}

// Init shows the welcome message.
func (m Model) Init() tea.Cmd {
	welcome := func() tea.Msg {
		return repliesMsg{replies: m.session.Welcome(m.ctx)}
	}
	return tea.Batch(textinput.Blink, welcome)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg.Width, msg.Height)

	case repliesMsg:
		return m.receive(msg)

	case themeToggledMsg:
		return m.themeToggled(msg)

	case tea.KeyMsg:
		if key.Matches(msg, m.keymap.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		if key.Matches(msg, m.keymap.ToggleHelp) {
			m.help.ShowAll = !m.help.ShowAll
			return m.resize(m.width, m.height)
		}
		if key.Matches(msg, m.keymap.ToggleTheme) {
			return m, m.toggleTheme()
		}

		switch m.state {
		case StateForm:
			return m.updateForm(msg)
		case StateConfirm:
			return m.updateConfirm(msg)
		default:
			return m.updateChat(msg)
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// chromeHeight is the space taken by the header, input, and status bar.
const chromeHeight = 6

func (m Model) resize(width, height int) (tea.Model, tea.Cmd) {
	m.width = width
	m.height = height
	m.ready = true

	if renderer, err := cli.NewRenderer(m.theme.Dark, width, m.session.Currency()); err == nil {
		m.renderer = renderer
	}

	m.input.Width = max(width-6, 10)
	m.help.Width = width
	m.viewport.Width = width
	m.viewport.Height = max(height-chromeHeight-m.panelHeight(), 1)
	m.refresh()
	return m, nil
}

func (m Model) panelHeight() int {
	switch m.state {
	case StateForm:
		return len(formLabels) + 4
	case StateConfirm:
		return 2
	}
	if m.help.ShowAll {
		return 4
	}
	return 0
}

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Send):
		text := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		if text == "" {
			return m, nil
		}
		return m.submit(text)
	case key.Matches(msg, m.keymap.Cancel):
		m.input.Reset()
		return m, nil
	case key.Matches(msg, m.keymap.PageUp), key.Matches(msg, m.keymap.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	if !strings.HasPrefix(text, "/") {
		m.entries = append(m.entries, entry{user: text})
		return m.apply(m.session.Submit(m.ctx, text))
	}

	cmd := strings.TrimPrefix(text, "/")
	if cmd == "cancel" {
		return m.apply(m.session.CancelFlow(m.ctx))
	}
	if cmd == "theme" {
		return m, m.toggleTheme()
	}

	n, err := strconv.Atoi(cmd)
	if err != nil || n < 1 || n > len(m.actions) {
		m.status = fmt.Sprintf("There is no action %s.", text)
		return m, nil
	}

	action := m.actions[n-1]
	m.entries = append(m.entries, entry{user: action.Label})
	return m.apply(m.session.Invoke(m.ctx, action))
}

// apply shows an outcome's immediate replies and schedules its tasks.
// tea.Batch runs the tasks concurrently, so replies arrive in completion order.
func (m Model) apply(out chat.Outcome) (tea.Model, tea.Cmd) {
	m.status = ""
	next, cmd := m.receive(repliesMsg{replies: out.Replies})
	m = next.(Model)

	cmds := []tea.Cmd{cmd}
	for _, task := range out.Tasks {
		m.pending++
		cmds = append(cmds, runTask(m.ctx, task))
	}
	return m, tea.Batch(cmds...)
}

func runTask(ctx context.Context, task chat.Task) tea.Cmd {
	return func() tea.Msg {
		return repliesMsg{replies: task(ctx), task: true}
	}
}

func (m Model) receive(msg repliesMsg) (tea.Model, tea.Cmd) {
	if msg.task && m.pending > 0 {
		m.pending--
	}

	var (
		actions []chat.Action
		cue     bool
	)
	for _, reply := range msg.replies {
		m.entries = append(m.entries, entry{reply: reply, first: len(actions) + 1})
		if reply.Kind != chat.KindSelection {
			actions = append(actions, reply.Actions...)
		}
		cue = cue || reply.Cue

		switch reply.Kind {
		case chat.KindEditForm:
			if reply.Expense != nil {
				m.form = newEditForm(*reply.Expense)
				m.state = StateForm
			}
		case chat.KindConfirmDelete:
			m.state = StateConfirm
		}
	}
	if len(actions) > 0 {
		m.actions = actions
	}

	if msg.task && m.pending == 0 && m.resume != StateChat {
		m.reopen()
	}

	m.viewport.Height = max(m.height-chromeHeight-m.panelHeight(), 1)
	m.refresh()

	if cue && m.sound {
		return m, m.ring()
	}
	return m, nil
}

// reopen returns to the form or confirmation when a submission failed and
// the flow is still waiting for the user.
func (m *Model) reopen() {
	ctrl := m.session.Flow()
	switch {
	case ctrl == nil:
	case m.resume == StateForm && ctrl.State() == flow.FormActive:
		m.form.err = ""
		m.state = StateForm
	case m.resume == StateConfirm && ctrl.State() == flow.ConfirmPending:
		m.state = StateConfirm
	}
	m.resume = StateChat
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	form, action, cmd := m.form.Update(msg, m.keymap)
	m.form = form

	switch action {
	case formCancel:
		m.state = StateChat
		return m.apply(m.session.CancelFlow(m.ctx))
	case formSubmit:
		out := m.session.SubmitEdit(m.ctx, m.form.Input())
		if !out.Pending() {
			// Validation failed; the form stays open.
			for _, r := range out.Replies {
				m.form.err = r.Text
			}
			return m, nil
		}
		m.state = StateChat
		m.resume = StateForm
		return m.apply(out)
	}
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Confirm):
		m.state = StateChat
		m.resume = StateConfirm
		return m.apply(m.session.ConfirmDelete(m.ctx))
	case key.Matches(msg, m.keymap.Deny):
		m.state = StateChat
		return m.apply(m.session.CancelFlow(m.ctx))
	}
	return m, nil
}

func (m Model) toggleTheme() tea.Cmd {
	if m.toggle == nil {
		return nil
	}
	ctx := m.ctx
	toggle := m.toggle
	return func() tea.Msg {
		dark, err := toggle(ctx)
		return themeToggledMsg{dark: dark, err: err}
	}
}

func (m Model) themeToggled(msg themeToggledMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		slog.Warn("failed to save theme", "error", msg.err)
		m.status = "Could not save the theme."
		return m, nil
	}

	m.theme = themes.ForMode(msg.dark)
	renderer, err := cli.NewRenderer(msg.dark, m.width, m.session.Currency())
	if err != nil {
		m.status = "Could not switch the theme."
		return m, nil
	}
	m.renderer = renderer
	m.refresh()
	return m, nil
}

func (m Model) ring() tea.Cmd {
	bell := m.bell
	return func() tea.Msg {
		_, _ = io.WriteString(bell, "\a")
		return nil
	}
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.transcript())
	m.viewport.GotoBottom()
}

// Entries returns how many transcript lines are shown.
func (m Model) Entries() int {
	return len(m.entries)
}

// Pending returns how many backend requests are in flight.
func (m Model) Pending() int {
	return m.pending
}

// State returns what the keyboard currently drives.
func (m Model) State() State {
	return m.state
}
