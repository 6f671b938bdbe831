// Package tui renders the dashboard tabs in the terminal using bubbletea.
package tui

import (
	"cmp"
	"context"
	"errors"
	"log"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zhouzirui/portfolio-desk/backend/internal/filter"
	"github.com/zhouzirui/portfolio-desk/backend/internal/model/chart"
	chatmodel "github.com/zhouzirui/portfolio-desk/backend/internal/model/chat"
	"github.com/zhouzirui/portfolio-desk/backend/internal/model/fraud"
	"github.com/zhouzirui/portfolio-desk/backend/internal/model/portfolio"
	"github.com/zhouzirui/portfolio-desk/backend/internal/service/chat"
)

// Tab identifies one of the dashboard screens.
type Tab int

const (
	TabPortfolio Tab = iota
	TabAssistant
	TabFraud
)

var tabTitles = []string{"Portfolio Tracker", "AI Assistant", "Fraud Alerts"}

func (t Tab) String() string {
	return tabTitles[t]
}

// Deps are the in-process services the terminal client renders.
type Deps struct {
	Positions portfolio.Store
	Chart     chart.Series
	Sites     fraud.Store
	Chat      *chat.Service
}

// Messages
type (
	// chatEventMsg carries one event from the session subscription.
	// ok is false once the subscription channel has been closed.
	chatEventMsg struct {
		event chatmodel.StreamEvent
		ok    bool
	}
)

// Model is the bubbletea model of the dashboard.
type Model struct {
	deps Deps

	active Tab
	width  int

	portfolioSearch textinput.Model
	fraudSearch     textinput.Model
	chatInput       textinput.Model
	spinner         spinner.Model

	rangeIdx    int
	categoryIdx int
	categories  []fraud.Option
	// selected is the highlighted position symbol, empty when none.
	selected string

	sessionID   string
	messages    []chatmodel.Message
	pending     bool
	closed      bool
	events      <-chan chatmodel.StreamEvent
	unsubscribe func()
	status      string
}

// New opens an assistant session and builds the initial model.
func New(ctx context.Context, deps Deps) (*Model, error) {
	snap, err := deps.Chat.CreateSession(ctx)
	if err != nil {
		return nil, err
	}
	events, unsubscribe, err := deps.Chat.Subscribe(snap.Session.ID)
	if err != nil {
		return nil, err
	}

	m := &Model{
		deps:            deps,
		portfolioSearch: newInput("Search stocks..."),
		fraudSearch:     newInput("Search by name or URL..."),
		chatInput:       newInput("Ask about your investments..."),
		spinner:         spinner.New(spinner.WithSpinner(spinner.Dot)),
		categories:      deps.Sites.Categories(),
		sessionID:       snap.Session.ID,
		events:          events,
		unsubscribe:     unsubscribe,
		status:          "Ready",
	}
	m.rangeIdx = m.defaultRange()
	for _, msg := range snap.Messages {
		m.applyMessage(msg)
	}
	m.pending = snap.Pending
	m.portfolioSearch.Focus()
	return m, nil
}

func newInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "> "
	ti.CharLimit = 200
	return ti
}

func (m *Model) defaultRange() int {
	for i, r := range m.deps.Chart.Ranges {
		if r.Value == chart.DefaultRange {
			return i
		}
	}
	return 0
}

// SessionID returns the assistant session owned by the model.
func (m *Model) SessionID() string {
	return m.sessionID
}

// Close disposes the assistant session so no pending reply outlives the UI.
func (m *Model) Close() {
	if m.closed {
		return
	}
	m.closed = true
	m.unsubscribe()
	if err := m.deps.Chat.Close(context.Background(), m.sessionID); err != nil && !errors.Is(err, chat.ErrSessionNotFound) {
		log.Printf("[tui] close session=%s: %v", m.sessionID, err)
	}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.waitForEvent())
}

func (m *Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		ev, ok := <-events
		return chatEventMsg{event: ev, ok: ok}
	}
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.Close()
			return m, tea.Quit
		case "tab":
			return m, m.switchTab((m.active + 1) % Tab(len(tabTitles)))
		case "shift+tab":
			return m, m.switchTab((m.active + Tab(len(tabTitles)) - 1) % Tab(len(tabTitles)))
		case "ctrl+r":
			if m.active == TabPortfolio && len(m.deps.Chart.Ranges) > 0 {
				m.rangeIdx = (m.rangeIdx + 1) % len(m.deps.Chart.Ranges)
			}
			return m, nil
		case "ctrl+f":
			if m.active == TabFraud && len(m.categories) > 0 {
				m.categoryIdx = (m.categoryIdx + 1) % len(m.categories)
			}
			return m, nil
		case "up", "down":
			if m.active == TabPortfolio {
				m.moveSelection(msg.String() == "down")
				return m, nil
			}
		case "enter":
			if m.active == TabAssistant {
				return m, m.submit()
			}
			return m, nil
		}
		return m, m.updateFocused(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case chatEventMsg:
		if !msg.ok {
			if !m.closed {
				m.status = "Session closed"
			}
			return m, nil
		}
		m.applyEvent(msg.event)
		return m, m.waitForEvent()
	}

	return m, m.updateFocused(msg)
}

func (m *Model) switchTab(tab Tab) tea.Cmd {
	m.active = tab
	m.portfolioSearch.Blur()
	m.chatInput.Blur()
	m.fraudSearch.Blur()
	return m.focused().Focus()
}

func (m *Model) focused() *textinput.Model {
	switch m.active {
	case TabAssistant:
		return &m.chatInput
	case TabFraud:
		return &m.fraudSearch
	default:
		return &m.portfolioSearch
	}
}

func (m *Model) updateFocused(msg tea.Msg) tea.Cmd {
	input := m.focused()
	var cmd tea.Cmd
	*input, cmd = input.Update(msg)
	return cmd
}

func (m *Model) submit() tea.Cmd {
	text := m.chatInput.Value()
	if strings.TrimSpace(text) == "" {
		return nil
	}

	_, accepted, err := m.deps.Chat.Submit(context.Background(), m.sessionID, text)
	if err != nil {
		m.status = err.Error()
		return nil
	}
	if !accepted {
		return nil
	}
	// the user message reaches the transcript through the subscription
	m.chatInput.Reset()
	m.pending = true
	return m.spinner.Tick
}

// visiblePositions returns the positions matching the current search.
func (m *Model) visiblePositions() []portfolio.Position {
	return filter.Filter(m.deps.Positions.List(), m.portfolioSearch.Value(), filter.All)
}

// moveSelection highlights the next or previous visible position.
func (m *Model) moveSelection(down bool) {
	visible := m.visiblePositions()
	if len(visible) == 0 {
		return
	}
	idx := slices.IndexFunc(visible, func(p portfolio.Position) bool { return p.Symbol == m.selected })
	switch {
	case idx < 0 && down:
		idx = 0
	case idx < 0:
		idx = len(visible) - 1
	case down:
		idx = min(idx+1, len(visible)-1)
	default:
		idx = max(idx-1, 0)
	}
	m.selected = visible[idx].Symbol
}

func (m *Model) applyEvent(ev chatmodel.StreamEvent) {
	switch ev.Type {
	case chatmodel.EventMessage:
		if ev.Message != nil {
			m.applyMessage(*ev.Message)
		}
		m.pending = ev.Pending
	case chatmodel.EventTyping:
		m.pending = ev.Pending
	case chatmodel.EventClosed:
		m.pending = false
		m.status = "Session closed"
	}
}

// applyMessage places msg by its sequence number; a repeated seq is ignored.
func (m *Model) applyMessage(msg chatmodel.Message) {
	i, found := slices.BinarySearchFunc(m.messages, msg.Seq, func(e chatmodel.Message, seq int) int {
		return cmp.Compare(e.Seq, seq)
	})
	if found {
		return
	}
	m.messages = slices.Insert(m.messages, i, msg)
}
