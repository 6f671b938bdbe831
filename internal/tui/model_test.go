package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zhouzirui/portfolio-desk/backend/internal/dataset"
	chatmodel "github.com/zhouzirui/portfolio-desk/backend/internal/model/chat"
	"github.com/zhouzirui/portfolio-desk/backend/internal/service/chat"
)

func newTestModel(t *testing.T, delay time.Duration) (*Model, *chat.Service) {
	t.Helper()
	ds, err := dataset.Default()
	if err != nil {
		t.Fatalf("dataset err: %v", err)
	}
	svc := chat.NewService(chat.Config{
		Greeting:   ds.Greeting,
		Responses:  ds.Responses,
		ReplyDelay: delay,
	})
	t.Cleanup(svc.Shutdown)

	m, err := New(context.Background(), Deps{
		Positions: ds.PortfolioStore(),
		Chart:     ds.Chart,
		Sites:     ds.FraudStore(),
		Chat:      svc,
	})
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	return m, svc
}

func press(m *Model, key tea.KeyMsg) *Model {
	next, _ := m.Update(key)
	return next.(*Model)
}

func typeText(m *Model, text string) *Model {
	return press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func TestTabNavigation(t *testing.T) {
	m, _ := newTestModel(t, time.Hour)

	if m.active != TabPortfolio {
		t.Fatalf("expected portfolio tab first, got %v", m.active)
	}
	m = press(m, tea.KeyMsg{Type: tea.KeyTab})
	if m.active != TabAssistant || !m.chatInput.Focused() {
		t.Fatalf("expected focused assistant tab, got %v", m.active)
	}
	m = press(m, tea.KeyMsg{Type: tea.KeyTab})
	m = press(m, tea.KeyMsg{Type: tea.KeyTab})
	if m.active != TabPortfolio {
		t.Fatalf("expected wrap to portfolio, got %v", m.active)
	}
	m = press(m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.active != TabFraud || !m.fraudSearch.Focused() {
		t.Fatalf("expected fraud tab, got %v", m.active)
	}
}

func TestPortfolioSearch(t *testing.T) {
	m, _ := newTestModel(t, time.Hour)

	m = typeText(m, "tsla")
	view := m.View()
	if !strings.Contains(view, "Tesla") || strings.Contains(view, "Apple") {
		t.Fatalf("expected only Tesla in view:\n%s", view)
	}

	m = typeText(m, "zzz")
	if !strings.Contains(m.View(), emptyPositions) {
		t.Fatalf("expected empty-state message")
	}
}

func TestFraudCategoryCycle(t *testing.T) {
	m, _ := newTestModel(t, time.Hour)
	m = press(m, tea.KeyMsg{Type: tea.KeyShiftTab})

	if got := m.selectedCategory().Value; got != "all" {
		t.Fatalf("expected all categories, got %s", got)
	}
	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlF})
	if got := m.selectedCategory().Value; got != "crypto" {
		t.Fatalf("expected crypto, got %s", got)
	}
	view := m.View()
	if !strings.Contains(view, "CryptoDoubleX") || strings.Contains(view, "ForexElitePro") {
		t.Fatalf("unexpected fraud listing:\n%s", view)
	}

	for i := 0; i < len(m.categories)-1; i++ {
		m = press(m, tea.KeyMsg{Type: tea.KeyCtrlF})
	}
	if got := m.selectedCategory().Value; got != "all" {
		t.Fatalf("expected cycle back to all, got %s", got)
	}
}

func TestChartRangeCycle(t *testing.T) {
	m, _ := newTestModel(t, time.Hour)
	start := m.deps.Chart.Ranges[m.rangeIdx].Value
	if start != "1y" {
		t.Fatalf("expected default range 1y, got %s", start)
	}
	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlR})
	if m.deps.Chart.Ranges[m.rangeIdx].Value == start {
		t.Fatalf("expected range to change")
	}
}

func TestChatSubmitShowsTyping(t *testing.T) {
	m, _ := newTestModel(t, time.Hour)
	if len(m.messages) != 1 || m.messages[0].Sender != chatmodel.SenderBot {
		t.Fatalf("expected greeting first, got %+v", m.messages)
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyTab})
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.pending {
		t.Fatal("blank submit should be ignored")
	}

	m = typeText(m, "How is my portfolio?")
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.pending || !strings.Contains(m.View(), "typing...") {
		t.Fatalf("expected typing indicator")
	}
	if m.chatInput.Value() != "" {
		t.Fatalf("expected input cleared, got %q", m.chatInput.Value())
	}

	event := m.waitForEvent()()
	next, _ := m.Update(event)
	m = next.(*Model)
	if len(m.messages) != 2 || m.messages[1].Content != "How is my portfolio?" {
		t.Fatalf("expected user message from subscription, got %+v", m.messages)
	}

	// a repeated event must not duplicate the message
	next, _ = m.Update(event)
	m = next.(*Model)
	if len(m.messages) != 2 {
		t.Fatalf("expected deduplicated transcript, got %d messages", len(m.messages))
	}
}

// drainUntil feeds subscription events into the model until done holds.
func drainUntil(t *testing.T, m *Model, done func(*Model) bool) *Model {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !done(m) {
		msgCh := make(chan tea.Msg, 1)
		go func() { msgCh <- m.waitForEvent()() }()
		select {
		case msg := <-msgCh:
			next, _ := m.Update(msg)
			m = next.(*Model)
		case <-deadline:
			t.Fatalf("timed out, messages=%d pending=%v", len(m.messages), m.pending)
		}
	}
	return m
}

func TestChatSubmitWhileReplyQueued(t *testing.T) {
	m, svc := newTestModel(t, 10*time.Millisecond)
	ctx := context.Background()
	m = press(m, tea.KeyMsg{Type: tea.KeyTab})

	m = typeText(m, "first")
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})

	// the reply lands in the service while its event is still queued for the UI
	deadline := time.Now().Add(2 * time.Second)
	for {
		snap, err := svc.Snapshot(ctx, m.SessionID())
		if err != nil {
			t.Fatalf("snapshot err: %v", err)
		}
		if len(snap.Messages) == 3 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("reply never landed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	m = typeText(m, "second")
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})

	m = drainUntil(t, m, func(m *Model) bool { return len(m.messages) == 5 && !m.pending })

	want := []struct {
		sender  chatmodel.Sender
		content string
	}{
		{chatmodel.SenderBot, ""},
		{chatmodel.SenderUser, "first"},
		{chatmodel.SenderBot, ""},
		{chatmodel.SenderUser, "second"},
		{chatmodel.SenderBot, ""},
	}
	for i, w := range want {
		got := m.messages[i]
		if got.Seq != i || got.Sender != w.sender {
			t.Fatalf("message %d: got seq=%d sender=%s", i, got.Seq, got.Sender)
		}
		if w.content != "" && got.Content != w.content {
			t.Fatalf("message %d: got %q", i, got.Content)
		}
	}
}

func TestChatReplyClearsTyping(t *testing.T) {
	m, _ := newTestModel(t, 10*time.Millisecond)
	m = press(m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(m, "hello")
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})

	m = drainUntil(t, m, func(m *Model) bool { return len(m.messages) == 3 && !m.pending })
	if m.messages[2].Sender != chatmodel.SenderBot {
		t.Fatalf("expected bot reply, got %+v", m.messages[2])
	}
}

func TestQuitDisposesSession(t *testing.T) {
	m, svc := newTestModel(t, time.Hour)
	m = press(m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(m, "hello")
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
	_, err := svc.Snapshot(context.Background(), m.SessionID())
	if !errors.Is(err, chat.ErrSessionClosed) {
		t.Fatalf("expected closed session, got %v", err)
	}

	// closing twice is harmless
	m.Close()
}

func TestPortfolioSelection(t *testing.T) {
	m, _ := newTestModel(t, time.Hour)
	if m.selected != "" {
		t.Fatalf("expected no selection, got %s", m.selected)
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyDown})
	m = press(m, tea.KeyMsg{Type: tea.KeyDown})
	if m.selected != "MSFT" {
		t.Fatalf("expected MSFT selected, got %s", m.selected)
	}
	m = press(m, tea.KeyMsg{Type: tea.KeyUp})
	m = press(m, tea.KeyMsg{Type: tea.KeyUp})
	if m.selected != "AAPL" {
		t.Fatalf("expected selection to stop at AAPL, got %s", m.selected)
	}
	if !strings.Contains(m.View(), "▸ AAPL") {
		t.Fatalf("expected highlighted row:\n%s", m.View())
	}

	// selection moves within the filtered list only
	m = typeText(m, "corp")
	m = press(m, tea.KeyMsg{Type: tea.KeyDown})
	if m.selected != "MSFT" {
		t.Fatalf("expected first filtered match, got %s", m.selected)
	}
	m = press(m, tea.KeyMsg{Type: tea.KeyDown})
	m = press(m, tea.KeyMsg{Type: tea.KeyDown})
	if m.selected != "NVDA" {
		t.Fatalf("expected last filtered match, got %s", m.selected)
	}
}

func TestFormatMoney(t *testing.T) {
	cases := map[float64]string{
		124568.94: "124,568.94",
		1645:      "1,645.00",
		-2500.5:   "-2,500.50",
		12.3:      "12.30",
	}
	for in, want := range cases {
		if got := formatMoney(in); got != want {
			t.Fatalf("formatMoney(%v) = %q, want %q", in, got, want)
		}
	}
}
