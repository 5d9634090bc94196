package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/finmate/internal/common"
	"github.com/Veraticus/finmate/internal/conversation"
	"github.com/Veraticus/finmate/internal/finmate"
	"github.com/Veraticus/finmate/internal/flow"
	"github.com/Veraticus/finmate/internal/intent"
	"github.com/Veraticus/finmate/internal/knowledge"
	"github.com/Veraticus/finmate/internal/model"
	"github.com/Veraticus/finmate/internal/responder"
)

type fakeBackend struct {
	chatErr     error
	listErr     error
	updateErr   error
	analysis    model.Analysis
	updates     map[model.ExpenseID]model.ExpenseUpdate
	chatReply   string
	chats       []string
	expenses    []model.Expense
	deleted     []model.ExpenseID
	tipCategory []string
	network     int
	mu          sync.Mutex
}

func (f *fakeBackend) hit() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.network++
}

func (f *fakeBackend) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.network
}

func (f *fakeBackend) Chat(_ context.Context, input string) (string, error) {
	f.hit()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chats = append(f.chats, input)
	if f.chatErr != nil {
		return "", f.chatErr
	}
	if f.chatReply == "" {
		return "ok", nil
	}
	return f.chatReply, nil
}

func (f *fakeBackend) ListExpenses(_ context.Context, limit int) ([]model.Expense, error) {
	f.hit()
	if f.listErr != nil {
		return nil, f.listErr
	}
	if limit < len(f.expenses) {
		return f.expenses[:limit], nil
	}
	return f.expenses, nil
}

func (f *fakeBackend) Analyze(context.Context) (model.Analysis, error) {
	f.hit()
	return f.analysis, nil
}

func (f *fakeBackend) BudgetTips(_ context.Context, _ bool, category string) (model.BudgetTips, error) {
	f.hit()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tipCategory = append(f.tipCategory, category)
	if category != "" {
		return model.BudgetTips{Category: category, Tips: []string{"Cook at home"}}, nil
	}
	return model.BudgetTips{GeneralTips: []string{"Track every expense", "Automate savings"}}, nil
}

func (f *fakeBackend) AddExpense(ctx context.Context, amount decimal.Decimal, category string, date time.Time) (string, error) {
	for _, input := range []string{amount.String(), category, date.Format(model.DateLayout)} {
		if _, err := f.Chat(ctx, input); err != nil {
			return "", err
		}
	}
	return f.chatReply, nil
}

func (f *fakeBackend) UpdateExpense(_ context.Context, id model.ExpenseID, update model.ExpenseUpdate) error {
	f.hit()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updates == nil {
		f.updates = make(map[model.ExpenseID]model.ExpenseUpdate)
	}
	f.updates[id] = update
	return nil
}

func (f *fakeBackend) DeleteExpense(_ context.Context, id model.ExpenseID) error {
	f.hit()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

type memoryRecorder struct {
	messages []model.Message
	mu       sync.Mutex
}

func (m *memoryRecorder) SaveMessage(_ context.Context, msg *model.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, *msg)
	return nil
}

var recent = []model.Expense{
	{ID: "1", Amount: decimal.NewFromInt(500), Category: "Food", Date: "01-03-2025"},
	{ID: "2", Amount: decimal.NewFromInt(120), Category: "Transport", Date: "02-03-2025"},
}

func newTestSession(t *testing.T, backend *fakeBackend, recorder Recorder) *Session {
	t.Helper()

	kb, err := knowledge.Default()
	require.NoError(t, err)
	classifier, err := intent.NewClassifier(kb)
	require.NoError(t, err)

	s, err := NewSession(Config{
		Classifier: classifier,
		Responder:  responder.New(kb),
		Dispatcher: finmate.NewDispatcher(backend, time.Second),
		Backend:    backend,
		Recorder:   recorder,
	})
	require.NoError(t, err)
	return s
}

func runAll(t *testing.T, out Outcome) []Reply {
	t.Helper()
	replies := append([]Reply(nil), out.Replies...)
	for _, task := range out.Tasks {
		replies = append(replies, task(context.Background())...)
	}
	return replies
}

func TestNewSessionRequiresCollaborators(t *testing.T) {
	_, err := NewSession(Config{})
	require.Error(t, err)
}

func TestWelcome(t *testing.T) {
	s := newTestSession(t, &fakeBackend{}, nil)

	replies := s.Welcome(context.Background())
	require.Len(t, replies, 2)
	assert.Equal(t, responder.WelcomeText, replies[0].Text)
	assert.Equal(t, KindSuggestions, replies[1].Kind)
	require.Len(t, replies[1].Actions, 4)
	assert.Equal(t, ActionAddExpense, replies[1].Actions[0].Key)
}

func TestHelpMakesNoNetworkCall(t *testing.T) {
	backend := &fakeBackend{}
	s := newTestSession(t, backend, nil)

	out := s.Submit(context.Background(), "help")
	assert.False(t, out.Pending())
	require.Len(t, out.Replies, 1)
	assert.Equal(t, responder.HelpText, out.Replies[0].Text)
	assert.True(t, out.Replies[0].Cue)
	assert.Zero(t, backend.calls())
}

func TestLocalRoutes(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "hello there", want: responder.GreetingText},
		{input: "who are you", want: responder.IdentityText},
		{input: "thanks a lot", want: responder.GratitudeText},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			backend := &fakeBackend{}
			s := newTestSession(t, backend, nil)

			out := s.Submit(context.Background(), tt.input)
			require.Len(t, out.Replies, 1)
			assert.Equal(t, tt.want, out.Replies[0].Text)
			assert.Zero(t, backend.calls())
		})
	}
}

func TestKnowledgeQuestionAnsweredLocally(t *testing.T) {
	backend := &fakeBackend{}
	s := newTestSession(t, backend, nil)

	out := s.Submit(context.Background(), "How much money should I keep in an emergency fund?")
	require.Len(t, out.Replies, 1)
	assert.Contains(t, out.Replies[0].Text, "3-6 months")
	assert.Zero(t, backend.calls())
}

func TestExpenseAdditionSentVerbatim(t *testing.T) {
	backend := &fakeBackend{chatReply: "Expense added successfully! ₹500 for Food on 01-03-2025"}
	s := newTestSession(t, backend, nil)

	out := s.Submit(context.Background(), "I spent 500 on food")
	assert.Empty(t, out.Replies)
	require.Len(t, out.Tasks, 1)

	replies := runAll(t, out)
	assert.Equal(t, []string{"I spent 500 on food"}, backend.chats)
	require.Len(t, replies, 1)
	assert.Equal(t, "✅ Expense added successfully!\n₹500 for Food on 01-03-2025", replies[0].Text)
	require.Len(t, replies[0].Actions, 1)
	assert.Equal(t, ActionViewExpenses, replies[0].Actions[0].Key)
}

func TestUnknownMessageFallsBackToServer(t *testing.T) {
	backend := &fakeBackend{chatReply: "Sure, tell me more."}
	s := newTestSession(t, backend, nil)

	replies := runAll(t, s.Submit(context.Background(), "bonjour"))
	require.Len(t, replies, 1)
	assert.Equal(t, "Sure, tell me more.", replies[0].Text)
	assert.Equal(t, []string{"bonjour"}, backend.chats)
}

func TestDispatchFailureLogLevel(t *testing.T) {
	tests := []struct {
		err       error
		name      string
		wantLevel string
		wantRetry bool
	}{
		{name: "network", err: errors.New("connection refused"), wantLevel: "WARN", wantRetry: true},
		{name: "server unavailable", err: &common.ServerError{Status: 503}, wantLevel: "WARN", wantRetry: true},
		{name: "not found", err: &common.ServerError{Status: 404}, wantLevel: "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			previous := slog.Default()
			slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
			t.Cleanup(func() { slog.SetDefault(previous) })

			s := newTestSession(t, &fakeBackend{chatErr: tt.err}, nil)
			runAll(t, s.Submit(context.Background(), "spent 40 on chai"))

			var found bool
			for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
				var entry map[string]any
				require.NoError(t, json.Unmarshal([]byte(line), &entry))
				if entry["msg"] != "chat message failed" {
					continue
				}
				found = true
				assert.Equal(t, tt.wantLevel, entry["level"])
				assert.Equal(t, tt.wantRetry, entry["recoverable"])
			}
			assert.True(t, found, "no failure log in %s", buf.String())
		})
	}
}

func TestDispatchFailureOffersRetry(t *testing.T) {
	backend := &fakeBackend{chatErr: errors.New("connection refused")}
	s := newTestSession(t, backend, nil)

	replies := runAll(t, s.Submit(context.Background(), "spent 40 on chai"))
	require.Len(t, replies, 1)
	assert.Equal(t, KindError, replies[0].Kind)
	assert.Equal(t, finmate.FailureMessage(common.ErrNetwork), replies[0].Text)
	require.Len(t, replies[0].Actions, 1)
	retry := replies[0].Actions[0]
	assert.Equal(t, Action{Key: ActionRetry, Label: "Try Again", Arg: "spent 40 on chai"}, retry)

	backend.chatErr = nil
	backend.chatReply = "Noted"
	replies = runAll(t, s.Invoke(context.Background(), retry))
	require.Len(t, replies, 1)
	assert.Equal(t, "Noted", replies[0].Text)
	assert.Equal(t, []string{"spent 40 on chai", "spent 40 on chai"}, backend.chats)
}

func TestViewExpenses(t *testing.T) {
	s := newTestSession(t, &fakeBackend{expenses: recent}, nil)

	replies := runAll(t, s.Submit(context.Background(), "show my expenses"))
	require.Len(t, replies, 1)
	assert.Equal(t, KindExpenses, replies[0].Kind)
	assert.Equal(t, recent, replies[0].Expenses)
}

func TestViewExpensesEmpty(t *testing.T) {
	tests := []struct {
		backend *fakeBackend
		name    string
		want    string
	}{
		{name: "no expenses", backend: &fakeBackend{}, want: "You don't have any expenses yet. Would you like to add one?"},
		{name: "rejected", backend: &fakeBackend{listErr: &finmate.RejectedError{}}, want: "You don't have any expenses yet. Would you like to add one?"},
		{name: "network", backend: &fakeBackend{listErr: common.ErrNetwork}, want: "Sorry, I couldn't retrieve your recent expenses. Please try again later."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t, tt.backend, nil)
			replies := runAll(t, s.Submit(context.Background(), "list expenses"))
			require.Len(t, replies, 1)
			assert.Equal(t, tt.want, replies[0].Text)
		})
	}
}

func TestEditFlowEndToEnd(t *testing.T) {
	backend := &fakeBackend{expenses: recent}
	s := newTestSession(t, backend, nil)
	ctx := context.Background()

	out := s.Submit(ctx, "I want to edit my expense")
	require.Len(t, out.Tasks, 1)
	assert.Equal(t, conversation.ModeIdle, s.Snapshot().Mode, "flow starts once the list arrives")

	replies := runAll(t, out)
	require.Len(t, replies, 1)
	assert.Equal(t, KindSelection, replies[0].Kind)
	assert.Equal(t, "Select an expense to edit:", replies[0].Text)
	assert.Len(t, replies[0].Actions, 2)
	assert.Equal(t, conversation.Snapshot{Mode: conversation.ModeAwaitingEdit, Candidates: 2}, s.Snapshot())

	out = s.Submit(ctx, "2")
	require.Len(t, out.Replies, 1)
	assert.Equal(t, KindEditForm, out.Replies[0].Kind)
	assert.Equal(t, recent[1], *out.Replies[0].Expense)
	assert.Equal(t, conversation.ModeIdle, s.Snapshot().Mode)
	assert.Equal(t, flow.FormActive, s.Flow().State())

	calls := backend.calls()
	out = s.SubmitEdit(ctx, flow.EditInput{Amount: "-5", Category: "Food", Date: "01-03-2025"})
	assert.False(t, out.Pending())
	require.Len(t, out.Replies, 1)
	assert.Equal(t, flow.AmountMessage, out.Replies[0].Text)
	assert.Equal(t, calls, backend.calls(), "validation failure must not reach the network")

	in := flow.InputFrom(recent[1])
	in.Amount = "150"
	replies = runAll(t, s.SubmitEdit(ctx, in))
	require.Len(t, replies, 1)
	assert.Equal(t, "✅ Expense updated successfully!", replies[0].Text)
	assert.Equal(t, ActionViewExpenses, replies[0].Actions[0].Key)
	assert.True(t, decimal.NewFromInt(150).Equal(backend.updates["2"].Amount))
	assert.Equal(t, flow.Success, s.Flow().State())
}

func TestEditFailureKeepsFormActive(t *testing.T) {
	backend := &fakeBackend{expenses: recent, updateErr: &finmate.RejectedError{Message: "Expense not found"}}
	s := newTestSession(t, backend, nil)
	ctx := context.Background()

	s.StartFlow(conversation.OpEdit, recent)
	s.Submit(ctx, "1")

	replies := runAll(t, s.SubmitEdit(ctx, flow.InputFrom(recent[0])))
	require.Len(t, replies, 1)
	assert.Equal(t, "❌ Failed to update expense: Expense not found", replies[0].Text)
	assert.Equal(t, flow.FormActive, s.Flow().State())

	out := s.CancelFlow(ctx)
	require.Len(t, out.Replies, 1)
	assert.Equal(t, "Edit cancelled. Is there anything else you'd like to do?", out.Replies[0].Text)
}

func TestDeleteFlow(t *testing.T) {
	backend := &fakeBackend{expenses: recent}
	s := newTestSession(t, backend, nil)
	ctx := context.Background()

	replies := runAll(t, s.Submit(ctx, "delete an expense"))
	require.Len(t, replies, 1)
	assert.Equal(t, "Select an expense to delete:", replies[0].Text)

	out := s.Invoke(ctx, replies[0].Actions[0])
	require.Len(t, out.Replies, 1)
	assert.Equal(t, KindConfirmDelete, out.Replies[0].Kind)
	assert.Equal(t, conversation.ModeIdle, s.Snapshot().Mode)

	replies = runAll(t, s.ConfirmDelete(ctx))
	require.Len(t, replies, 1)
	assert.Equal(t, "✅ Expense deleted successfully!", replies[0].Text)
	assert.Equal(t, []model.ExpenseID{"1"}, backend.deleted)
}

func TestFlowWithNoExpenses(t *testing.T) {
	s := newTestSession(t, &fakeBackend{}, nil)

	replies := runAll(t, s.Submit(context.Background(), "update a transaction"))
	require.Len(t, replies, 1)
	assert.Equal(t, "You don't have any recent expenses to edit. Would you like to add a new expense?", replies[0].Text)

	replies = runAll(t, s.Submit(context.Background(), "remove an entry"))
	require.Len(t, replies, 1)
	assert.Equal(t, "You don't have any recent expenses to delete.", replies[0].Text)
	assert.Equal(t, conversation.ModeIdle, s.Snapshot().Mode)
}

func TestStartFlowSupersedes(t *testing.T) {
	other := []model.Expense{{ID: "9", Amount: decimal.NewFromInt(70), Category: "Bills", Date: "05-03-2025"}}
	s := newTestSession(t, &fakeBackend{}, nil)

	s.StartFlow(conversation.OpEdit, recent)
	s.StartFlow(conversation.OpDelete, other)
	assert.Equal(t, conversation.Snapshot{Mode: conversation.ModeAwaitingDelete, Candidates: 1}, s.Snapshot())

	out := s.Submit(context.Background(), "1")
	require.Len(t, out.Replies, 1)
	assert.Equal(t, KindConfirmDelete, out.Replies[0].Kind)
	assert.Equal(t, other[0], *out.Replies[0].Expense)
}

func TestOutOfRangeSelectionFallsThrough(t *testing.T) {
	backend := &fakeBackend{}
	s := newTestSession(t, backend, nil)
	s.StartFlow(conversation.OpEdit, recent)

	out := s.Submit(context.Background(), "6")
	assert.Equal(t, conversation.ModeIdle, s.Snapshot().Mode)
	assert.Equal(t, flow.Cancelled, s.Flow().State())

	// A bare number is an expense amount once no flow is waiting.
	runAll(t, out)
	assert.Equal(t, []string{"6"}, backend.chats)
}

func TestUnrelatedMessageAbandonsSelection(t *testing.T) {
	s := newTestSession(t, &fakeBackend{}, nil)
	s.StartFlow(conversation.OpDelete, recent)

	out := s.Submit(context.Background(), "thank you")
	require.Len(t, out.Replies, 1)
	assert.Equal(t, responder.GratitudeText, out.Replies[0].Text)
	assert.Equal(t, conversation.ModeIdle, s.Snapshot().Mode)

	stale := s.Invoke(context.Background(), Action{Key: ActionPick, Arg: "1"})
	require.Len(t, stale.Replies, 1)
	assert.Equal(t, KindError, stale.Replies[0].Kind)
}

func TestAnalyze(t *testing.T) {
	backend := &fakeBackend{analysis: model.Analysis{
		CurrentMonthTotal: 1250,
		LastMonthTotal:    1000,
		PercentChange:     25,
		Categories:        map[string]float64{"Food": 1000, "Bills": 250},
		HighestCategory:   model.CategoryShare{Name: "Food", Percentage: 80},
		MostFrequent:      model.CategoryCount{Name: "Food", Count: 12},
	}}
	s := newTestSession(t, backend, nil)

	replies := runAll(t, s.Submit(context.Background(), "analyze my spending"))
	require.Len(t, replies, 1)
	assert.Equal(t, KindAnalysis, replies[0].Kind)
	assert.True(t, replies[0].Markdown)
	assert.Contains(t, replies[0].Text, "Consider reducing Food expenses")
	assert.Contains(t, replies[0].Text, "Food (12 transactions)")
}

func TestBudgetTipsAndCategoryFollowUp(t *testing.T) {
	backend := &fakeBackend{}
	s := newTestSession(t, backend, nil)
	ctx := context.Background()

	replies := runAll(t, s.Submit(ctx, "any budget advice?"))
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "1. Track every expense")
	require.Len(t, replies[0].Actions, 3)

	replies = runAll(t, s.Invoke(ctx, replies[0].Actions[0]))
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "**Tips for Food**")
	assert.Equal(t, []string{"", "food"}, backend.tipCategory)
}

func TestTopicBrowse(t *testing.T) {
	backend := &fakeBackend{}
	s := newTestSession(t, backend, nil)
	ctx := context.Background()

	out := s.Submit(ctx, "what can you talk about")
	require.Len(t, out.Replies, 1)
	assert.Equal(t, KindTopics, out.Replies[0].Kind)
	require.NotEmpty(t, out.Replies[0].Actions)

	out = s.Invoke(ctx, out.Replies[0].Actions[0])
	require.Len(t, out.Replies, 1)
	assert.True(t, out.Replies[0].Markdown)
	assert.Zero(t, backend.calls())
}

func TestAddExpenseSimplified(t *testing.T) {
	backend := &fakeBackend{chatReply: "Expense added successfully! ₹250 for Food"}
	s := newTestSession(t, backend, nil)

	st, ok := finmate.ParseExpenseStatement("spent 250 on groceries")
	require.True(t, ok)

	date := time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC)
	replies := runAll(t, s.AddExpense(context.Background(), st, date))
	require.Len(t, replies, 1)
	assert.True(t, strings.HasPrefix(replies[0].Text, "✅ Expense added successfully!"))
	assert.Equal(t, []string{"250", "Food", "09-03-2025"}, backend.chats)
}

func TestTranscriptRecorded(t *testing.T) {
	recorder := &memoryRecorder{}
	s := newTestSession(t, &fakeBackend{chatReply: "Got it"}, recorder)

	s.Submit(context.Background(), "help")
	runAll(t, s.Submit(context.Background(), "paid 30 for tea"))

	require.Len(t, recorder.messages, 4)
	assert.Equal(t, model.RoleUser, recorder.messages[0].Role)
	assert.Equal(t, "help", recorder.messages[0].Text)
	assert.Equal(t, model.RoleBot, recorder.messages[1].Role)
	assert.Equal(t, "Got it", recorder.messages[3].Text)
}

func TestEmptyInputIgnored(t *testing.T) {
	backend := &fakeBackend{}
	s := newTestSession(t, backend, nil)

	out := s.Submit(context.Background(), "   ")
	assert.Empty(t, out.Replies)
	assert.False(t, out.Pending())
}
