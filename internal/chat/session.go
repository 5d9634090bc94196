// Package chat ties the classifier, the conversational state, the local
// responders, the backend, and the edit/delete flows into one session that
// renderers drive with user input.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/finmate/internal/common"
	"github.com/Veraticus/finmate/internal/conversation"
	"github.com/Veraticus/finmate/internal/finmate"
	"github.com/Veraticus/finmate/internal/flow"
	"github.com/Veraticus/finmate/internal/intent"
	"github.com/Veraticus/finmate/internal/model"
	"github.com/Veraticus/finmate/internal/responder"
)

// AddExpensePrompt is what the "add expense" suggestion sends to the server.
const AddExpensePrompt = "Add an expense"

// Backend is the part of the FinMate server a session reads from and writes to.
type Backend interface {
	flow.Mutator
	ListExpenses(ctx context.Context, limit int) ([]model.Expense, error)
	Analyze(ctx context.Context) (model.Analysis, error)
	BudgetTips(ctx context.Context, useAI bool, category string) (model.BudgetTips, error)
	AddExpense(ctx context.Context, amount decimal.Decimal, category string, date time.Time) (string, error)
}

// Recorder stores the transcript.
type Recorder interface {
	SaveMessage(ctx context.Context, msg *model.Message) error
}

// Config assembles a Session.
type Config struct {
	Classifier *intent.Classifier
	Responder  *responder.Responder
	Dispatcher *finmate.Dispatcher
	Backend    Backend
	// Recorder is optional.
	Recorder     Recorder
	Currency     string
	ExpenseLimit int
	UseAITips    bool
}

// Session is one conversation. Classification and state changes happen
// under mu and finish before Submit returns; network work is handed back
// as tasks.
type Session struct {
	classifier *intent.Classifier
	responder  *responder.Responder
	dispatcher *finmate.Dispatcher
	backend    Backend
	recorder   Recorder
	state      *conversation.State
	flow       *flow.Controller
	currency   string
	limit      int
	useAI      bool
	mu         sync.Mutex
}

// NewSession validates cfg and returns an idle session.
func NewSession(cfg Config) (*Session, error) {
	switch {
	case cfg.Classifier == nil:
		return nil, fmt.Errorf("classifier is required")
	case cfg.Responder == nil:
		return nil, fmt.Errorf("responder is required")
	case cfg.Dispatcher == nil:
		return nil, fmt.Errorf("dispatcher is required")
	case cfg.Backend == nil:
		return nil, fmt.Errorf("backend is required")
	}

	limit := cfg.ExpenseLimit
	if limit <= 0 {
		limit = finmate.DefaultExpenseLimit
	}
	currency := cfg.Currency
	if currency == "" {
		currency = model.DefaultCurrency
	}

	return &Session{
		classifier: cfg.Classifier,
		responder:  cfg.Responder,
		dispatcher: cfg.Dispatcher,
		backend:    cfg.Backend,
		recorder:   cfg.Recorder,
		state:      conversation.New(),
		currency:   currency,
		limit:      limit,
		useAI:      cfg.UseAITips,
	}, nil
}

// Currency is the ISO code amounts are rendered in.
func (s *Session) Currency() string {
	return s.currency
}

// Snapshot returns the conversational state.
func (s *Session) Snapshot() conversation.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Snapshot()
}

// Flow returns the most recent edit or delete flow, or nil.
func (s *Session) Flow() *flow.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flow
}

// Welcome returns the greeting and the quick-action suggestions.
func (s *Session) Welcome(ctx context.Context) []Reply {
	actions := make([]Action, len(responder.DefaultSuggestions))
	for i, sg := range responder.DefaultSuggestions {
		actions[i] = Action{Key: sg.Action, Label: sg.Text}
	}

	replies := []Reply{
		text(s.responder.Welcome().Text),
		{Kind: KindSuggestions, Text: "Here are some things I can help you with:", Actions: actions},
	}
	s.recordReplies(ctx, replies)
	return replies
}

// Submit handles one typed message.
func (s *Session) Submit(ctx context.Context, input string) Outcome {
	message := strings.TrimSpace(input)
	if message == "" {
		return Outcome{}
	}
	s.record(ctx, model.RoleUser, message)

	s.mu.Lock()
	out := s.submitLocked(message)
	s.mu.Unlock()

	return s.finish(ctx, out)
}

func (s *Session) submitLocked(message string) Outcome {
	snapshot := s.state.Snapshot()
	decision := s.classifier.Classify(message, snapshot)

	if decision.IsSelection() {
		return s.selectLocked(decision.Selection.Index, false)
	}

	if decision.Abandoned {
		slog.Debug("selection abandoned",
			"mode", snapshot.Mode,
			"candidates", snapshot.Candidates)
		s.state.Cancel()
		if s.flow != nil {
			s.flow.Abandon()
		}
	}

	slog.Debug("message routed",
		"route", decision.Route.Kind,
		"rule", s.classifier.RuleName(message))
	return s.route(message, decision.Route)
}

func (s *Session) route(message string, route intent.Route) Outcome {
	if route.Kind.IsLocal() {
		resp, ok := s.responder.Respond(route)
		if ok {
			slog.Debug("answered locally",
				"route", route.Kind,
				"response", resp.Describe())
			return immediate(s.localReply(resp))
		}
	}

	switch route.Kind {
	case intent.ViewExpenses:
		return Outcome{Tasks: []Task{s.listTask()}}
	case intent.AnalyzeExpenses:
		return Outcome{Tasks: []Task{s.analyzeTask()}}
	case intent.BudgetTips:
		return Outcome{Tasks: []Task{s.tipsTask("")}}
	case intent.EditExpenses:
		return Outcome{Tasks: []Task{s.startFlowTask(conversation.OpEdit)}}
	case intent.DeleteExpenses:
		return Outcome{Tasks: []Task{s.startFlowTask(conversation.OpDelete)}}
	default:
		// ExpenseAddition and BackendFallback both go to the server verbatim.
		return Outcome{Tasks: []Task{s.dispatchTask(message)}}
	}
}

func (s *Session) localReply(resp responder.Response) Reply {
	if len(resp.Topics) == 0 {
		return Reply{Kind: KindText, Text: resp.Text, Markdown: resp.Markdown, Cue: true}
	}

	actions := make([]Action, len(resp.Topics))
	for i, topic := range resp.Topics {
		actions[i] = Action{Key: ActionTopic, Label: topic, Arg: topic}
	}
	return Reply{Kind: KindTopics, Text: resp.Text, Actions: actions, Cue: true}
}

// Invoke runs a follow-up action offered by an earlier reply.
func (s *Session) Invoke(ctx context.Context, action Action) Outcome {
	switch {
	case action.Key == ActionRetry:
		s.record(ctx, model.RoleUser, "Try again: "+action.Arg)
	case action.Label != "":
		s.record(ctx, model.RoleUser, action.Label)
	}

	var out Outcome
	switch action.Key {
	case ActionAddExpense:
		out = Outcome{Tasks: []Task{s.dispatchTask(AddExpensePrompt)}}
	case ActionViewExpenses:
		out = Outcome{Tasks: []Task{s.listTask()}}
	case ActionAnalyze:
		out = Outcome{Tasks: []Task{s.analyzeTask()}}
	case ActionBudgetTips:
		out = Outcome{Tasks: []Task{s.tipsTask("")}}
	case ActionCategoryTips:
		out = Outcome{Tasks: []Task{s.tipsTask(action.Arg)}}
	case ActionTopic:
		out = immediate(s.localReply(s.responder.Topic(action.Arg)))
	case ActionEditRecent:
		out = Outcome{Tasks: []Task{s.startFlowTask(conversation.OpEdit)}}
	case ActionDeleteRecent:
		out = Outcome{Tasks: []Task{s.startFlowTask(conversation.OpDelete)}}
	case ActionRetry:
		out = Outcome{Tasks: []Task{s.dispatchTask(action.Arg)}}
	case ActionPick:
		index, err := strconv.Atoi(action.Arg)
		if err != nil {
			out = immediate(failure("That isn't a valid selection."))
			break
		}
		s.mu.Lock()
		out = s.selectLocked(index, true)
		s.mu.Unlock()
	default:
		out = Outcome{Tasks: []Task{s.dispatchTask(action.Key)}}
	}

	return s.finish(ctx, out)
}

// StartFlow offers expenses for editing or deletion, replacing any flow in
// progress. A submission already in flight for the old flow is not cancelled.
func (s *Session) StartFlow(op conversation.Op, expenses []model.Expense) Reply {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startFlowLocked(op, expenses)
}

func (s *Session) startFlowLocked(op conversation.Op, expenses []model.Expense) Reply {
	if s.flow != nil && s.flow.State() == flow.Submitting {
		slog.Debug("flow superseded during submission",
			"flow", s.flow.ID(),
			"op", s.flow.Op())
	}

	s.state.StartFlow(op, expenses)
	s.flow = flow.New(s.backend, op)
	return selectionReply(op, expenses, s.currency)
}

func (s *Session) selectLocked(index int, pick bool) Outcome {
	snapshot := s.state.Snapshot()
	op := snapshot.Op()
	if op == 0 {
		return immediate(failure("That list is no longer active. Ask me to edit or delete an expense to start again."))
	}

	var (
		expense model.Expense
		err     error
	)
	if pick {
		expense, err = s.state.Pick(index)
	} else {
		expense, err = s.state.ResolveSelection(index)
	}

	ctrl := s.flow
	if ctrl == nil || ctrl.Op() != op || ctrl.State() != flow.SelectionPending {
		ctrl = flow.New(s.backend, op)
		s.flow = ctrl
	}

	if err != nil {
		ctrl.Abandon()
		return immediate(failure(fmt.Sprintf("Please pick a number between 1 and %d.", snapshot.Candidates)))
	}

	next, err := ctrl.Select(expense)
	if err != nil {
		return immediate(failure("Sorry, something went wrong. Please try again later."))
	}

	if next == flow.ConfirmPending {
		return immediate(Reply{
			Kind:    KindConfirmDelete,
			Text:    "Are you sure you want to permanently delete this expense?",
			Footer:  "This action cannot be undone.",
			Expense: &expense,
			Cue:     true,
		})
	}
	return immediate(Reply{
		Kind:    KindEditForm,
		Text:    "Edit Expense",
		Expense: &expense,
		Cue:     true,
	})
}

// SubmitEdit validates the edit form and, when it passes, saves it. An
// invalid form produces an immediate reply and no network call.
func (s *Session) SubmitEdit(ctx context.Context, input flow.EditInput) Outcome {
	ctrl := s.Flow()
	if ctrl == nil || ctrl.Op() != conversation.OpEdit || ctrl.State() != flow.FormActive {
		return immediate(failure("There's no expense being edited right now."))
	}

	if _, err := flow.Validate(input); err != nil {
		return s.finish(ctx, immediate(failure(flow.FailureMessage(conversation.OpEdit, err))))
	}

	return s.finish(ctx, Outcome{Tasks: []Task{func(ctx context.Context) []Reply {
		return s.submitted(conversation.OpEdit, ctrl.SubmitEdit(ctx, input))
	}}})
}

// ConfirmDelete deletes the expense awaiting confirmation.
func (s *Session) ConfirmDelete(ctx context.Context) Outcome {
	ctrl := s.Flow()
	if ctrl == nil || ctrl.Op() != conversation.OpDelete || ctrl.State() != flow.ConfirmPending {
		return immediate(failure("There's no expense waiting to be deleted."))
	}

	return s.finish(ctx, Outcome{Tasks: []Task{func(ctx context.Context) []Reply {
		return s.submitted(conversation.OpDelete, ctrl.ConfirmDelete(ctx))
	}}})
}

func (s *Session) submitted(op conversation.Op, err error) []Reply {
	if err != nil {
		return []Reply{failure(flow.FailureMessage(op, err))}
	}

	reply := text(flow.SuccessMessage(op))
	reply.Actions = []Action{{Key: ActionViewExpenses, Label: "View Updated Expenses"}}
	return []Reply{reply}
}

// CancelFlow backs out of the active form or confirmation.
func (s *Session) CancelFlow(ctx context.Context) Outcome {
	ctrl := s.Flow()
	if ctrl == nil {
		return immediate(failure("There's nothing to cancel."))
	}

	notice, err := ctrl.Cancel()
	if err != nil {
		return immediate(failure("There's nothing to cancel."))
	}
	return s.finish(ctx, immediate(text(notice)))
}

// AddExpense records an expense through the simplified three-step protocol.
func (s *Session) AddExpense(ctx context.Context, st finmate.Statement, date time.Time) Outcome {
	return s.finish(ctx, Outcome{Tasks: []Task{func(ctx context.Context) []Reply {
		reply, err := s.backend.AddExpense(ctx, st.Amount, st.Category, date)
		if err != nil {
			slog.Warn("simplified expense addition failed", "error", err)
			return []Reply{failure("Sorry, I couldn't add the expense. Please try again.")}
		}
		return []Reply{s.serverReply(reply)}
	}}})
}

func (s *Session) dispatchTask(message string) Task {
	return func(ctx context.Context) []Reply {
		reply, err := s.dispatcher.Dispatch(ctx, message)
		if err != nil {
			level := slog.LevelWarn
			if !common.IsRecoverable(err) {
				level = slog.LevelError
			}
			slog.Log(ctx, level, "chat message failed",
				"error", err,
				"recoverable", common.IsRecoverable(err))
			r := failure(finmate.FailureMessage(err))
			r.Actions = []Action{{Key: ActionRetry, Label: "Try Again", Arg: message}}
			return []Reply{r}
		}
		return []Reply{s.serverReply(reply)}
	}
}

func (s *Session) serverReply(reply string) Reply {
	formatted, added := formatAddition(reply)
	r := text(formatted)
	if added {
		r.Actions = []Action{{Key: ActionViewExpenses, Label: "View All Expenses"}}
	}
	return r
}

func (s *Session) listTask() Task {
	return func(ctx context.Context) []Reply {
		expenses, err := s.backend.ListExpenses(ctx, s.limit)
		if err != nil && !isRejected(err) {
			slog.Warn("failed to list expenses", "error", err)
			return []Reply{failure("Sorry, I couldn't retrieve your recent expenses. Please try again later.")}
		}
		if len(expenses) == 0 {
			return []Reply{text("You don't have any expenses yet. Would you like to add one?")}
		}
		return []Reply{expensesReply(expenses)}
	}
}

func (s *Session) startFlowTask(op conversation.Op) Task {
	purpose := "editing"
	if op == conversation.OpDelete {
		purpose = "deletion"
	}

	return func(ctx context.Context) []Reply {
		expenses, err := s.backend.ListExpenses(ctx, s.limit)
		if err != nil && !isRejected(err) {
			slog.Warn("failed to list expenses for flow", "op", op, "error", err)
			return []Reply{failure(fmt.Sprintf("Sorry, I couldn't retrieve your expenses for %s. Please try again later.", purpose))}
		}
		if len(expenses) == 0 {
			if op == conversation.OpDelete {
				return []Reply{text("You don't have any recent expenses to delete.")}
			}
			return []Reply{text("You don't have any recent expenses to edit. Would you like to add a new expense?")}
		}
		return []Reply{s.StartFlow(op, expenses)}
	}
}

func (s *Session) analyzeTask() Task {
	return func(ctx context.Context) []Reply {
		analysis, err := s.backend.Analyze(ctx)
		if isRejected(err) {
			return []Reply{failure("Sorry, I couldn't analyze your expenses at the moment. Please try again later.")}
		}
		if err != nil {
			slog.Warn("failed to analyze expenses", "error", err)
			return []Reply{failure("Sorry, there was an error analyzing your expenses. Please try again later.")}
		}
		return []Reply{analysisReply(analysis, s.currency)}
	}
}

func (s *Session) tipsTask(category string) Task {
	category = strings.ToLower(strings.TrimSpace(category))

	return func(ctx context.Context) []Reply {
		tips, err := s.backend.BudgetTips(ctx, s.useAI, category)
		switch {
		case isRejected(err) && category == "":
			return []Reply{failure("Sorry, I couldn't retrieve budget tips at the moment. Please try again later.")}
		case isRejected(err):
			return []Reply{failure("Sorry, I couldn't retrieve tips for that category. Please try again later.")}
		case err != nil && category == "":
			slog.Warn("failed to get budget tips", "error", err)
			return []Reply{failure("Sorry, there was an error retrieving budget tips. Please try again later.")}
		case err != nil:
			slog.Warn("failed to get category tips", "category", category, "error", err)
			return []Reply{failure("Sorry, there was an error retrieving tips. Please try again later.")}
		}
		return []Reply{tipsReply(tips, category)}
	}
}

// finish records immediate replies and wraps tasks so that their replies
// are recorded when they complete.
func (s *Session) finish(ctx context.Context, out Outcome) Outcome {
	s.recordReplies(ctx, out.Replies)
	for i, task := range out.Tasks {
		out.Tasks[i] = func(ctx context.Context) []Reply {
			replies := task(ctx)
			s.recordReplies(ctx, replies)
			return replies
		}
	}
	return out
}

func (s *Session) recordReplies(ctx context.Context, replies []Reply) {
	for _, r := range replies {
		if r.Text != "" {
			s.record(ctx, model.RoleBot, r.Text)
		}
	}
}

func (s *Session) record(ctx context.Context, role model.Role, text string) {
	if s.recorder == nil {
		return
	}
	msg := model.NewMessage(role, text)
	if err := s.recorder.SaveMessage(context.WithoutCancel(ctx), &msg); err != nil {
		slog.Warn("failed to record message", "role", role, "error", err)
	}
}

func isRejected(err error) bool {
	var rejected *finmate.RejectedError
	return errors.As(err, &rejected)
}
