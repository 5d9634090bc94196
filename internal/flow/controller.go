// Package flow drives the edit and delete conversations for a single
// expense, from selection through form or confirmation to submission.
package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/Veraticus/finmate/internal/common"
	"github.com/Veraticus/finmate/internal/conversation"
	"github.com/Veraticus/finmate/internal/finmate"
	"github.com/Veraticus/finmate/internal/model"
)

// State is a step of a flow.
type State int

// Flow states.
const (
	SelectionPending State = iota
	FormActive
	ConfirmPending
	Submitting
	Success
	Cancelled
)

func (s State) String() string {
	switch s {
	case SelectionPending:
		return "selection-pending"
	case FormActive:
		return "form-active"
	case ConfirmPending:
		return "confirm-pending"
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether the flow is over.
func (s State) Terminal() bool {
	return s == Success || s == Cancelled
}

// Mutator is the part of the backend a flow writes to.
type Mutator interface {
	UpdateExpense(ctx context.Context, id model.ExpenseID, update model.ExpenseUpdate) error
	DeleteExpense(ctx context.Context, id model.ExpenseID) error
}

// Controller is one edit or delete flow.
type Controller struct {
	mutator Mutator
	id      string
	expense model.Expense
	mu      sync.Mutex
	op      conversation.Op
	state   State
}

// New starts a flow waiting for the user to pick an expense.
func New(mutator Mutator, op conversation.Op) *Controller {
	return &Controller{
		mutator: mutator,
		op:      op,
		state:   SelectionPending,
		id:      uuid.NewString()[:8],
	}
}

// ID identifies the flow in logs.
func (c *Controller) ID() string {
	return c.id
}

// Op is the operation this flow performs.
func (c *Controller) Op() conversation.Op {
	return c.op
}

// State returns the current step.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Expense returns the selected expense, zero before selection.
func (c *Controller) Expense() model.Expense {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expense
}

// Select moves to the form (edit) or the confirmation (delete).
func (c *Controller) Select(expense model.Expense) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != SelectionPending {
		return c.state, c.invalid("select")
	}

	c.expense = expense
	switch c.op {
	case conversation.OpEdit:
		c.state = FormActive
	case conversation.OpDelete:
		c.state = ConfirmPending
	default:
		return c.state, c.invalid("select")
	}

	slog.Debug("flow selection", "flow", c.id, "op", c.op, "expense", expense.ID, "state", c.state)
	return c.state, nil
}

// Abandon ends a flow whose selection never arrived.
func (c *Controller) Abandon() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == SelectionPending {
		c.state = Cancelled
	}
}

// SubmitEdit validates the form and, if valid, sends the update. A
// validation failure leaves the form active without any network call. A
// backend failure returns the flow to the form.
func (c *Controller) SubmitEdit(ctx context.Context, in EditInput) error {
	c.mu.Lock()
	if c.state != FormActive || c.op != conversation.OpEdit {
		defer c.mu.Unlock()
		return c.invalid("submit edit")
	}

	update, err := Validate(in)
	if err != nil {
		c.mu.Unlock()
		return err
	}

	c.state = Submitting
	id := c.expense.ID
	c.mu.Unlock()

	return c.finish(FormActive, c.mutator.UpdateExpense(ctx, id, update))
}

// ConfirmDelete sends the delete. A backend failure returns the flow to the
// confirmation step.
func (c *Controller) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	if c.state != ConfirmPending || c.op != conversation.OpDelete {
		defer c.mu.Unlock()
		return c.invalid("confirm delete")
	}

	c.state = Submitting
	id := c.expense.ID
	c.mu.Unlock()

	return c.finish(ConfirmPending, c.mutator.DeleteExpense(ctx, id))
}

// Cancel ends the flow from the form or the confirmation and returns the
// notice to show.
func (c *Controller) Cancel() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != FormActive && c.state != ConfirmPending {
		return "", c.invalid("cancel")
	}
	c.state = Cancelled
	return CancelMessage(c.op), nil
}

func (c *Controller) finish(back State, err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.state = back
		slog.Debug("flow submission failed", "flow", c.id, "op", c.op, "error", err)
		return err
	}

	c.state = Success
	slog.Debug("flow submission succeeded", "flow", c.id, "op", c.op, "expense", c.expense.ID)
	return nil
}

func (c *Controller) invalid(action string) error {
	return fmt.Errorf("%w: cannot %s while %s", common.ErrInvalidTransition, action, c.state)
}

// SuccessMessage is shown after a successful submission.
func SuccessMessage(op conversation.Op) string {
	if op == conversation.OpDelete {
		return "✅ Expense deleted successfully!"
	}
	return "✅ Expense updated successfully!"
}

// CancelMessage is shown when the user backs out of a flow.
func CancelMessage(op conversation.Op) string {
	if op == conversation.OpDelete {
		return "Deletion cancelled. Is there anything else you'd like to do?"
	}
	return "Edit cancelled. Is there anything else you'd like to do?"
}

// FailureMessage turns a submission error into the message shown in chat.
func FailureMessage(op conversation.Op, err error) string {
	verb := "update"
	gerund := "updating"
	if op == conversation.OpDelete {
		verb = "delete"
		gerund = "deleting"
	}

	var validation *common.ValidationError
	if errors.As(err, &validation) {
		return validation.Message
	}

	var rejected *finmate.RejectedError
	if errors.As(err, &rejected) {
		return fmt.Sprintf("❌ Failed to %s expense: %s", verb, rejected.Error())
	}

	return fmt.Sprintf("Sorry, there was an error %s the expense. Please try again later.", gerund)
}
