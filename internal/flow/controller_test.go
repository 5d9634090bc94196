package flow

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/finmate/internal/common"
	"github.com/Veraticus/finmate/internal/conversation"
	"github.com/Veraticus/finmate/internal/finmate"
	"github.com/Veraticus/finmate/internal/model"
)

type recordingMutator struct {
	err     error
	updates map[model.ExpenseID]model.ExpenseUpdate
	deleted []model.ExpenseID
	calls   int
}

func (m *recordingMutator) UpdateExpense(_ context.Context, id model.ExpenseID, update model.ExpenseUpdate) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	if m.updates == nil {
		m.updates = make(map[model.ExpenseID]model.ExpenseUpdate)
	}
	m.updates[id] = update
	return nil
}

func (m *recordingMutator) DeleteExpense(_ context.Context, id model.ExpenseID) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

var lunch = model.Expense{
	ID:       "42",
	Amount:   decimal.NewFromInt(250),
	Category: "Food",
	Date:     "01-02-2025",
}

func TestEditFlow(t *testing.T) {
	mutator := &recordingMutator{}
	c := New(mutator, conversation.OpEdit)
	assert.Equal(t, SelectionPending, c.State())

	state, err := c.Select(lunch)
	require.NoError(t, err)
	assert.Equal(t, FormActive, state)
	assert.Equal(t, lunch, c.Expense())

	in := InputFrom(lunch)
	in.Amount = "300"
	require.NoError(t, c.SubmitEdit(context.Background(), in))
	assert.Equal(t, Success, c.State())
	assert.True(t, c.State().Terminal())
	assert.True(t, decimal.NewFromInt(300).Equal(mutator.updates["42"].Amount))
}

func TestEditValidationFailureMakesNoCall(t *testing.T) {
	mutator := &recordingMutator{}
	c := New(mutator, conversation.OpEdit)
	_, err := c.Select(lunch)
	require.NoError(t, err)

	err = c.SubmitEdit(context.Background(), EditInput{Amount: "-5", Category: "", Date: ""})

	var validation *common.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "amount", validation.Field)
	assert.Equal(t, FormActive, c.State())
	assert.Zero(t, mutator.calls)
}

func TestEditBackendFailureReturnsToForm(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want string
	}{
		{
			name: "rejected",
			err:  &finmate.RejectedError{Message: "Expense not found"},
			want: "❌ Failed to update expense: Expense not found",
		},
		{
			name: "rejected without message",
			err:  &finmate.RejectedError{},
			want: "❌ Failed to update expense: Unknown error",
		},
		{
			name: "network",
			err:  common.ErrNetwork,
			want: "Sorry, there was an error updating the expense. Please try again later.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(&recordingMutator{err: tt.err}, conversation.OpEdit)
			_, err := c.Select(lunch)
			require.NoError(t, err)

			err = c.SubmitEdit(context.Background(), InputFrom(lunch))
			require.Error(t, err)
			assert.Equal(t, FormActive, c.State())
			assert.Equal(t, tt.want, FailureMessage(conversation.OpEdit, err))
		})
	}
}

func TestDeleteFlow(t *testing.T) {
	mutator := &recordingMutator{}
	c := New(mutator, conversation.OpDelete)

	state, err := c.Select(lunch)
	require.NoError(t, err)
	assert.Equal(t, ConfirmPending, state)

	require.NoError(t, c.ConfirmDelete(context.Background()))
	assert.Equal(t, Success, c.State())
	assert.Equal(t, []model.ExpenseID{"42"}, mutator.deleted)
	assert.Equal(t, "✅ Expense deleted successfully!", SuccessMessage(conversation.OpDelete))
}

func TestDeleteFailureReturnsToConfirm(t *testing.T) {
	c := New(&recordingMutator{err: errors.New("reset by peer")}, conversation.OpDelete)
	_, err := c.Select(lunch)
	require.NoError(t, err)

	err = c.ConfirmDelete(context.Background())
	require.Error(t, err)
	assert.Equal(t, ConfirmPending, c.State())
	assert.Equal(t, "Sorry, there was an error deleting the expense. Please try again later.",
		FailureMessage(conversation.OpDelete, err))

	// A retry after the failure is allowed.
	c.mutator = &recordingMutator{}
	require.NoError(t, c.ConfirmDelete(context.Background()))
}

func TestCancel(t *testing.T) {
	edit := New(&recordingMutator{}, conversation.OpEdit)
	_, err := edit.Select(lunch)
	require.NoError(t, err)

	notice, err := edit.Cancel()
	require.NoError(t, err)
	assert.Equal(t, "Edit cancelled. Is there anything else you'd like to do?", notice)
	assert.Equal(t, Cancelled, edit.State())

	del := New(&recordingMutator{}, conversation.OpDelete)
	_, err = del.Select(lunch)
	require.NoError(t, err)

	notice, err = del.Cancel()
	require.NoError(t, err)
	assert.Equal(t, "Deletion cancelled. Is there anything else you'd like to do?", notice)
}

func TestInvalidTransitions(t *testing.T) {
	c := New(&recordingMutator{}, conversation.OpEdit)

	_, err := c.Cancel()
	require.ErrorIs(t, err, common.ErrInvalidTransition)

	err = c.SubmitEdit(context.Background(), InputFrom(lunch))
	require.ErrorIs(t, err, common.ErrInvalidTransition)

	require.ErrorIs(t, c.ConfirmDelete(context.Background()), common.ErrInvalidTransition)

	_, err = c.Select(lunch)
	require.NoError(t, err)
	_, err = c.Select(lunch)
	require.ErrorIs(t, err, common.ErrInvalidTransition)
}

func TestAbandon(t *testing.T) {
	c := New(&recordingMutator{}, conversation.OpDelete)
	c.Abandon()
	assert.Equal(t, Cancelled, c.State())

	_, err := c.Select(lunch)
	require.ErrorIs(t, err, common.ErrInvalidTransition)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "form-active", FormActive.String())
	assert.Equal(t, "submitting", Submitting.String())
	assert.False(t, ConfirmPending.Terminal())
}
