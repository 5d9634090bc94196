// Package conversation tracks whether the chat is in the middle of a
// multi-turn edit or delete flow and which expenses are on offer.
package conversation

import (
	"fmt"

	"github.com/Veraticus/finmate/internal/common"
	"github.com/Veraticus/finmate/internal/model"
)

// Mode is the conversational mode. Exactly one is active at a time.
type Mode int

const (
	// ModeIdle means no flow is waiting for a selection.
	ModeIdle Mode = iota
	// ModeAwaitingEdit means a numbered expense list for editing is on screen.
	ModeAwaitingEdit
	// ModeAwaitingDelete means a numbered expense list for deletion is on screen.
	ModeAwaitingDelete
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeAwaitingEdit:
		return "awaiting-edit-selection"
	case ModeAwaitingDelete:
		return "awaiting-delete-selection"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Op is the operation a flow performs on the selected expense.
type Op int

const (
	// OpEdit edits the selected expense.
	OpEdit Op = iota + 1
	// OpDelete deletes the selected expense.
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpEdit:
		return "edit"
	case OpDelete:
		return "delete"
	default:
		return "none"
	}
}

// Snapshot is a read-only view of the state handed to the classifier.
type Snapshot struct {
	Mode       Mode
	Candidates int
}

// Op returns the operation pending selection, or zero when idle.
func (s Snapshot) Op() Op {
	switch s.Mode {
	case ModeAwaitingEdit:
		return OpEdit
	case ModeAwaitingDelete:
		return OpDelete
	default:
		return 0
	}
}

// State owns the mode and candidate set. It has no locking of its own;
// callers serialise access.
type State struct {
	candidates []model.Expense
	mode       Mode
}

// New returns an idle state.
func New() *State {
	return &State{mode: ModeIdle}
}

// Mode returns the active mode.
func (s *State) Mode() Mode {
	return s.mode
}

// Snapshot captures the state for classification.
func (s *State) Snapshot() Snapshot {
	return Snapshot{Mode: s.mode, Candidates: len(s.candidates)}
}

// StartFlow begins a selection flow, discarding any flow already in progress.
func (s *State) StartFlow(op Op, candidates []model.Expense) {
	switch op {
	case OpEdit:
		s.mode = ModeAwaitingEdit
	case OpDelete:
		s.mode = ModeAwaitingDelete
	default:
		s.Cancel()
		return
	}

	s.candidates = make([]model.Expense, len(candidates))
	copy(s.candidates, candidates)
}

// ResolveSelection returns the candidate at the 1-based index. The state is
// reset to idle whether or not the index is in range.
func (s *State) ResolveSelection(index int) (model.Expense, error) {
	defer s.Cancel()

	if index < 1 || index > len(s.candidates) {
		return model.Expense{}, fmt.Errorf("%w: %d of %d", common.ErrOutOfRangeSelection, index, len(s.candidates))
	}

	return s.candidates[index-1], nil
}

// Pick resolves an explicit UI pick. Unlike typed input it never falls back
// to classification, but it clears the flow exactly the same way.
func (s *State) Pick(index int) (model.Expense, error) {
	return s.ResolveSelection(index)
}

// Cancel returns to idle and drops the candidates.
func (s *State) Cancel() {
	s.mode = ModeIdle
	s.candidates = nil
}
