package tui

import "github.com/Veraticus/finmate/internal/chat"

// repliesMsg carries replies into the model. task is set when the replies
// come from a finished background task.
type repliesMsg struct {
	replies []chat.Reply
	task    bool
}

type themeToggledMsg struct {
	err  error
	dark bool
}
