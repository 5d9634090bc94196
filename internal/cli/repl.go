package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/Veraticus/finmate/internal/chat"
	"github.com/Veraticus/finmate/internal/conversation"
	"github.com/Veraticus/finmate/internal/flow"
	"github.com/Veraticus/finmate/internal/model"
)

const helpText = `Commands:
  /1, /2, ...  choose one of the offered actions
  /cancel      back out of an edit or delete
  /theme       toggle dark mode
  /help        show this help
  /quit        leave the chat`

// Options configure a REPL.
type Options struct {
	In  io.Reader
	Out io.Writer
	// ToggleTheme flips and persists the dark mode preference and reports the new value.
	ToggleTheme func(ctx context.Context) (bool, error)
	Width       int
	Dark        bool
	// Sound rings the terminal bell when a reply arrives.
	Sound bool
	// Typing shows a spinner while the server is working.
	Typing bool
}

// REPL is the line-mode chat loop.
type REPL struct {
	session  *chat.Session
	reader   *LineReader
	out      io.Writer
	render   *Renderer
	typing   *typingIndicator
	toggle   func(ctx context.Context) (bool, error)
	actions  []chat.Action
	pending  sync.WaitGroup
	mu       sync.Mutex
	width    int
	sound    bool
	dark     bool
	atPrompt bool
}

// NewREPL creates a REPL over session.
func NewREPL(session *chat.Session, opts Options) (*REPL, error) {
	if session == nil {
		return nil, fmt.Errorf("session is required")
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	render, err := NewRenderer(opts.Dark, opts.Width, session.Currency())
	if err != nil {
		return nil, err
	}

	return &REPL{
		session: session,
		reader:  NewLineReader(opts.In),
		out:     opts.Out,
		render:  render,
		typing:  newTypingIndicator(opts.Out, opts.Typing),
		toggle:  opts.ToggleTheme,
		width:   opts.Width,
		sound:   opts.Sound,
		dark:    opts.Dark,
	}, nil
}

// Run greets the user and reads messages until EOF, /quit, or ctx is done.
// Replies still in flight at EOF are waited for.
func (r *REPL) Run(ctx context.Context) error {
	if _, err := fmt.Fprintln(r.out, FormatTitle("FinMate")+" "+SubtleStyle.Render("type /help for commands")); err != nil {
		return fmt.Errorf("failed to write banner: %w", err)
	}
	r.deliver(r.session.Welcome(ctx))

	for {
		r.prompt()
		line, err := r.reader.ReadLine(ctx)
		r.setAtPrompt(false)
		if err != nil {
			r.pending.Wait()
			if errors.Is(err, ErrInputCancelled) || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}
		if line == "" {
			continue
		}

		quit, err := r.handleLine(ctx, line)
		if err != nil {
			r.pending.Wait()
			if errors.Is(err, ErrInputCancelled) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if quit {
			r.pending.Wait()
			return nil
		}
	}
}

func (r *REPL) handleLine(ctx context.Context, line string) (bool, error) {
	if !strings.HasPrefix(line, "/") {
		return false, r.handle(ctx, r.session.Submit(ctx, line))
	}

	cmd := strings.ToLower(strings.TrimPrefix(line, "/"))
	switch cmd {
	case "quit", "exit", "q":
		return true, nil
	case "help", "?":
		r.println(SubtleStyle.Render(helpText))
		return false, nil
	case "cancel":
		return false, r.handle(ctx, r.session.CancelFlow(ctx))
	case "theme":
		return false, r.toggleTheme(ctx)
	}

	n, err := strconv.Atoi(cmd)
	if err != nil {
		r.println(FormatWarning(fmt.Sprintf("Unknown command %q. Type /help for the list.", line)))
		return false, nil
	}

	r.mu.Lock()
	var action chat.Action
	ok := n >= 1 && n <= len(r.actions)
	if ok {
		action = r.actions[n-1]
	}
	r.mu.Unlock()

	if !ok {
		r.println(FormatWarning(fmt.Sprintf("There is no action /%d.", n)))
		return false, nil
	}
	return false, r.handle(ctx, r.session.Invoke(ctx, action))
}

func (r *REPL) toggleTheme(ctx context.Context) error {
	if r.toggle == nil {
		r.println(FormatWarning("Theme switching is not available."))
		return nil
	}

	dark, err := r.toggle(ctx)
	if err != nil {
		r.println(FormatError("Could not save the theme: " + err.Error()))
		return nil
	}

	render, err := NewRenderer(dark, r.width, r.session.Currency())
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.render = render
	r.dark = dark
	r.mu.Unlock()

	if dark {
		r.println(FormatSuccess(MoonIcon + " Dark mode on"))
	} else {
		r.println(FormatSuccess(SunIcon + " Light mode on"))
	}
	return nil
}

// handle prints immediate replies, runs any form they open, and starts the
// outcome's tasks in the background.
func (r *REPL) handle(ctx context.Context, out chat.Outcome) error {
	r.deliver(out.Replies)

	for _, reply := range out.Replies {
		switch reply.Kind {
		case chat.KindEditForm:
			if err := r.editForm(ctx, reply.Expense); err != nil {
				return err
			}
		case chat.KindConfirmDelete:
			if err := r.confirmDelete(ctx); err != nil {
				return err
			}
		}
	}

	if !out.Pending() {
		return nil
	}

	r.pending.Add(1)
	r.typing.Start()
	done := chat.Run(ctx, out.Tasks, r.deliverAsync)
	go func() {
		<-done
		r.typing.Stop()
		r.pending.Done()
	}()
	return nil
}

// wait runs tasks and blocks until every reply has been printed.
func (r *REPL) wait(ctx context.Context, out chat.Outcome) {
	r.deliver(out.Replies)
	if !out.Pending() {
		return
	}

	r.typing.Start()
	<-chat.Run(ctx, out.Tasks, r.deliver)
	r.typing.Stop()
}

func (r *REPL) editForm(ctx context.Context, expense *model.Expense) error {
	if expense == nil {
		return nil
	}

	in := flow.InputFrom(*expense)
	for {
		r.println(SubtleStyle.Render("Press Enter to keep a value, type - to clear notes, or /cancel to stop."))

		fields := []struct {
			value *string
			label string
		}{
			{label: "Amount", value: &in.Amount},
			{label: "Category", value: &in.Category},
			{label: "Date (DD-MM-YYYY)", value: &in.Date},
			{label: "Notes", value: &in.Notes},
		}
		for _, f := range fields {
			answer, err := r.ask(ctx, fmt.Sprintf("%s [%s]", f.label, *f.value))
			if err != nil {
				return err
			}
			switch {
			case answer == "/cancel":
				r.wait(ctx, r.session.CancelFlow(ctx))
				return nil
			case answer == "-" && f.value == &in.Notes:
				in.Notes = ""
			case answer != "":
				*f.value = answer
			}
		}

		out := r.session.SubmitEdit(ctx, in)
		r.wait(ctx, out)
		if !r.editing() {
			return nil
		}
		if !out.Pending() {
			// Validation failed; ask again with what was typed.
			continue
		}
		again, err := r.confirm(ctx, "Try again?", true)
		if err != nil {
			return err
		}
		if !again {
			r.wait(ctx, r.session.CancelFlow(ctx))
			return nil
		}
	}
}

// editing reports whether the session still has an edit form open. A flow
// started elsewhere replaces it.
func (r *REPL) editing() bool {
	ctrl := r.session.Flow()
	return ctrl != nil && ctrl.Op() == conversation.OpEdit && ctrl.State() == flow.FormActive
}

func (r *REPL) confirmDelete(ctx context.Context) error {
	for {
		yes, err := r.confirm(ctx, "Delete this expense?", false)
		if err != nil {
			return err
		}
		if !yes {
			r.wait(ctx, r.session.CancelFlow(ctx))
			return nil
		}

		r.wait(ctx, r.session.ConfirmDelete(ctx))
		ctrl := r.session.Flow()
		if ctrl == nil || ctrl.State() != flow.ConfirmPending {
			return nil
		}
	}
}

func (r *REPL) confirm(ctx context.Context, question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}

	for {
		answer, err := r.ask(ctx, fmt.Sprintf("%s [%s]", question, hint))
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no", "/cancel":
			return false, nil
		}
	}
}

func (r *REPL) ask(ctx context.Context, label string) (string, error) {
	r.mu.Lock()
	_, err := fmt.Fprint(r.out, FormatPrompt(label))
	r.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}
	return r.reader.ReadLine(ctx)
}

func (r *REPL) prompt() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.atPrompt = true
	_, _ = fmt.Fprint(r.out, UserStyle.Render("You")+" "+PromptStyle.Render("→ "))
}

func (r *REPL) setAtPrompt(v bool) {
	r.mu.Lock()
	r.atPrompt = v
	r.mu.Unlock()
}

func (r *REPL) deliverAsync(replies []chat.Reply) {
	r.deliver(replies)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.atPrompt {
		_, _ = fmt.Fprint(r.out, UserStyle.Render("You")+" "+PromptStyle.Render("→ "))
	}
}

// deliver prints replies and remembers the actions they offer.
func (r *REPL) deliver(replies []chat.Reply) {
	if len(replies) == 0 {
		return
	}
	r.typing.Clear()

	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		b       strings.Builder
		actions []chat.Action
		cue     bool
	)
	if r.atPrompt {
		b.WriteString("\n")
	}
	for _, reply := range replies {
		b.WriteString(r.render.Render(reply, len(actions)+1))
		b.WriteString("\n")
		if reply.Kind != chat.KindSelection {
			actions = append(actions, reply.Actions...)
		}
		cue = cue || reply.Cue
	}
	if len(actions) > 0 {
		r.actions = actions
	}
	if cue && r.sound {
		b.WriteString("\a")
	}

	_, _ = io.WriteString(r.out, b.String())
}

func (r *REPL) println(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintln(r.out, s)
}

// Show prints an outcome produced outside the loop, waiting for its tasks.
// One-shot commands use it; forms are not opened.
func (r *REPL) Show(ctx context.Context, out chat.Outcome) {
	r.wait(ctx, out)
}
