package finmate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/finmate/internal/common"
)

// DefaultDispatchTimeout bounds one conversational round trip.
const DefaultDispatchTimeout = 15 * time.Second

// Chatter sends one message to the conversational endpoint.
type Chatter interface {
	Chat(ctx context.Context, input string) (string, error)
}

// Dispatcher forwards messages the client cannot answer locally. It never
// retries on its own; replaying a failed message is up to the user.
type Dispatcher struct {
	client  Chatter
	timeout time.Duration
}

// NewDispatcher wraps a Chatter with the dispatch timeout.
func NewDispatcher(client Chatter, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultDispatchTimeout
	}
	return &Dispatcher{client: client, timeout: timeout}
}

// Timeout is the per-message budget.
func (d *Dispatcher) Timeout() time.Duration {
	return d.timeout
}

// Dispatch sends message and returns the server's reply. Errors are one of
// common.ErrTimeout, common.ErrNetwork, *common.ServerError, or
// common.ErrMalformedResponse.
func (d *Dispatcher) Dispatch(ctx context.Context, message string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	reply, err := d.client.Chat(ctx, message)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, common.ErrTimeout) {
			err = fmt.Errorf("%w: %v", common.ErrTimeout, err)
		} else {
			err = common.ClassifyTransportError(err)
		}
		slog.Warn("finmate dispatch failed",
			"elapsed", time.Since(start),
			"error", err)
		return "", err
	}

	slog.Debug("finmate dispatch succeeded", "elapsed", time.Since(start))
	return reply, nil
}

// FailureMessage turns a dispatch error into the chat message shown to the user.
func FailureMessage(err error) string {
	var serverErr *common.ServerError
	switch {
	case errors.Is(err, common.ErrTimeout):
		return "Sorry, the request took too long to complete. Please try again."
	case errors.Is(err, common.ErrNetwork):
		return "Sorry, I'm having trouble connecting to the server. Please check your internet connection and try again."
	case errors.As(err, &serverErr):
		return fmt.Sprintf("Sorry, the server returned an error (%d). Please try again later.", serverErr.Status)
	case errors.Is(err, common.ErrMalformedResponse):
		return "Sorry, I received an unexpected reply from the server. Please try again."
	default:
		return "Sorry, something went wrong. Please try again later."
	}
}
