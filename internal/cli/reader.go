package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrInputCancelled is returned when input is canceled by context.
var ErrInputCancelled = errors.New("input canceled")

// LineReader reads lines from the terminal and gives up as soon as its
// context is done, even while a read is blocked.
type LineReader struct {
	reader *bufio.Reader
	lines  chan result
	mu     sync.Mutex
	busy   bool
}

type result struct {
	err   error
	value string
}

// NewLineReader wraps r.
func NewLineReader(r io.Reader) *LineReader {
	if r == nil {
		panic("reader cannot be nil")
	}

	return &LineReader{
		reader: bufio.NewReader(r),
		lines:  make(chan result, 1),
	}
}

// ReadLine reads one line and trims surrounding whitespace. A read that is
// abandoned by cancellation is not lost: the next ReadLine returns it.
func (r *LineReader) ReadLine(ctx context.Context) (string, error) {
	r.mu.Lock()
	if !r.busy {
		r.busy = true
		go func() {
			value, err := r.reader.ReadString('\n')
			r.lines <- result{value: value, err: err}
		}()
	}
	r.mu.Unlock()

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case res := <-r.lines:
		r.mu.Lock()
		r.busy = false
		r.mu.Unlock()

		if res.err != nil && (res.value == "" || !errors.Is(res.err, io.EOF)) {
			return "", res.err
		}
		return strings.TrimSpace(res.value), nil
	}
}
