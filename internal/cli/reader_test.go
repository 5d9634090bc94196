package cli

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineReader_ReadLine(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		expectedValue string
	}{
		{
			name:          "successful read",
			input:         "I spent 500 on food\n",
			expectedValue: "I spent 500 on food",
		},
		{
			name:          "read with extra whitespace",
			input:         "  help  \n",
			expectedValue: "help",
		},
		{
			name:          "empty line",
			input:         "\n",
			expectedValue: "",
		},
		{
			name:          "last line without newline",
			input:         "thanks",
			expectedValue: "thanks",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := NewLineReader(strings.NewReader(tt.input))

			result, err := reader.ReadLine(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.expectedValue, result)
		})
	}
}

func TestLineReader_EOF(t *testing.T) {
	reader := NewLineReader(strings.NewReader(""))

	_, err := reader.ReadLine(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestLineReader_ContextCancellation(t *testing.T) {
	t.Run("immediate cancellation", func(t *testing.T) {
		pr, pw := io.Pipe()
		defer func() { _ = pw.Close() }()
		reader := NewLineReader(pr)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := reader.ReadLine(ctx)
		assert.Equal(t, ErrInputCancelled, err)
	})

	t.Run("line typed after cancellation is kept", func(t *testing.T) {
		pr, pw := io.Pipe()
		defer func() { _ = pw.Close() }()
		reader := NewLineReader(pr)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()

		_, err := reader.ReadLine(ctx)
		require.Equal(t, ErrInputCancelled, err)

		go func() { _, _ = io.WriteString(pw, "still here\n") }()

		line, err := reader.ReadLine(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "still here", line)
	})
}

func TestLineReader_MultipleReads(t *testing.T) {
	reader := NewLineReader(strings.NewReader("line1\nline2\nline3\n"))
	ctx := context.Background()

	for _, want := range []string{"line1", "line2", "line3"} {
		got, err := reader.ReadLine(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestNewLineReaderPanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { NewLineReader(nil) })
}
