package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunDeliversInCompletionOrder(t *testing.T) {
	slow := func(context.Context) []Reply {
		time.Sleep(50 * time.Millisecond)
		return []Reply{text("slow")}
	}
	fast := func(context.Context) []Reply {
		return []Reply{text("fast")}
	}

	var got []string
	done := Run(context.Background(), []Task{slow, fast}, func(replies []Reply) {
		for _, r := range replies {
			got = append(got, r.Text)
		}
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("tasks did not finish")
	}
	assert.Equal(t, []string{"fast", "slow"}, got)
}

func TestRunWithNoTasks(t *testing.T) {
	done := Run(context.Background(), nil, func([]Reply) { t.Fatal("unexpected delivery") })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("done not closed")
	}
}
