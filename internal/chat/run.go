package chat

import (
	"context"
	"sync"
)

// Run starts every task in its own goroutine and passes each task's replies
// to deliver as soon as it finishes, so replies arrive in completion order.
// deliver is never called concurrently. The returned channel is closed once
// all tasks are done.
func Run(ctx context.Context, tasks []Task, deliver func([]Reply)) <-chan struct{} {
	done := make(chan struct{})

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, task := range tasks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			replies := task(ctx)

			mu.Lock()
			defer mu.Unlock()
			deliver(replies)
		}()
	}

	go func() {
		wg.Wait()
		close(done)
	}()
	return done
}
