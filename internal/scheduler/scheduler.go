// Package scheduler runs the engine's periodic housekeeping: token
// re-verification, idle wizard pruning and history cache cleanup.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"
)

type Task func(ctx context.Context) error

type Job struct {
	Name     string
	Interval time.Duration
	Task     Task
	// Delay skips the immediate first run.
	Delay bool
}

// Every runs task right away, then once per interval until ctx is done.
// A non-positive interval disables the task.
func Every(ctx context.Context, interval time.Duration, name string, task Task) {
	every(ctx, Job{Name: name, Interval: interval, Task: task})
}

func every(ctx context.Context, j Job) {
	if j.Interval <= 0 {
		log.Printf("level=info msg=\"task disabled\" task=%s", j.Name)
		return
	}
	t := time.NewTicker(j.Interval)
	defer t.Stop()

	if !j.Delay {
		runOnce(ctx, j)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			runOnce(ctx, j)
		}
	}
}

func runOnce(ctx context.Context, j Job) {
	if err := j.Task(ctx); err != nil && ctx.Err() == nil {
		log.Printf("level=warn msg=\"task failed\" task=%s err=%q", j.Name, err.Error())
	}
}

// Run starts every job and blocks until ctx is done and all of them returned.
func Run(ctx context.Context, jobs ...Job) error {
	var wg sync.WaitGroup
	for _, j := range jobs {
		wg.Add(1)
		go func(j Job) {
			defer wg.Done()
			every(ctx, j)
		}(j)
	}
	wg.Wait()
	return nil
}
