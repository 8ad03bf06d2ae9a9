package periodic

import (
	"context"
	"sync"
	"time"
)

// Loop runs a function after an initial delay and then on every tick until its context is done.
type Loop struct {
	name         string
	initialDelay time.Duration
	interval     time.Duration
	fn           func(ctx context.Context)
	wg           *sync.WaitGroup
}

func NewLoop(name string, initialDelay, interval time.Duration, fn func(ctx context.Context)) *Loop {
	return &Loop{
		name:         name,
		initialDelay: initialDelay,
		interval:     interval,
		fn:           fn,
		wg:           &sync.WaitGroup{},
	}
}

func (l *Loop) Name() string {
	return l.name
}

func (l *Loop) Start(ctx context.Context) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()

		delay := time.NewTimer(l.initialDelay)
		defer delay.Stop()
		select {
		case <-ctx.Done():
			return
		case <-delay.C:
			l.fn(ctx)
		}

		ticker := time.NewTicker(l.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.fn(ctx)
			}
		}
	}()
}

// Stop waits for the loop goroutine to exit; the caller cancels the context passed to Start.
func (l *Loop) Stop(ctx context.Context) error {
	stop := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(stop)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-stop:
		return nil
	}
}
