package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/rethinkmedia/backend/internal/logging"
	"github.com/rethinkmedia/backend/internal/media"
)

// Pool runs tasks on a fixed set of in-process workers. Tasks run under
// context.Background(): once accepted they finish (or fail) regardless of
// the originating request's connection.
type Pool struct {
	tasks  chan media.Task
	runner Runner
	log    *logging.Logger
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func NewPool(runner Runner, workers int, log *logging.Logger) *Pool {
	if workers <= 0 {
		workers = 2
	}
	p := &Pool{
		tasks:  make(chan media.Task, workers*8),
		runner: runner,
		log:    log.With("component", "dispatch"),
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.work(i)
	}
	return p
}

func (p *Pool) work(id int) {
	defer p.wg.Done()
	for t := range p.tasks {
		start := time.Now()
		if err := p.runner.Run(context.Background(), t); err != nil {
			p.log.Error("generation task failed",
				"worker", id, "task_id", t.ID, "chat_id", t.ChatID,
				"type", t.Type, "index", t.Index,
				"cost", time.Since(start), "err", err)
			continue
		}
		p.log.Info("generation task done",
			"worker", id, "task_id", t.ID, "chat_id", t.ChatID,
			"type", t.Type, "index", t.Index, "cost", time.Since(start))
	}
}

func (p *Pool) Dispatch(ctx context.Context, t media.Task) error {
	select {
	case p.tasks <- t:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops intake and waits for in-flight tasks to finish.
func (p *Pool) Close() error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
	p.mu.Unlock()
	p.wg.Wait()
	return nil
}
