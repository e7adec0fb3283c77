package worker

import (
	"runtime"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/oomph-ac/locomotion/oerror"
	"github.com/sasha-s/go-deadlock"
	"github.com/sirupsen/logrus"
)

// Pool runs submitted functions on a fixed set of goroutines. A panicking task
// is reported to sentry and does not take its worker down.
type Pool struct {
	queue  chan func()
	wg     sync.WaitGroup
	closed bool
	log    *logrus.Logger

	mu deadlock.RWMutex
}

// NewPool starts workers goroutines. A non-positive count uses runtime.NumCPU.
func NewPool(workers int, log *logrus.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	p := &Pool{queue: make(chan func(), workers*4), log: log}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		f, ok := <-p.queue
		if !ok {
			return
		}
		p.run(f)
	}
}

func (p *Pool) run(f func()) {
	defer func() {
		if err := recover(); err != nil {
			hub := sentry.CurrentHub().Clone()
			hub.Recover(oerror.New("worker task panicked: %v", err))
			hub.Flush(time.Second * 5)
			if p.log != nil {
				p.log.Errorf("worker task panicked: %v", err)
			}
		}
	}()
	f()
}

// Submit queues f. It blocks while the queue is full and returns false once the
// pool has been closed.
func (p *Pool) Submit(f func()) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return false
	}
	p.queue <- f
	return true
}

// Close stops accepting work and waits for queued tasks to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
}

var (
	defaultPool     *Pool
	defaultPoolOnce sync.Once
)

// Submit runs f on the shared pool. To be used by a function that may be CPU
// intensive.
func Submit(f func()) {
	defaultPoolOnce.Do(func() {
		defaultPool = NewPool(runtime.NumCPU(), nil)
	})
	defaultPool.Submit(f)
}
