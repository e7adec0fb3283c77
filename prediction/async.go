package prediction

import (
	"context"

	"github.com/oomph-ac/locomotion/assert"
	"github.com/oomph-ac/locomotion/locomotion"
	"github.com/oomph-ac/locomotion/utils"
	"github.com/oomph-ac/locomotion/worker"
	"github.com/sasha-s/go-deadlock"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

// AsyncInput is the game thread snapshot handed to the physics thread for one
// sub-step.
type AsyncInput struct {
	DeltaTime float64

	RotationMode   locomotion.RotationMode
	Stance         locomotion.Stance
	MaxAllowedGait locomotion.Gait
	WantsToLie     bool

	CanEverCrouch bool
	WantsToCrouch bool
	IsCrouched    bool
}

// AsyncOutput is produced by the physics thread for one sub-step.
type AsyncOutput struct {
	DeltaTime float64

	RotationMode   locomotion.RotationMode
	Stance         locomotion.Stance
	MaxAllowedGait locomotion.Gait
	WantsToLie     bool

	WantsToCrouch bool
	IsCrouched    bool
	// IsLied must stay false: lying down is only ever started by the authority
	// on the game thread.
	IsLied bool
}

// FillAsyncInput snapshots the character for a physics sub-step of dt.
func FillAsyncInput(c Character, dt float64) AsyncInput {
	st := c.Movement()
	return AsyncInput{
		DeltaTime:      dt,
		RotationMode:   c.RotationMode(),
		Stance:         c.Stance(),
		MaxAllowedGait: c.MaxAllowedGait(),
		WantsToLie:     c.WantsToLie(),
		CanEverCrouch:  st.CanEverCrouch,
		WantsToCrouch:  st.WantsToCrouch,
		IsCrouched:     st.IsCrouched,
	}
}

// OutputFromInput is the output of a sub-step that did not change any tag.
func OutputFromInput(in AsyncInput) AsyncOutput {
	return AsyncOutput{
		DeltaTime:      in.DeltaTime,
		RotationMode:   in.RotationMode,
		Stance:         in.Stance,
		MaxAllowedGait: in.MaxAllowedGait,
		WantsToLie:     in.WantsToLie,
		WantsToCrouch:  in.WantsToCrouch,
		IsCrouched:     in.IsCrouched,
	}
}

// ApplyAsyncOutput copies the output of a physics sub-step onto the character.
func ApplyAsyncOutput(out AsyncOutput, c Character, log *logrus.Logger) {
	if !assert.Ensure(out.DeltaTime > 0, log, "async output with non-positive delta time %f", out.DeltaTime) {
		return
	}
	assert.Ensure(!out.IsLied, log, "async output carries a lie transition")

	c.SetRotationMode(out.RotationMode)
	c.SetStance(out.Stance)
	c.SetMaxAllowedGait(out.MaxAllowedGait)
	c.SetWantsToLie(out.WantsToLie)
}

// StepFunc runs one physics sub-step.
type StepFunc func(in AsyncInput) AsyncOutput

// AsyncBridge hands inputs from the game thread to a worker pool and collects
// the outputs in submission order for the game thread to apply.
type AsyncBridge struct {
	pool *worker.Pool
	step StepFunc
	log  *logrus.Logger

	mu       deadlock.Mutex
	outputs  *utils.CircularQueue[AsyncOutput]
	pending  map[uint64]AsyncOutput
	nextSeq  uint64
	flushSeq uint64

	inFlight *atomic.Int64
	drained  chan struct{}
}

// NewAsyncBridge returns a bridge that keeps up to capacity unapplied outputs.
// When the game thread falls further behind, the oldest outputs are dropped.
func NewAsyncBridge(pool *worker.Pool, step StepFunc, capacity int, log *logrus.Logger) *AsyncBridge {
	return &AsyncBridge{
		pool:     pool,
		step:     step,
		log:      log,
		outputs:  utils.NewCircularQueue[AsyncOutput](capacity),
		pending:  make(map[uint64]AsyncOutput),
		inFlight: atomic.NewInt64(0),
		drained:  make(chan struct{}, 1),
	}
}

// Submit queues one sub-step. It returns false if the pool no longer accepts work.
func (b *AsyncBridge) Submit(in AsyncInput) bool {
	b.mu.Lock()
	seq := b.nextSeq
	b.nextSeq++
	b.mu.Unlock()

	b.inFlight.Inc()
	ok := b.pool.Submit(func() {
		var out AsyncOutput
		defer func() {
			b.publish(seq, out)
			b.done()
		}()
		out = b.step(in)
	})
	if !ok {
		b.publish(seq, AsyncOutput{})
		b.done()
	}
	return ok
}

// publish stores the output of seq and moves every output that is now in order
// into the queue. A zero output marks a sub-step that never ran.
func (b *AsyncBridge) publish(seq uint64, out AsyncOutput) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pending[seq] = out
	for {
		next, ok := b.pending[b.flushSeq]
		if !ok {
			return
		}
		delete(b.pending, b.flushSeq)
		b.flushSeq++
		if next.DeltaTime <= 0 {
			continue
		}
		if dropped, err := b.outputs.Append(next); err != nil {
			if b.log != nil {
				b.log.Errorf("async bridge: %v", err)
			}
		} else if dropped && b.log != nil {
			b.log.Warnf("async bridge: output queue full, dropped oldest output")
		}
	}
}

func (b *AsyncBridge) done() {
	if b.inFlight.Dec() <= 0 {
		select {
		case b.drained <- struct{}{}:
		default:
		}
	}
}

// ProcessAsyncOutput applies every queued output to the character in order and
// returns how many were applied.
func (b *AsyncBridge) ProcessAsyncOutput(c Character) int {
	b.mu.Lock()
	outputs := make([]AsyncOutput, 0, b.outputs.Len())
	for {
		out, ok := b.outputs.Pop()
		if !ok {
			break
		}
		outputs = append(outputs, out)
	}
	b.mu.Unlock()

	for _, out := range outputs {
		ApplyAsyncOutput(out, c, b.log)
	}
	return len(outputs)
}

// InFlight returns the number of submitted sub-steps that have not finished.
func (b *AsyncBridge) InFlight() int64 {
	return b.inFlight.Load()
}

// Wait blocks until every submitted sub-step has finished or ctx is done.
func (b *AsyncBridge) Wait(ctx context.Context) error {
	for b.inFlight.Load() > 0 {
		select {
		case <-b.drained:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
