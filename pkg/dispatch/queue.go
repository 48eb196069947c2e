// Copyright 2026 Ewout Prangsma
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// Author Ewout Prangsma
//

package dispatch

import (
	"context"
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var (
	// ClosedError is returned when work is submitted to a queue that has stopped.
	ClosedError = errors.New("queue closed")

	maskAny = errors.WithStack
)

// Dispatcher hands work to the goroutine that owns some state.
type Dispatcher interface {
	// Dispatch schedules fn to run on the owning goroutine.
	// It never blocks.
	Dispatch(fn func())
}

// Queue runs submitted functions one at a time, in submission order,
// on a single goroutine that is locked to its OS thread.
type Queue struct {
	log     zerolog.Logger
	mutex   sync.Mutex
	pending []func()
	signal  chan struct{}
	closed  bool
}

var _ Dispatcher = &Queue{}

// NewQueue creates a new queue. Call Run to process it.
func NewQueue(log zerolog.Logger) *Queue {
	return &Queue{
		log:    log.With().Str("component", "dispatch").Logger(),
		signal: make(chan struct{}, 1),
	}
}

// Dispatch appends fn to the queue.
// Functions dispatched after the queue has stopped are dropped.
func (q *Queue) Dispatch(fn func()) {
	if fn == nil {
		return
	}
	q.mutex.Lock()
	if q.closed {
		q.mutex.Unlock()
		q.log.Debug().Msg("Dropping function dispatched to closed queue")
		return
	}
	q.pending = append(q.pending, fn)
	q.mutex.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
		// Already signaled
	}
}

// Invoke runs fn on the queue and waits until it has completed.
func (q *Queue) Invoke(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	q.mutex.Lock()
	closed := q.closed
	q.mutex.Unlock()
	if closed {
		return maskAny(ClosedError)
	}
	q.Dispatch(func() {
		defer close(done)
		fn()
	})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes the queue until the given context is canceled.
// Pending functions are dropped when the context is canceled.
func (q *Queue) Run(ctx context.Context) error {
	// Ensure we're always using the same OS thread
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer func() {
		q.mutex.Lock()
		q.closed = true
		dropped := len(q.pending)
		q.pending = nil
		q.mutex.Unlock()
		if dropped > 0 {
			q.log.Debug().Int("dropped", dropped).Msg("Queue stopped")
		}
	}()

	for {
		for {
			fn := q.next()
			if fn == nil {
				break
			}
			fn()
			if ctx.Err() != nil {
				return nil
			}
		}
		select {
		case <-q.signal:
			// New work
		case <-ctx.Done():
			// Context canceled
			return nil
		}
	}
}

// next removes the first pending function from the queue.
func (q *Queue) next() func() {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if len(q.pending) == 0 {
		return nil
	}
	fn := q.pending[0]
	q.pending[0] = nil
	q.pending = q.pending[1:]
	return fn
}
