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

package event

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/kelindar/event"
)

// Event is implemented by every notification published through a Source.
type Event interface {
	// Type returns a number that is unique per event type.
	Type() uint32
}

// ComparableEvent is an Event that can be compared with ==.
type ComparableEvent interface {
	Event
	comparable
}

// Observer is notified when the set of subscribers of a Source changes.
// Drivers use it to start hardware polling when the first listener arrives
// and to stop it when the last one leaves.
type Observer interface {
	// OnFirstSubscriberAdded is called when the subscriber count goes from 0 to 1.
	OnFirstSubscriberAdded()
	// OnSubscriberAdded is called for every added subscriber.
	OnSubscriberAdded()
	// OnSubscriberRemoved is called for every removed subscriber.
	OnSubscriberRemoved()
	// OnLastSubscriberRemoved is called when the subscriber count goes from 1 to 0.
	OnLastSubscriberRemoved()
}

// Source is a reference counted registry of subscribers for events of type T.
// Handlers are invoked asynchronously, in publication order per subscriber.
//
// Observer hooks are called while the registry lock is held, so they must
// not subscribe or unsubscribe on the same Source.
type Source[T Event] struct {
	name       string
	mutex      sync.Mutex
	dispatcher *event.Dispatcher
	observer   Observer
	count      int
}

// NewSource creates a new event source with given name.
// The observer is optional.
func NewSource[T Event](name string, observer Observer) *Source[T] {
	return &Source[T]{
		name:       name,
		dispatcher: event.NewDispatcher(),
		observer:   observer,
	}
}

// Name returns the name of the source.
func (s *Source[T]) Name() string {
	return s.name
}

// Subscribe registers the given handler.
// The returned function removes the subscription; calling it more than once
// has no further effect.
func (s *Source[T]) Subscribe(handler func(T)) context.CancelFunc {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	unsubscribe := event.Subscribe(s.dispatcher, handler)
	s.count++
	subscribersGauge.WithLabelValues(s.name).Set(float64(s.count))
	if o := s.observer; o != nil {
		if s.count == 1 {
			o.OnFirstSubscriberAdded()
		}
		o.OnSubscriberAdded()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.remove(unsubscribe)
		})
	}
}

// SubscribeWithCurrent registers the given handler on the source like
// Subscribe and also passes the value returned by current to this handler
// only, when current reports it as known.
// The current value is skipped when a published event reaches the handler
// first. A published event equal to the current value that was just passed
// is not passed again.
func SubscribeWithCurrent[T ComparableEvent](s *Source[T], handler func(T), current func() (T, bool)) context.CancelFunc {
	var mutex sync.Mutex
	var canceled atomic.Bool
	var passed T
	delivered, pendingEqual := false, false
	cancel := s.Subscribe(func(ev T) {
		mutex.Lock()
		defer mutex.Unlock()
		if pendingEqual {
			pendingEqual = false
			if ev == passed {
				return
			}
		}
		delivered = true
		handler(ev)
	})
	if ev, known := current(); known {
		go func() {
			mutex.Lock()
			defer mutex.Unlock()
			if !delivered && !canceled.Load() {
				delivered, pendingEqual, passed = true, true, ev
				currentDeliveredTotal.WithLabelValues(s.name).Inc()
				handler(ev)
			}
		}()
	}
	return func() {
		canceled.Store(true)
		cancel()
	}
}

// remove a single subscription
func (s *Source[T]) remove(unsubscribe func()) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	unsubscribe()
	s.count--
	subscribersGauge.WithLabelValues(s.name).Set(float64(s.count))
	if o := s.observer; o != nil {
		o.OnSubscriberRemoved()
		if s.count == 0 {
			o.OnLastSubscriberRemoved()
		}
	}
}

// Publish the given event to all current subscribers.
func (s *Source[T]) Publish(ev T) {
	eventsPublishedTotal.WithLabelValues(s.name).Inc()
	event.Publish(s.dispatcher, ev)
}

// Count returns the number of active subscribers.
func (s *Source[T]) Count() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.count
}
