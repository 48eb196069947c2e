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

package devices

import (
	"context"
)

// RotaryEncoder contains the API supported by rotary encoders.
// Most encoders include a push button in their shaft.
type RotaryEncoder interface {
	PushButton
	Disposable
	// SubscribeRotation registers a handler that is called once for every
	// detent the encoder is turned.
	// Call the returned function to unsubscribe.
	SubscribeRotation(handler func(RotationEvent)) context.CancelFunc
}

// RotationDirection is the direction of a rotation.
type RotationDirection int

const (
	// Clockwise rotation
	Clockwise RotationDirection = iota
	// CounterClockwise rotation
	CounterClockwise
)

func (d RotationDirection) String() string {
	switch d {
	case Clockwise:
		return "Clockwise"
	case CounterClockwise:
		return "CounterClockwise"
	default:
		return "Unknown"
	}
}

// RotationEvent is published when a rotary encoder is turned.
type RotationEvent struct {
	// Name of the encoder
	Encoder   string
	Direction RotationDirection
}

// Type returns the event type identifier of RotationEvent.
func (RotationEvent) Type() uint32 { return EventTypeRotation }

const (
	defaultStepsPerDetent = 4
)

// quadratureSteps maps (previous<<2 | current) AB states to a step.
// Invalid transitions (both signals changed) yield 0.
var quadratureSteps = [16]int8{
	0, -1, 1, 0,
	1, 0, 0, -1,
	-1, 0, 0, 1,
	0, 1, -1, 0,
}

// quadratureDecoder converts A/B samples of an encoder into detents.
type quadratureDecoder struct {
	stepsPerDetent int
	state          uint8
	steps          int
	initialized    bool
}

func abState(a, b bool) uint8 {
	var s uint8
	if a {
		s |= 2
	}
	if b {
		s |= 1
	}
	return s
}

// update the decoder with a new sample.
// Returns the direction and true when a full detent has been completed.
func (q *quadratureDecoder) update(a, b bool) (RotationDirection, bool) {
	current := abState(a, b)
	if !q.initialized {
		q.state, q.initialized = current, true
		return Clockwise, false
	}
	q.steps += int(quadratureSteps[q.state<<2|current])
	q.state = current
	perDetent := q.stepsPerDetent
	if perDetent <= 0 {
		perDetent = defaultStepsPerDetent
	}
	switch {
	case q.steps >= perDetent:
		q.steps = 0
		return Clockwise, true
	case q.steps <= -perDetent:
		q.steps = 0
		return CounterClockwise, true
	default:
		return Clockwise, false
	}
}

// reset forgets all state.
func (q *quadratureDecoder) reset() {
	q.state, q.steps, q.initialized = 0, 0, false
}
