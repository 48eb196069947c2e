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
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binkynet/Peripherals/pkg/service/bridge"
)

// clockwise is one full quadrature cycle in clockwise direction, as (A, B).
var clockwise = [][2]bool{{true, false}, {true, true}, {false, true}, {false, false}}

func feed(q *quadratureDecoder, samples [][2]bool) []RotationDirection {
	var result []RotationDirection
	for _, s := range samples {
		if dir, ok := q.update(s[0], s[1]); ok {
			result = append(result, dir)
		}
	}
	return result
}

func reversed(samples [][2]bool) [][2]bool {
	result := make([][2]bool, 0, len(samples))
	for i := len(samples) - 2; i >= 0; i-- {
		result = append(result, samples[i])
	}
	return append(result, samples[len(samples)-1])
}

func TestQuadratureDecoderClockwise(t *testing.T) {
	q := quadratureDecoder{stepsPerDetent: 4}
	q.update(false, false)
	assert.Equal(t, []RotationDirection{Clockwise}, feed(&q, clockwise))
	assert.Equal(t, []RotationDirection{Clockwise, Clockwise}, feed(&q, append(clockwise, clockwise...)))
}

func TestQuadratureDecoderCounterClockwise(t *testing.T) {
	q := quadratureDecoder{stepsPerDetent: 4}
	q.update(false, false)
	// 00 -> 01 -> 11 -> 10 -> 00
	assert.Equal(t, []RotationDirection{CounterClockwise}, feed(&q, reversed(clockwise)))
}

func TestQuadratureDecoderIgnoresInvalidTransitions(t *testing.T) {
	q := quadratureDecoder{stepsPerDetent: 4}
	q.update(false, false)
	// Both signals change at once
	assert.Empty(t, feed(&q, [][2]bool{{true, true}, {false, false}, {true, true}}))
	assert.Equal(t, 0, q.steps)
}

func TestQuadratureDecoderHalfDetent(t *testing.T) {
	q := quadratureDecoder{stepsPerDetent: 4}
	q.update(false, false)
	assert.Empty(t, feed(&q, clockwise[:2]))
	q.reset()
	assert.False(t, q.initialized)
	assert.Equal(t, 0, q.steps)
}

func TestGPIORotaryEncoder(t *testing.T) {
	ctx := context.Background()
	vb := bridge.NewVirtualBridge()
	d := newGPIORotaryEncoder(zerolog.Nop(), "enc", vb, 10, 11, 12, false, 4, time.Millisecond)
	require.NoError(t, d.Configure(ctx))
	defer d.Close(ctx)

	rotations := make(chan RotationEvent, 16)
	buttons := make(chan ButtonEvent, 16)
	cancelRotation := d.SubscribeRotation(func(e RotationEvent) { rotations <- e })
	cancelButton := d.SubscribeButton(func(e ButtonEvent) { buttons <- e })
	assert.True(t, d.poller.IsRunning())

	require.Eventually(t, func() bool {
		_, sampled := d.sampledState()
		return sampled
	}, testTimeout, time.Millisecond)
	for _, s := range clockwise {
		setLevel(t, vb, 10, s[0])
		setLevel(t, vb, 11, s[1])
		want := abState(s[0], s[1])
		require.Eventually(t, func() bool {
			state, _ := d.sampledState()
			return state == want
		}, testTimeout, time.Millisecond)
	}
	assert.Equal(t, RotationEvent{Encoder: "enc", Direction: Clockwise}, receive(t, rotations))

	setLevel(t, vb, 12, true)
	assert.Equal(t, ButtonPressed, receive(t, buttons).Kind)
	pressed, err := d.IsPressed(ctx)
	require.NoError(t, err)
	assert.True(t, pressed)

	// Polling continues while one of both sources has subscribers.
	cancelRotation()
	assert.True(t, d.poller.IsRunning())
	cancelButton()
	assert.False(t, d.poller.IsRunning())
}

func TestGPIORotaryEncoderWithoutButton(t *testing.T) {
	ctx := context.Background()
	d := newGPIORotaryEncoder(zerolog.Nop(), "enc", bridge.NewVirtualBridge(), 1, 2, NoPin, false, 0, 0)
	require.NoError(t, d.Configure(ctx))
	_, err := d.IsPressed(ctx)
	assert.True(t, IsMissingIO(err))
}

func TestGPIORotaryEncoderMissingPins(t *testing.T) {
	ctx := context.Background()
	d := newGPIORotaryEncoder(zerolog.Nop(), "enc", bridge.NewVirtualBridge(), NoPin, 2, NoPin, false, 0, 0)
	assert.True(t, IsMissingIO(d.Configure(ctx)))
	d = newGPIORotaryEncoder(zerolog.Nop(), "enc", bridge.NewVirtualBridge(), 1, NoPin, NoPin, false, 0, 0)
	err := d.Configure(ctx)
	assert.True(t, IsMissingIO(err))
	assert.Contains(t, err.Error(), "pinB")
}
