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
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/binkynet/Peripherals/pkg/event"
	"github.com/binkynet/Peripherals/pkg/service/bridge"
)

const (
	defaultEncoderPollInterval = time.Millisecond
)

type gpioRotaryEncoder struct {
	log       zerolog.Logger
	name      string
	api       bridge.API
	pinA      int
	pinB      int
	buttonPin int
	activeLow bool

	mutex     sync.Mutex
	a, b      bridge.InputPin
	button    bridge.InputPin
	rotations *event.Source[RotationEvent]
	buttons   *event.Source[ButtonEvent]
	poller    *poller

	sampleMutex sync.Mutex
	decoder     quadratureDecoder
	tracker     buttonTracker
}

var _ RotaryEncoder = &gpioRotaryEncoder{}

// newGPIORotaryEncoder creates a quadrature encoder on local GPIO input pins
// A and B, with an optional push button pin (NoPin when absent).
// Rotation and button events share a single poll loop.
func newGPIORotaryEncoder(log zerolog.Logger, name string, api bridge.API, pinA, pinB, buttonPin int, activeLow bool, stepsPerDetent int, interval time.Duration) *gpioRotaryEncoder {
	if interval <= 0 {
		interval = defaultEncoderPollInterval
	}
	if stepsPerDetent <= 0 {
		stepsPerDetent = defaultStepsPerDetent
	}
	d := &gpioRotaryEncoder{
		log:       log,
		name:      name,
		api:       api,
		pinA:      pinA,
		pinB:      pinB,
		buttonPin: buttonPin,
		activeLow: activeLow,
		decoder:   quadratureDecoder{stepsPerDetent: stepsPerDetent},
	}
	d.poller = newPoller(log, name, interval, d.poll, d.resetSamples)
	d.rotations = event.NewSource[RotationEvent](name+".rotation", d.poller)
	d.buttons = event.NewSource[ButtonEvent](name+".button", d.poller)
	return d
}

// Name of the device
func (d *gpioRotaryEncoder) Name() string {
	return d.name
}

// Configure initializes the input pins.
func (d *gpioRotaryEncoder) Configure(ctx context.Context) error {
	if d.pinA == NoPin {
		return NewMissingIOError("pinA")
	}
	if d.pinB == NoPin {
		return NewMissingIOError("pinB")
	}
	a, err := d.api.Input(d.pinA, d.activeLow)
	if err != nil {
		return maskAny(err)
	}
	b, err := d.api.Input(d.pinB, d.activeLow)
	if err != nil {
		return maskAny(err)
	}
	var button bridge.InputPin
	if d.buttonPin != NoPin {
		button, err = d.api.Input(d.buttonPin, d.activeLow)
		if err != nil {
			return maskAny(err)
		}
	}
	d.mutex.Lock()
	d.a, d.b, d.button = a, b, button
	d.mutex.Unlock()
	return nil
}

// Close stops polling and releases the pins.
func (d *gpioRotaryEncoder) Close(ctx context.Context) error {
	d.poller.Close()
	d.mutex.Lock()
	d.a, d.b, d.button = nil, nil, nil
	d.mutex.Unlock()
	return nil
}

// IsPressed reads the current state of the push button.
func (d *gpioRotaryEncoder) IsPressed(ctx context.Context) (bool, error) {
	if d.buttonPin == NoPin {
		return false, NewMissingIOError("buttonPin")
	}
	d.mutex.Lock()
	button := d.button
	d.mutex.Unlock()
	if button == nil {
		return false, maskAny(NotConfiguredError)
	}
	value, err := button.Read()
	if err != nil {
		inputReadErrorsTotal.WithLabelValues(d.name).Inc()
		return false, maskAny(err)
	}
	return value, nil
}

// SubscribeButton registers a handler for events of the push button.
func (d *gpioRotaryEncoder) SubscribeButton(handler func(ButtonEvent)) context.CancelFunc {
	return d.buttons.Subscribe(handler)
}

// SubscribeRotation registers a handler for rotation events.
func (d *gpioRotaryEncoder) SubscribeRotation(handler func(RotationEvent)) context.CancelFunc {
	return d.rotations.Subscribe(handler)
}

// resetSamples forgets the last sampled pin states.
func (d *gpioRotaryEncoder) resetSamples() {
	d.sampleMutex.Lock()
	defer d.sampleMutex.Unlock()
	d.decoder.reset()
	d.tracker.reset()
}

// sampledState returns the last sampled A/B state and whether the pins
// have been sampled since polling started.
func (d *gpioRotaryEncoder) sampledState() (uint8, bool) {
	d.sampleMutex.Lock()
	defer d.sampleMutex.Unlock()
	return d.decoder.state, d.decoder.initialized
}

func (d *gpioRotaryEncoder) poll() error {
	d.mutex.Lock()
	a, b, button := d.a, d.b, d.button
	d.mutex.Unlock()
	if a == nil || b == nil {
		return maskAny(NotConfiguredError)
	}
	va, err := a.Read()
	if err != nil {
		inputReadErrorsTotal.WithLabelValues(d.name).Inc()
		return maskAny(err)
	}
	vb, err := b.Read()
	if err != nil {
		inputReadErrorsTotal.WithLabelValues(d.name).Inc()
		return maskAny(err)
	}
	d.sampleMutex.Lock()
	dir, ok := d.decoder.update(va, vb)
	d.sampleMutex.Unlock()
	if ok {
		rotationsTotal.WithLabelValues(d.name, dir.String()).Inc()
		d.rotations.Publish(RotationEvent{Encoder: d.name, Direction: dir})
	}
	if button != nil {
		pressed, err := button.Read()
		if err != nil {
			inputReadErrorsTotal.WithLabelValues(d.name).Inc()
			return maskAny(err)
		}
		d.sampleMutex.Lock()
		kinds := d.tracker.update(pressed)
		d.sampleMutex.Unlock()
		for _, kind := range kinds {
			d.buttons.Publish(ButtonEvent{Button: d.name, Kind: kind})
		}
	}
	return nil
}
