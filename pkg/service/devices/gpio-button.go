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
	defaultButtonPollInterval = time.Millisecond * 10
)

type gpioButton struct {
	log       zerolog.Logger
	name      string
	api       bridge.API
	pinNumber int
	activeLow bool

	mutex   sync.Mutex
	pin     bridge.InputPin
	buttons *event.Source[ButtonEvent]
	poller  *poller

	trackerMutex sync.Mutex
	tracker      buttonTracker
}

var _ PushButton = &gpioButton{}

// newGPIOButton creates a push button on a local GPIO input pin.
func newGPIOButton(log zerolog.Logger, name string, api bridge.API, pinNumber int, activeLow bool, interval time.Duration) *gpioButton {
	if interval <= 0 {
		interval = defaultButtonPollInterval
	}
	d := &gpioButton{
		log:       log,
		name:      name,
		api:       api,
		pinNumber: pinNumber,
		activeLow: activeLow,
	}
	d.poller = newPoller(log, name, interval, d.poll, d.resetTracker)
	d.buttons = event.NewSource[ButtonEvent](name+".button", d.poller)
	return d
}

// Name of the device
func (d *gpioButton) Name() string {
	return d.name
}

// Configure initializes the input pin.
func (d *gpioButton) Configure(ctx context.Context) error {
	if d.pinNumber == NoPin {
		return NewMissingIOError("pin")
	}
	pin, err := d.api.Input(d.pinNumber, d.activeLow)
	if err != nil {
		return maskAny(err)
	}
	d.mutex.Lock()
	d.pin = pin
	d.mutex.Unlock()
	return nil
}

// Close stops polling and releases the pin.
func (d *gpioButton) Close(ctx context.Context) error {
	d.poller.Close()
	d.mutex.Lock()
	d.pin = nil
	d.mutex.Unlock()
	return nil
}

// IsPressed reads the current state of the button.
func (d *gpioButton) IsPressed(ctx context.Context) (bool, error) {
	d.mutex.Lock()
	pin := d.pin
	d.mutex.Unlock()
	if pin == nil {
		return false, maskAny(NotConfiguredError)
	}
	value, err := pin.Read()
	if err != nil {
		inputReadErrorsTotal.WithLabelValues(d.name).Inc()
		return false, maskAny(err)
	}
	return value, nil
}

// SubscribeButton registers a handler for button events.
func (d *gpioButton) SubscribeButton(handler func(ButtonEvent)) context.CancelFunc {
	return d.buttons.Subscribe(handler)
}

// resetTracker forgets the last sampled state.
func (d *gpioButton) resetTracker() {
	d.trackerMutex.Lock()
	defer d.trackerMutex.Unlock()
	d.tracker.reset()
}

// isSampled returns true once the poll loop has read the pin.
func (d *gpioButton) isSampled() bool {
	d.trackerMutex.Lock()
	defer d.trackerMutex.Unlock()
	return d.tracker.known
}

func (d *gpioButton) poll() error {
	pressed, err := d.IsPressed(context.Background())
	if err != nil {
		return err
	}
	d.trackerMutex.Lock()
	kinds := d.tracker.update(pressed)
	d.trackerMutex.Unlock()
	for _, kind := range kinds {
		if kind == ButtonPressed {
			inputChangesTotal.WithLabelValues(d.name).Inc()
		}
		d.buttons.Publish(ButtonEvent{Button: d.name, Kind: kind})
	}
	return nil
}
