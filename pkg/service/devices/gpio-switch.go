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
	defaultSwitchPollInterval = time.Millisecond * 50
)

type gpioSwitch struct {
	log       zerolog.Logger
	name      string
	api       bridge.API
	pinNumber int
	activeLow bool

	mutex   sync.Mutex
	pin     bridge.InputPin
	last    bool
	hasLast bool
	changed *event.Source[SwitchChangedEvent]
	poller  *poller
}

var _ Switch = &gpioSwitch{}

// newGPIOSwitch creates a switch on a local GPIO input pin.
// The pin is only polled while there are subscribers.
func newGPIOSwitch(log zerolog.Logger, name string, api bridge.API, pinNumber int, activeLow bool, interval time.Duration) *gpioSwitch {
	if interval <= 0 {
		interval = defaultSwitchPollInterval
	}
	d := &gpioSwitch{
		log:       log,
		name:      name,
		api:       api,
		pinNumber: pinNumber,
		activeLow: activeLow,
	}
	d.poller = newPoller(log, name, interval, d.poll, d.resetLast)
	d.changed = event.NewSource[SwitchChangedEvent](name+".changed", d.poller)
	return d
}

// Name of the device
func (d *gpioSwitch) Name() string {
	return d.name
}

// Configure initializes the input pin.
func (d *gpioSwitch) Configure(ctx context.Context) error {
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
func (d *gpioSwitch) Close(ctx context.Context) error {
	if n := d.changed.Count(); n > 0 {
		d.log.Debug().Int("subscribers", n).Msg("Closing switch with active subscribers")
	}
	d.poller.Close()
	d.mutex.Lock()
	d.pin = nil
	d.mutex.Unlock()
	return nil
}

// IsOn reads the current state of the switch.
func (d *gpioSwitch) IsOn(ctx context.Context) (bool, error) {
	return d.read()
}

// SubscribeChanged registers a handler for state changes.
// When the poll loop already sampled the pin, the handler is called with
// that state, since the next event is only published on a change.
func (d *gpioSwitch) SubscribeChanged(handler func(SwitchChangedEvent)) context.CancelFunc {
	return event.SubscribeWithCurrent(d.changed, handler, d.current)
}

// current returns the last sampled state, if any.
func (d *gpioSwitch) current() (SwitchChangedEvent, bool) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return SwitchChangedEvent{Switch: d.name, On: d.last}, d.hasLast
}

// resetLast forgets the last sampled state.
func (d *gpioSwitch) resetLast() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.hasLast = false
}

func (d *gpioSwitch) read() (bool, error) {
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

// poll reads the pin once and publishes a change event when needed.
func (d *gpioSwitch) poll() error {
	value, err := d.read()
	if err != nil {
		return err
	}
	d.mutex.Lock()
	if d.hasLast && value == d.last {
		d.mutex.Unlock()
		return nil
	}
	if d.hasLast {
		inputChangesTotal.WithLabelValues(d.name).Inc()
	}
	d.last, d.hasLast = value, true
	d.mutex.Unlock()
	d.log.Debug().Bool("on", value).Msg("switch changed")
	d.changed.Publish(SwitchChangedEvent{Switch: d.name, On: value})
	return nil
}
