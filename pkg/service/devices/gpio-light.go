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

	"github.com/lucasb-eyer/go-colorful"
	"github.com/rs/zerolog"

	"github.com/binkynet/Peripherals/pkg/service/bridge"
)

// gpioLight is a single color light on a local GPIO output pin.
// It is switched on for any brightness above 0.
type gpioLight struct {
	LightState

	log       zerolog.Logger
	name      string
	api       bridge.API
	pinNumber int
	activeLow bool

	mutex sync.Mutex
	pin   bridge.OutputPin
}

var _ Light = &gpioLight{}

// newGPIOLight creates a light on a local GPIO output pin.
func newGPIOLight(log zerolog.Logger, name string, api bridge.API, pinNumber int, activeLow bool) *gpioLight {
	return &gpioLight{
		log:       log,
		name:      name,
		api:       api,
		pinNumber: pinNumber,
		activeLow: activeLow,
	}
}

// Name of the device
func (d *gpioLight) Name() string {
	return d.name
}

// Configure initializes the output pin with the current state of the light.
func (d *gpioLight) Configure(ctx context.Context) error {
	if d.pinNumber == NoPin {
		return NewMissingIOError("pin")
	}
	d.mutex.Lock()
	defer d.mutex.Unlock()

	pin, err := d.api.Output(d.pinNumber, d.activeLow, d.Brightness() > 0)
	if err != nil {
		return maskAny(err)
	}
	d.pin = pin
	lightBrightnessGauge.WithLabelValues(d.name).Set(d.Brightness())
	return nil
}

// Close switches the light off.
func (d *gpioLight) Close(ctx context.Context) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.pin != nil {
		pin := d.pin
		d.pin = nil
		if err := pin.Write(false); err != nil {
			return maskAny(err)
		}
	}
	return nil
}

// SetBrightness switches the light on (value > 0) or off.
func (d *gpioLight) SetBrightness(value float64) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	value, err := d.ApplyBrightness(value)
	if err != nil {
		return err
	}

	lightBrightnessGauge.WithLabelValues(d.name).Set(value)
	if d.pin == nil {
		// Applied on Configure
		return nil
	}
	return maskAny(d.pin.Write(value > 0))
}

// SetColor always fails, the color of a GPIO light is fixed.
func (d *gpioLight) SetColor(c colorful.Color) error {
	_, err := d.ApplyColor(c)
	return err
}
