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

package config

import (
	"time"

	"github.com/pkg/errors"
)

// Device holds the configuration of a single device.
// Which fields are used depends on the type of the device.
type Device struct {
	// Unique name of the device
	Name string `toml:"name"`
	// Type of the device
	Type DeviceType `toml:"type"`

	// GPIO pin (switch, button, gpio-light)
	Pin *int `toml:"pin,omitempty"`
	// Quadrature pins (rotary-encoder)
	PinA *int `toml:"pin_a,omitempty"`
	PinB *int `toml:"pin_b,omitempty"`
	// Optional push button pin (rotary-encoder)
	ButtonPin *int `toml:"button_pin,omitempty"`
	// If set, a low level means active
	ActiveLow bool `toml:"active_low,omitempty"`
	// Poll interval of inputs in milliseconds, 0 for the default
	PollIntervalMs int `toml:"poll_interval_ms,omitempty"`
	// Quadrature steps per detent (rotary-encoder), 0 for the default
	StepsPerDetent int `toml:"steps_per_detent,omitempty"`

	// SPI controller & chip select line (spi)
	Controller *string `toml:"controller,omitempty"`
	ChipSelect *int    `toml:"chip_select,omitempty"`
	MaxHz      int64   `toml:"max_hz,omitempty"`

	// Name of the LED in the sysfs LED class (sysfs-light)
	LED string `toml:"led,omitempty"`
	// Directory of the sysfs LED class, empty for the default
	SysfsPath string `toml:"sysfs_path,omitempty"`

	// Topic prefix (mqtt-light, mqtt-switch)
	Topic string `toml:"topic,omitempty"`
}

// DeviceType identifies a type of devices.
type DeviceType string

const (
	DeviceTypeSwitch        DeviceType = "switch"
	DeviceTypeButton        DeviceType = "button"
	DeviceTypeRotaryEncoder DeviceType = "rotary-encoder"
	DeviceTypeGPIOLight     DeviceType = "gpio-light"
	DeviceTypeSysfsLight    DeviceType = "sysfs-light"
	DeviceTypeMQTTLight     DeviceType = "mqtt-light"
	DeviceTypeMQTTSwitch    DeviceType = "mqtt-switch"
	DeviceTypeSPI           DeviceType = "spi"
)

// Validate the given type, returning nil on ok,
// or an error upon validation issues.
func (t DeviceType) Validate() error {
	switch t {
	case DeviceTypeSwitch, DeviceTypeButton, DeviceTypeRotaryEncoder,
		DeviceTypeGPIOLight, DeviceTypeSysfsLight, DeviceTypeMQTTLight,
		DeviceTypeMQTTSwitch, DeviceTypeSPI:
		return nil
	default:
		return errors.Wrapf(ValidationError, "invalid device type '%s'", string(t))
	}
}

// IsMQTT returns true for device types that require an MQTT broker.
func (t DeviceType) IsMQTT() bool {
	return t == DeviceTypeMQTTLight || t == DeviceTypeMQTTSwitch
}

// Validate the given configuration, returning nil on ok,
// or an error upon validation issues.
// Missing IO settings are not validated here, they are reported
// when the device is configured.
func (d Device) Validate() error {
	if d.Name == "" {
		return errors.Wrap(ValidationError, "Name is empty")
	}
	if err := d.Type.Validate(); err != nil {
		return errors.Wrapf(ValidationError, "Error in Type of '%s': %s", d.Name, err.Error())
	}
	if d.PollIntervalMs < 0 {
		return errors.Wrapf(ValidationError, "PollIntervalMs of '%s' must be >= 0", d.Name)
	}
	if d.StepsPerDetent < 0 {
		return errors.Wrapf(ValidationError, "StepsPerDetent of '%s' must be >= 0", d.Name)
	}
	if d.MaxHz < 0 {
		return errors.Wrapf(ValidationError, "MaxHz of '%s' must be >= 0", d.Name)
	}
	return nil
}

// PollInterval returns the configured poll interval, 0 for the default.
func (d Device) PollInterval() time.Duration {
	return time.Duration(d.PollIntervalMs) * time.Millisecond
}

// PinOr returns the value of the given pin or def when not set.
func PinOr(pin *int, def int) int {
	if pin == nil {
		return def
	}
	return *pin
}
