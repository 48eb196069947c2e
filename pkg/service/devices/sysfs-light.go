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
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	// DefaultSysfsLEDPath is the directory that contains the Linux LED class devices.
	DefaultSysfsLEDPath = "/sys/class/leds"
)

// sysfsLight is a light controlled through the Linux LED class,
// e.g. /sys/class/leds/led0.
// Brightness is scaled to the max_brightness of the LED.
type sysfsLight struct {
	LightState

	log      zerolog.Logger
	name     string
	basePath string
	ledName  string

	mutex         sync.Mutex
	configured    bool
	maxBrightness int
}

var _ Light = &sysfsLight{}

// newSysfsLight creates a light for the LED with given name.
// An empty basePath selects DefaultSysfsLEDPath.
func newSysfsLight(log zerolog.Logger, name, basePath, ledName string) *sysfsLight {
	if basePath == "" {
		basePath = DefaultSysfsLEDPath
	}
	return &sysfsLight{
		log:      log,
		name:     name,
		basePath: basePath,
		ledName:  ledName,
	}
}

// Name of the device
func (d *sysfsLight) Name() string {
	return d.name
}

// ledPath returns the directory of the LED.
func (d *sysfsLight) ledPath() string {
	return filepath.Join(d.basePath, d.ledName)
}

// Configure locates the LED, takes manual control of it and applies
// the current brightness.
func (d *sysfsLight) Configure(ctx context.Context) error {
	if d.ledName == "" {
		return NewMissingIOError("led")
	}
	ledPath := d.ledPath()
	if _, err := os.Stat(ledPath); os.IsNotExist(err) {
		return NewDeviceNotFoundError(d.ledName)
	} else if err != nil {
		return maskAny(err)
	}

	maxBrightness := 1
	if raw, err := os.ReadFile(filepath.Join(ledPath, "max_brightness")); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(string(raw))); err == nil && v > 0 {
			maxBrightness = v
		}
	}
	// Disable any trigger so the brightness is under our control
	if err := os.WriteFile(filepath.Join(ledPath, "trigger"), []byte("none"), 0644); err != nil {
		d.log.Warn().Err(err).Str("led", d.ledName).Msg("Failed to set LED trigger")
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.maxBrightness = maxBrightness
	d.configured = true
	return d.writeBrightness(d.Brightness())
}

// Close switches the LED off.
func (d *sysfsLight) Close(ctx context.Context) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if !d.configured {
		return nil
	}
	d.configured = false
	return d.writeBrightness(0)
}

// SetBrightness sets the brightness of the LED.
func (d *sysfsLight) SetBrightness(value float64) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	value, err := d.ApplyBrightness(value)
	if err != nil {
		return err
	}

	if !d.configured {
		// Applied on Configure
		return nil
	}
	return d.writeBrightness(value)
}

// SetColor always fails, the color of a sysfs LED is fixed.
func (d *sysfsLight) SetColor(c colorful.Color) error {
	_, err := d.ApplyColor(c)
	return err
}

// writeBrightness writes the scaled brightness. Requires the mutex to be held.
func (d *sysfsLight) writeBrightness(value float64) error {
	raw := int(math.Round(value * float64(d.maxBrightness)))
	path := filepath.Join(d.ledPath(), "brightness")
	if err := os.WriteFile(path, []byte(strconv.Itoa(raw)), 0644); err != nil {
		return errors.Wrapf(err, "failed to set brightness of LED '%s'", d.ledName)
	}
	lightBrightnessGauge.WithLabelValues(d.name).Set(value)
	return nil
}
