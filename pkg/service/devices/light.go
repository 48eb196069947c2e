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
	"math"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// Light contains the API supported by indicator lights.
type Light interface {
	Device
	// Brightness returns the brightness in the range 0.0 (off) .. 1.0 (full).
	Brightness() float64
	// SetBrightness sets the brightness. Values outside 0.0 .. 1.0 are clamped.
	SetBrightness(value float64) error
	// Color returns the current color of the light.
	Color() colorful.Color
	// SetColor sets the color of the light. Channels are clamped to 0.0 .. 1.0.
	SetColor(c colorful.Color) error
	// IsColorSettable returns true when the color of the light can be changed.
	IsColorSettable() bool
}

const (
	// DefaultBrightness is the brightness of a light that has never been set.
	DefaultBrightness = 1.0
)

var (
	// DefaultColor is the color of a light that has never been set.
	DefaultColor = colorful.Color{R: 1, G: 1, B: 1}
)

// LightState holds the brightness & color of a light.
// The zero value is ready to use.
type LightState struct {
	// ColorSettable is returned by IsColorSettable.
	ColorSettable bool

	mutex         sync.Mutex
	brightness    float64
	brightnessSet bool
	color         colorful.Color
	colorSet      bool
}

// Brightness returns the brightness, DefaultBrightness when never set.
func (s *LightState) Brightness() float64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if !s.brightnessSet {
		return DefaultBrightness
	}
	return s.brightness
}

// Color returns the color, DefaultColor when never set.
func (s *LightState) Color() colorful.Color {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if !s.colorSet {
		return DefaultColor
	}
	return s.color
}

// IsColorSettable returns true when the color of the light can be changed.
func (s *LightState) IsColorSettable() bool {
	return s.ColorSettable
}

// ApplyBrightness clamps & stores the given brightness.
// Returns the stored value.
func (s *LightState) ApplyBrightness(value float64) (float64, error) {
	if math.IsNaN(value) {
		return 0, errors.Wrap(InvalidArgumentError, "brightness is NaN")
	}
	value = math.Max(0, math.Min(1, value))

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.brightness = value
	s.brightnessSet = true
	return value, nil
}

// ApplyColor clamps & stores the given color.
// Returns the stored value.
func (s *LightState) ApplyColor(c colorful.Color) (colorful.Color, error) {
	if !s.ColorSettable {
		return colorful.Color{}, maskAny(ColorNotSettableError)
	}
	if math.IsNaN(c.R) || math.IsNaN(c.G) || math.IsNaN(c.B) {
		return colorful.Color{}, errors.Wrap(InvalidArgumentError, "color channel is NaN")
	}
	c = c.Clamped()

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.color = c
	s.colorSet = true
	return c, nil
}
