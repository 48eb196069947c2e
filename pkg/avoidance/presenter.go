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

package avoidance

import (
	"context"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/rs/zerolog"

	"github.com/binkynet/Peripherals/pkg/dispatch"
	"github.com/binkynet/Peripherals/pkg/service/devices"
)

const (
	// CloseText is shown when an obstacle is detected.
	CloseText = "Close"
	// FarText is shown when no obstacle is detected.
	FarText = "Far"
)

var (
	// CloseColor is the foreground when an obstacle is detected.
	CloseColor = colorful.Color{R: 1, G: 0, B: 0}
	// FarColor is the foreground when no obstacle is detected.
	FarColor = colorful.Color{R: 0, G: 1, B: 0}
)

// Display is the output of the presenter.
// Its methods are only called on the goroutine of the dispatcher.
type Display interface {
	SetText(text string)
	SetForeground(c colorful.Color)
}

// Presentation returns the text & foreground for the given sensor value.
func Presentation(obstacle bool) (string, colorful.Color) {
	if obstacle {
		return CloseText, CloseColor
	}
	return FarText, FarColor
}

// Render the given sensor value on the display.
func Render(display Display, obstacle bool) {
	text, color := Presentation(obstacle)
	display.SetText(text)
	display.SetForeground(color)
}

// Presenter shows the state of an obstacle avoidance sensor on a display.
// Sensor notifications arrive on arbitrary goroutines; rendering is handed
// to the dispatcher that owns the display.
type Presenter struct {
	log        zerolog.Logger
	display    Display
	dispatcher dispatch.Dispatcher

	mutex       sync.Mutex
	unsubscribe context.CancelFunc
}

// NewPresenter creates a presenter for the given display.
func NewPresenter(log zerolog.Logger, display Display, dispatcher dispatch.Dispatcher) *Presenter {
	return &Presenter{
		log:        log.With().Str("component", "avoidance").Logger(),
		display:    display,
		dispatcher: dispatcher,
	}
}

// Attach subscribes to changes of the given sensor.
// A previously attached sensor is detached.
func (p *Presenter) Attach(sensor devices.Switch) {
	p.Detach()
	unsubscribe := sensor.SubscribeChanged(func(e devices.SwitchChangedEvent) {
		p.OnValueChanged(e.On)
	})
	p.mutex.Lock()
	p.unsubscribe = unsubscribe
	p.mutex.Unlock()
	p.log.Debug().Str("sensor", sensor.Name()).Msg("Attached to sensor")
}

// Detach from the current sensor, if any.
func (p *Presenter) Detach() {
	p.mutex.Lock()
	unsubscribe := p.unsubscribe
	p.unsubscribe = nil
	p.mutex.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

// OnValueChanged schedules rendering of the given sensor value.
func (p *Presenter) OnValueChanged(obstacle bool) {
	p.log.Debug().Bool("obstacle", obstacle).Msg("Sensor value changed")
	p.dispatcher.Dispatch(func() {
		Render(p.display, obstacle)
	})
}
