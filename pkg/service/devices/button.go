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

// PushButton contains the API supported by momentary push buttons.
type PushButton interface {
	Device
	// IsPressed reads the current state of the button.
	IsPressed(ctx context.Context) (bool, error)
	// SubscribeButton registers a handler for button events.
	// Call the returned function to unsubscribe.
	SubscribeButton(handler func(ButtonEvent)) context.CancelFunc
}

// ButtonEventKind identifies what happened to a button.
type ButtonEventKind int

const (
	// ButtonPressed is published when the button goes down.
	ButtonPressed ButtonEventKind = iota
	// ButtonReleased is published when the button goes up.
	ButtonReleased
	// ButtonClicked is published after a press followed by a release.
	ButtonClicked
)

func (k ButtonEventKind) String() string {
	switch k {
	case ButtonPressed:
		return "Pressed"
	case ButtonReleased:
		return "Released"
	case ButtonClicked:
		return "Clicked"
	default:
		return "Unknown"
	}
}

// ButtonEvent is published when the state of a button changes.
type ButtonEvent struct {
	// Name of the button
	Button string
	Kind   ButtonEventKind
}

// Type returns the event type identifier of ButtonEvent.
func (ButtonEvent) Type() uint32 { return EventTypeButton }

// buttonTracker turns a sequence of pressed samples into button events.
// The first sample only establishes the initial state.
type buttonTracker struct {
	known   bool
	pressed bool
}

// update the tracker with a new sample and return the resulting events.
func (t *buttonTracker) update(pressed bool) []ButtonEventKind {
	if !t.known {
		t.known, t.pressed = true, pressed
		return nil
	}
	if pressed == t.pressed {
		return nil
	}
	t.pressed = pressed
	if pressed {
		return []ButtonEventKind{ButtonPressed}
	}
	return []ButtonEventKind{ButtonReleased, ButtonClicked}
}

// reset forgets the last known state.
func (t *buttonTracker) reset() {
	t.known, t.pressed = false, false
}
