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

// Switch contains the API supported by switch-like inputs, such as
// proximity or obstacle avoidance sensors.
type Switch interface {
	Device
	// IsOn reads the current state of the switch.
	IsOn(ctx context.Context) (bool, error)
	// SubscribeChanged registers a handler that is called with the initial
	// state and on every change of the switch.
	// Call the returned function to unsubscribe.
	SubscribeChanged(handler func(SwitchChangedEvent)) context.CancelFunc
}

// SwitchChangedEvent is published when the state of a switch changes.
type SwitchChangedEvent struct {
	// Name of the switch
	Switch string
	// New state
	On bool
}

// Type returns the event type identifier of SwitchChangedEvent.
func (SwitchChangedEvent) Type() uint32 { return EventTypeSwitchChanged }
