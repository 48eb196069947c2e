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

	"github.com/binkynet/Peripherals/pkg/event"
)

// Device contains the API that is supported by all types of devices.
type Device interface {
	// Name of the device (instance)
	Name() string
	// Configure is called once to put the device in the desired state.
	Configure(ctx context.Context) error
}

// Disposable is implemented by devices that hold resources that must be
// released.
type Disposable interface {
	// Close brings the device back to a safe state and releases its resources.
	Close(ctx context.Context) error
}

// EventObserver is notified about the (un)registration of listeners on
// a device event.
type EventObserver = event.Observer

// NoPin is used for pin numbers that are not set.
const NoPin = -1
