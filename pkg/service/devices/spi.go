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
	"sync"

	"github.com/pkg/errors"
)

// SPIBasedDevice contains the API supported by devices attached to an SPI bus.
type SPIBasedDevice interface {
	Device
	// ControllerName returns the name of the SPI controller.
	ControllerName() string
	// SetControllerName sets the name of the SPI controller.
	SetControllerName(name string)
	// ChipSelectLine returns the index of the chip select line.
	ChipSelectLine() int
	// SetChipSelectLine sets the index of the chip select line.
	SetChipSelectLine(line int) error
}

const (
	// DefaultSPIControllerName is the controller used when none has been set.
	DefaultSPIControllerName = "SPI0"
	// DefaultChipSelectLine is the chip select line used when none has been set.
	DefaultChipSelectLine = 0
)

// SPIAddress holds the controller name & chip select line of an SPI device.
// The zero value is ready to use.
type SPIAddress struct {
	mutex         sync.Mutex
	controller    string
	controllerSet bool
	chipSelect    int
}

// ControllerName returns the name of the SPI controller,
// DefaultSPIControllerName when never set.
func (a *SPIAddress) ControllerName() string {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	if !a.controllerSet {
		return DefaultSPIControllerName
	}
	return a.controller
}

// SetControllerName sets the name of the SPI controller.
// Setting an empty name leaves the device without a controller.
func (a *SPIAddress) SetControllerName(name string) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.controller = name
	a.controllerSet = true
}

// ChipSelectLine returns the index of the chip select line.
func (a *SPIAddress) ChipSelectLine() int {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return a.chipSelect
}

// SetChipSelectLine sets the index of the chip select line.
func (a *SPIAddress) SetChipSelectLine(line int) error {
	if line < 0 {
		return errors.Wrapf(InvalidArgumentError, "chip select line must be >= 0, got %d", line)
	}
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.chipSelect = line
	return nil
}
