//    Copyright 2017 Ewout Prangsma
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

package bridge

import (
	"fmt"

	"github.com/pkg/errors"
)

// API of the bridge, the hardware layer that gives access to local GPIO pins
// and SPI controllers.
type API interface {
	// Returns number of local pins
	PinCount() int
	// Input initializes a GPIO input pin with the given pin number.
	Input(pinNumber int, activeLow bool) (InputPin, error)
	// Output initializes a GPIO output pin with the given pin number
	// and initial logical value.
	Output(pinNumber int, activeLow bool, initialValue bool) (OutputPin, error)
	// OpenSPI opens a connection to the device on the SPI controller
	// with given name, selected by the given chip select line.
	OpenSPI(controller string, chipSelect int, maxHz int64) (SPIConn, error)

	Close() error
}

// InputPin is the interface satisfied by GPIO input pins.
type InputPin interface {
	Read() (bool, error)
}

// OutputPin is the interface satisfied by GPIO output pins.
type OutputPin interface {
	Write(bool) error
}

// SPIConn is a connection to a single device on an SPI bus.
type SPIConn interface {
	// Tx performs a full duplex transfer.
	Tx(w, r []byte) error
	// Close the connection
	Close() error
}

var (
	// ControllerNotFoundError is returned when an SPI controller cannot be resolved.
	ControllerNotFoundError = errors.New("controller not found")
	// InvalidPinError is returned when a pin number is out of range.
	InvalidPinError = errors.New("invalid pin")
)

// IsControllerNotFound returns true when the cause of the given error
// is ControllerNotFoundError.
func IsControllerNotFound(err error) bool {
	return err != nil && errors.Cause(err) == ControllerNotFoundError
}

// spiPortName returns the registry name of the port for given controller
// and chip select line, e.g. "SPI0.1".
func spiPortName(controller string, chipSelect int) string {
	return fmt.Sprintf("%s.%d", controller, chipSelect)
}
