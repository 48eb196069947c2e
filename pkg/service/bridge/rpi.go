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
	"sync"

	"github.com/ecc1/gpio"
	aerr "github.com/ewoutp/go-aggregate-error"
	"github.com/pkg/errors"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/conn/spi"
	"periph.io/x/periph/conn/spi/spireg"
	"periph.io/x/periph/host"
)

const (
	// BCM GPIO 0..27
	rpiPinCount = 28
)

type piBridge struct {
	mutex    sync.Mutex
	spiConns []*spiConn
}

// NewRaspberryPiBridge implements the bridge for Raspberry PI's
func NewRaspberryPiBridge() (API, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "host.Init failed")
	}
	return &piBridge{}, nil
}

// Returns number of local pins
func (p *piBridge) PinCount() int {
	return rpiPinCount
}

// Input initializes a GPIO input pin with the given pin number.
func (p *piBridge) Input(pinNumber int, activeLow bool) (InputPin, error) {
	if pinNumber < 0 || pinNumber >= rpiPinCount {
		return nil, errors.Wrapf(InvalidPinError, "pin %d out of range", pinNumber)
	}
	return gpio.Input(pinNumber, activeLow)
}

// Output initializes a GPIO output pin with the given pin number
// and initial logical value.
func (p *piBridge) Output(pinNumber int, activeLow bool, initialValue bool) (OutputPin, error) {
	if pinNumber < 0 || pinNumber >= rpiPinCount {
		return nil, errors.Wrapf(InvalidPinError, "pin %d out of range", pinNumber)
	}
	return gpio.Output(pinNumber, activeLow, initialValue)
}

// OpenSPI opens a connection to the device on the SPI controller
// with given name, selected by the given chip select line.
func (p *piBridge) OpenSPI(controller string, chipSelect int, maxHz int64) (SPIConn, error) {
	name := spiPortName(controller, chipSelect)
	port, err := spireg.Open(name)
	if err != nil {
		return nil, errors.Wrapf(ControllerNotFoundError, "SPI port '%s': %s", name, err)
	}
	conn, err := port.Connect(physic.Frequency(maxHz)*physic.Hertz, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, errors.Wrapf(err, "Connect[%s] failed", name)
	}
	c := newSPIConn(name, port, conn)

	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.spiConns = append(p.spiConns, c)
	return c, nil
}

func (p *piBridge) Close() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	var ae aerr.AggregateError
	for _, c := range p.spiConns {
		ae.Add(c.Close())
	}
	p.spiConns = nil
	return ae.AsError()
}
