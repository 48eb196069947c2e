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

	aerr "github.com/ewoutp/go-aggregate-error"
	"github.com/pkg/errors"
)

const (
	virtualPinCount = 32
)

// VirtualBridge implements the bridge for a virtual worker.
// Pins are kept in memory and SPI ports loop back what is written.
type VirtualBridge struct {
	mutex       sync.Mutex
	levels      []bool
	controllers map[string]int
	spiConns    []*spiConn
}

// NewVirtualBridge implements the bridge for a virtual environment.
// It provides controllers "SPI0" (2 chip select lines) and "SPI1" (3 lines).
func NewVirtualBridge() *VirtualBridge {
	p := &VirtualBridge{
		levels:      make([]bool, virtualPinCount),
		controllers: make(map[string]int),
	}
	p.AddSPIController("SPI0", 2)
	p.AddSPIController("SPI1", 3)
	return p
}

// Returns number of local pins
func (p *VirtualBridge) PinCount() int {
	return virtualPinCount
}

// SetLevel sets the physical level of the pin with given number.
func (p *VirtualBridge) SetLevel(pinNumber int, level bool) error {
	if err := p.checkPin(pinNumber); err != nil {
		return err
	}
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.levels[pinNumber] = level
	return nil
}

// Level returns the physical level of the pin with given number.
func (p *VirtualBridge) Level(pinNumber int) bool {
	if p.checkPin(pinNumber) != nil {
		return false
	}
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.levels[pinNumber]
}

// AddSPIController registers a controller with given number of chip select lines.
func (p *VirtualBridge) AddSPIController(name string, chipSelectLines int) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.controllers[name] = chipSelectLines
}

// Input initializes a GPIO input pin with the given pin number.
func (p *VirtualBridge) Input(pinNumber int, activeLow bool) (InputPin, error) {
	if err := p.checkPin(pinNumber); err != nil {
		return nil, err
	}
	return &virtualPin{bridge: p, number: pinNumber, activeLow: activeLow}, nil
}

// Output initializes a GPIO output pin with the given pin number
// and initial logical value.
func (p *VirtualBridge) Output(pinNumber int, activeLow bool, initialValue bool) (OutputPin, error) {
	if err := p.checkPin(pinNumber); err != nil {
		return nil, err
	}
	pin := &virtualPin{bridge: p, number: pinNumber, activeLow: activeLow}
	if err := pin.Write(initialValue); err != nil {
		return nil, err
	}
	return pin, nil
}

// OpenSPI opens a loopback connection on the controller with given name.
func (p *VirtualBridge) OpenSPI(controller string, chipSelect int, maxHz int64) (SPIConn, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	name := spiPortName(controller, chipSelect)
	lines, found := p.controllers[controller]
	if !found || chipSelect < 0 || chipSelect >= lines {
		return nil, errors.Wrapf(ControllerNotFoundError, "SPI port '%s'", name)
	}
	c := newSPIConn(name, nil, loopback{})
	p.spiConns = append(p.spiConns, c)
	return c, nil
}

func (p *VirtualBridge) Close() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	var ae aerr.AggregateError
	for _, c := range p.spiConns {
		ae.Add(c.Close())
	}
	p.spiConns = nil
	return ae.AsError()
}

func (p *VirtualBridge) checkPin(pinNumber int) error {
	if pinNumber < 0 || pinNumber >= virtualPinCount {
		return errors.Wrapf(InvalidPinError, "pin %d out of range", pinNumber)
	}
	return nil
}

type virtualPin struct {
	bridge    *VirtualBridge
	number    int
	activeLow bool
}

// Read the logical value of the pin.
func (vp *virtualPin) Read() (bool, error) {
	return vp.bridge.Level(vp.number) != vp.activeLow, nil
}

// Write the logical value of the pin.
func (vp *virtualPin) Write(value bool) error {
	return vp.bridge.SetLevel(vp.number, value != vp.activeLow)
}

// loopback copies the written bytes into the read buffer.
type loopback struct{}

func (loopback) Tx(w, r []byte) error {
	copy(r, w)
	return nil
}
