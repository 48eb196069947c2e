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
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/binkynet/Peripherals/pkg/service/bridge"
)

// SPIDevice is a generic device on an SPI bus.
type SPIDevice interface {
	SPIBasedDevice
	Disposable
	// Tx performs a full duplex transfer with the device.
	Tx(ctx context.Context, w, r []byte) error
}

const (
	defaultSPIMaxHz = 1000000
)

type spiDevice struct {
	SPIAddress

	log   zerolog.Logger
	name  string
	api   bridge.API
	maxHz int64
	mutex sync.Mutex
	conn  bridge.SPIConn
}

// newSPIDevice creates a generic SPI device.
// A maxHz of 0 selects the default speed.
func newSPIDevice(log zerolog.Logger, name string, api bridge.API, maxHz int64) *spiDevice {
	if maxHz <= 0 {
		maxHz = defaultSPIMaxHz
	}
	return &spiDevice{
		log:   log,
		name:  name,
		api:   api,
		maxHz: maxHz,
	}
}

// Name of the device
func (d *spiDevice) Name() string {
	return d.name
}

// Configure resolves the SPI controller and opens the connection.
func (d *spiDevice) Configure(ctx context.Context) error {
	controller := d.ControllerName()
	if controller == "" {
		return NewMissingIOError("controller")
	}
	conn, err := d.api.OpenSPI(controller, d.ChipSelectLine(), d.maxHz)
	if bridge.IsControllerNotFound(err) {
		d.log.Warn().Err(err).Str("controller", controller).Msg("SPI controller not found")
		return NewDeviceNotFoundError(controller)
	} else if err != nil {
		return errors.Wrapf(err, "OpenSPI[%s] failed", d.name)
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.conn != nil {
		d.conn.Close()
	}
	d.conn = conn
	d.log.Debug().
		Str("controller", controller).
		Int("chip-select", d.ChipSelectLine()).
		Msg("Opened SPI connection")
	return nil
}

// Close the SPI connection.
func (d *spiDevice) Close(ctx context.Context) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.conn != nil {
		conn := d.conn
		d.conn = nil
		if err := conn.Close(); err != nil {
			return errors.Wrap(err, "Close failed")
		}
	}
	return nil
}

// Tx performs a full duplex transfer with the device.
func (d *spiDevice) Tx(ctx context.Context, w, r []byte) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.conn == nil {
		return errors.Wrapf(NotConfiguredError, "SPI device '%s'", d.name)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.conn.Tx(w, r)
}
