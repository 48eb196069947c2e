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
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binkynet/Peripherals/pkg/service/bridge"
)

func TestSPIAddressDefaults(t *testing.T) {
	var a SPIAddress
	assert.Equal(t, "SPI0", a.ControllerName())
	assert.Equal(t, 0, a.ChipSelectLine())
}

func TestSPIAddressSet(t *testing.T) {
	var a SPIAddress
	a.SetControllerName("SPI1")
	require.NoError(t, a.SetChipSelectLine(2))
	assert.Equal(t, "SPI1", a.ControllerName())
	assert.Equal(t, 2, a.ChipSelectLine())

	err := a.SetChipSelectLine(-1)
	assert.True(t, IsInvalidArgument(err))
	assert.Equal(t, 2, a.ChipSelectLine())
}

func TestSPIDeviceTx(t *testing.T) {
	ctx := context.Background()
	vb := bridge.NewVirtualBridge()
	d := newSPIDevice(zerolog.Nop(), "adc", vb, 0)

	err := d.Tx(ctx, []byte{1}, make([]byte, 1))
	assert.True(t, IsNotConfigured(err))

	require.NoError(t, d.SetChipSelectLine(1))
	require.NoError(t, d.Configure(ctx))
	r := make([]byte, 3)
	require.NoError(t, d.Tx(ctx, []byte{1, 2, 3}, r))
	assert.Equal(t, []byte{1, 2, 3}, r)

	require.NoError(t, d.Close(ctx))
	assert.True(t, IsNotConfigured(d.Tx(ctx, []byte{1}, r)))
}

func TestSPIDeviceUnknownController(t *testing.T) {
	ctx := context.Background()
	d := newSPIDevice(zerolog.Nop(), "adc", bridge.NewVirtualBridge(), 0)
	d.SetControllerName("SPI9")
	err := d.Configure(ctx)
	require.Error(t, err)
	assert.True(t, IsDeviceNotFound(err))
	assert.Contains(t, err.Error(), "SPI9")
}

func TestSPIDeviceMissingController(t *testing.T) {
	d := newSPIDevice(zerolog.Nop(), "adc", bridge.NewVirtualBridge(), 0)
	d.SetControllerName("")
	err := d.Configure(context.Background())
	assert.True(t, IsMissingIO(err))
	assert.Contains(t, err.Error(), "controller")
}
