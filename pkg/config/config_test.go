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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
[mqtt]
broker = "localhost:1883"
client_id_prefix = "kitchen"

[[devices]]
name = "proximity"
type = "switch"
pin = 17
active_low = true

[[devices]]
name = "volume"
type = "rotary-encoder"
pin_a = 5
pin_b = 6
button_pin = 13
poll_interval_ms = 2

[[devices]]
name = "lamp"
type = "mqtt-light"
topic = "kitchen/lamp"

[[devices]]
name = "adc"
type = "spi"
controller = "SPI1"
chip_select = 1
`

func TestParse(t *testing.T) {
	c, err := Parse([]byte(sample))
	require.NoError(t, err)
	assert.Equal(t, "localhost:1883", c.MQTT.Broker)
	require.Len(t, c.Devices, 4)

	d, found := c.DeviceByName("proximity")
	require.True(t, found)
	assert.Equal(t, DeviceTypeSwitch, d.Type)
	assert.Equal(t, 17, PinOr(d.Pin, -1))
	assert.True(t, d.ActiveLow)

	d, found = c.DeviceByName("volume")
	require.True(t, found)
	assert.Equal(t, 13, PinOr(d.ButtonPin, -1))
	assert.Equal(t, time.Millisecond*2, d.PollInterval())
	assert.Equal(t, -1, PinOr(d.Pin, -1))

	d, found = c.DeviceByName("adc")
	require.True(t, found)
	require.NotNil(t, d.Controller)
	assert.Equal(t, "SPI1", *d.Controller)

	_, found = c.DeviceByName("unknown")
	assert.False(t, found)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.toml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0644))
	c, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, c.Devices, 4)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := map[string]string{
		"empty name":     "[[devices]]\ntype = \"switch\"\n",
		"invalid type":   "[[devices]]\nname = \"x\"\ntype = \"toaster\"\n",
		"duplicate name": "[[devices]]\nname = \"x\"\ntype = \"switch\"\n[[devices]]\nname = \"x\"\ntype = \"button\"\n",
		"no broker":      "[[devices]]\nname = \"x\"\ntype = \"mqtt-light\"\n",
		"bad interval":   "[[devices]]\nname = \"x\"\ntype = \"switch\"\npoll_interval_ms = -1\n",
		"bad toml":       "[[devices]\n",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(input))
			require.Error(t, err)
			assert.True(t, IsValidation(err), err.Error())
		})
	}
}

func TestLoadSampleConfig(t *testing.T) {
	conf, err := Load("../../peripherals.toml")
	require.NoError(t, err)
	assert.Len(t, conf.Devices, 7)
	_, found := conf.DeviceByName("proximity")
	assert.True(t, found)
}
