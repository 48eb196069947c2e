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

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// Configuration holds the devices attached to this host.
type Configuration struct {
	// MQTT broker settings, used by MQTT devices
	MQTT MQTTConfig `toml:"mqtt"`
	// List of devices
	Devices []Device `toml:"devices"`
}

// MQTTConfig holds the settings of the MQTT broker.
type MQTTConfig struct {
	// Broker address (host:port or URL)
	Broker string `toml:"broker"`
	// Prefix of the client ID of MQTT devices
	ClientIDPrefix string `toml:"client_id_prefix"`
}

// Load reads & validates the configuration in the file with given path.
func Load(path string) (Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Configuration{}, errors.Wrapf(err, "failed to read config file '%s'", path)
	}
	return Parse(data)
}

// Parse & validate the given TOML encoded configuration.
func Parse(data []byte) (Configuration, error) {
	var c Configuration
	if err := toml.Unmarshal(data, &c); err != nil {
		return Configuration{}, errors.Wrap(ValidationError, err.Error())
	}
	if err := c.Validate(); err != nil {
		return Configuration{}, maskAny(err)
	}
	return c, nil
}

// DeviceByName returns the device with given name.
// Return false if not found.
func (c Configuration) DeviceByName(name string) (Device, bool) {
	for _, d := range c.Devices {
		if d.Name == name {
			return d, true
		}
	}
	return Device{}, false
}

// Validate the given configuration, returning nil on ok,
// or an error upon validation issues.
func (c Configuration) Validate() error {
	names := make(map[string]struct{})
	for _, d := range c.Devices {
		if err := d.Validate(); err != nil {
			return maskAny(err)
		}
		if _, found := names[d.Name]; found {
			return errors.Wrapf(ValidationError, "Duplicate device name '%s'", d.Name)
		}
		names[d.Name] = struct{}{}
		if d.Type.IsMQTT() && c.MQTT.Broker == "" {
			return errors.Wrapf(ValidationError, "Device '%s' requires an MQTT broker", d.Name)
		}
	}
	return nil
}
