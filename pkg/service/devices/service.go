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
	"fmt"
	"sort"
	"strings"
	"sync"

	aerr "github.com/ewoutp/go-aggregate-error"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/binkynet/Peripherals/pkg/config"
	"github.com/binkynet/Peripherals/pkg/service/bridge"
)

// Service contains the API that is exposed by the device service.
type Service interface {
	// DeviceByName returns the configured device with given name.
	// Returns a DeviceNotFoundError if not found or not configured.
	DeviceByName(name string) (Device, error)
	// Configure is called once to put all devices in the desired state.
	Configure(ctx context.Context) error
	// Close brings all devices back to a safe state.
	Close(context.Context) error
	// Get a sorted list of all device names
	GetDeviceNames() []string
	// Get a sorted list of configured device names
	GetConfiguredDeviceNames() []string
	// Get a sorted list of unconfigured device names
	GetUnconfiguredDeviceNames() []string
}

type service struct {
	log               zerolog.Logger
	mutex             sync.RWMutex
	devices           map[string]Device
	configuredDevices map[string]Device
}

// NewService instantiates a new Service and Device's for the given
// configuration.
func NewService(conf config.Configuration, bAPI bridge.API, log zerolog.Logger) (Service, error) {
	s := &service{
		log:               log.With().Str("component", "device-service").Logger(),
		devices:           make(map[string]Device),
		configuredDevices: make(map[string]Device),
	}
	for _, c := range conf.Devices {
		log := s.log.With().Str("device", c.Name).Logger()
		var dev Device
		switch c.Type {
		case config.DeviceTypeSwitch:
			dev = newGPIOSwitch(log, c.Name, bAPI, config.PinOr(c.Pin, NoPin), c.ActiveLow, c.PollInterval())
		case config.DeviceTypeButton:
			dev = newGPIOButton(log, c.Name, bAPI, config.PinOr(c.Pin, NoPin), c.ActiveLow, c.PollInterval())
		case config.DeviceTypeRotaryEncoder:
			dev = newGPIORotaryEncoder(log, c.Name, bAPI,
				config.PinOr(c.PinA, NoPin), config.PinOr(c.PinB, NoPin), config.PinOr(c.ButtonPin, NoPin),
				c.ActiveLow, c.StepsPerDetent, c.PollInterval())
		case config.DeviceTypeGPIOLight:
			dev = newGPIOLight(log, c.Name, bAPI, config.PinOr(c.Pin, NoPin), c.ActiveLow)
		case config.DeviceTypeSysfsLight:
			dev = newSysfsLight(log, c.Name, c.SysfsPath, c.LED)
		case config.DeviceTypeMQTTLight:
			topic, clientID := mqttSettings(conf.MQTT, c)
			dev = newMQTTLight(log, c.Name, topic, clientID, conf.MQTT.Broker)
		case config.DeviceTypeMQTTSwitch:
			topic, clientID := mqttSettings(conf.MQTT, c)
			dev = newMQTTSwitch(log, c.Name, topic, clientID, conf.MQTT.Broker)
		case config.DeviceTypeSPI:
			spi := newSPIDevice(log, c.Name, bAPI, c.MaxHz)
			if c.Controller != nil {
				spi.SetControllerName(*c.Controller)
			}
			if c.ChipSelect != nil {
				if err := spi.SetChipSelectLine(*c.ChipSelect); err != nil {
					return nil, errors.Wrapf(err, "device '%s'", c.Name)
				}
			}
			dev = spi
		default:
			return nil, errors.Wrapf(InvalidArgumentError, "Unsupported device type '%s'", c.Type)
		}
		s.devices[c.Name] = dev
	}
	devicesCreatedTotal.Set(float64(len(s.devices)))
	return s, nil
}

// mqttSettings returns the topic prefix & client ID of an MQTT device.
func mqttSettings(conf config.MQTTConfig, c config.Device) (string, string) {
	topic := c.Topic
	if topic == "" {
		topic = defaultMQTTTopicPrefix(c.Name)
	}
	clientID := c.Name
	if prefix := conf.ClientIDPrefix; prefix != "" {
		clientID = fmt.Sprintf("%s-%s", prefix, c.Name)
	}
	return topic, clientID
}

// Generate the default MQTT topic prefix for the device with given name.
func defaultMQTTTopicPrefix(name string) string {
	return strings.ToLower(fmt.Sprintf("peripherals/%s/", name))
}

// DeviceByName returns the device with given name.
func (s *service) DeviceByName(name string) (Device, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if dev, ok := s.configuredDevices[name]; ok {
		return dev, nil
	}
	return nil, NewDeviceNotFoundError(name)
}

// Configure is called once to put all devices in the desired state.
func (s *service) Configure(ctx context.Context) error {
	log := s.log
	var ae aerr.AggregateError
	configuredDevices := make(map[string]Device)
	for name, d := range s.devices {
		log := log.With().Str("device", name).Logger()
		log.Debug().Msg("configuring device...")
		if err := d.Configure(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to configure device")
			ae.Add(err)
		} else {
			configuredDevices[name] = d
			log.Debug().Msg("configured device")
		}
	}
	s.mutex.Lock()
	s.configuredDevices = configuredDevices
	s.mutex.Unlock()
	log.Info().Int("count", len(configuredDevices)).Msg("Configured devices")
	devicesConfiguredTotal.Set(float64(len(configuredDevices)))
	return ae.AsError()
}

// Close brings all devices back to a safe state.
func (s *service) Close(ctx context.Context) error {
	var ae aerr.AggregateError
	for _, d := range s.devices {
		if x, ok := d.(Disposable); ok {
			if err := x.Close(ctx); err != nil {
				ae.Add(err)
			}
		}
	}
	s.mutex.Lock()
	s.configuredDevices = make(map[string]Device)
	s.mutex.Unlock()
	devicesConfiguredTotal.Set(0)
	return ae.AsError()
}

// Get a sorted list of all device names
func (s *service) GetDeviceNames() []string {
	result := lo.Keys(s.devices)
	sort.Strings(result)
	return result
}

// Get a sorted list of configured device names
func (s *service) GetConfiguredDeviceNames() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	result := lo.Keys(s.configuredDevices)
	sort.Strings(result)
	return result
}

// Get a sorted list of unconfigured device names
func (s *service) GetUnconfiguredDeviceNames() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	result := lo.Filter(lo.Keys(s.devices), func(name string, _ int) bool {
		_, found := s.configuredDevices[name]
		return !found
	})
	sort.Strings(result)
	return result
}

// DeviceAs returns the configured device with given name, if it
// supports capability T.
func DeviceAs[T Device](s Service, name string) (T, error) {
	var zero T
	dev, err := s.DeviceByName(name)
	if err != nil {
		return zero, err
	}
	result, ok := dev.(T)
	if !ok {
		return zero, errors.Wrapf(InvalidArgumentError, "device '%s' does not support %s", name, capabilityName[T]())
	}
	return result, nil
}

// capabilityName returns the name of the capability T.
func capabilityName[T Device]() string {
	var dev T
	return strings.TrimPrefix(fmt.Sprintf("%T", &dev), "*devices.")
}

// Capabilities returns the names of the capabilities supported by the
// given device.
func Capabilities(dev Device) []string {
	var result []string
	if _, ok := dev.(Light); ok {
		result = append(result, "light")
	}
	if _, ok := dev.(SPIBasedDevice); ok {
		result = append(result, "spi")
	}
	if _, ok := dev.(RotaryEncoder); ok {
		result = append(result, "rotary-encoder")
	}
	if _, ok := dev.(PushButton); ok {
		result = append(result, "push-button")
	}
	if _, ok := dev.(Switch); ok {
		result = append(result, "switch")
	}
	return result
}
