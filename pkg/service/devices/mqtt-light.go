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
	"sync"

	mqttapi "github.com/eclipse/paho.mqtt.golang"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rs/zerolog"
)

// mqttLight is a virtual light that publishes its state as retained MQTT
// messages:
//
//	<prefix>brightness  0.000 .. 1.000
//	<prefix>color       #rrggbb
type mqttLight struct {
	LightState

	log           zerolog.Logger
	name          string
	topicPrefix   string
	clientID      string
	brokerAddress string
	newClient     mqttClientFactory

	mutex  sync.Mutex
	client mqttapi.Client
}

var _ Light = &mqttLight{}

// newMQTTLight creates a light that publishes on the given broker.
func newMQTTLight(log zerolog.Logger, name, topicPrefix, clientID, brokerAddress string) *mqttLight {
	if clientID == "" {
		clientID = name
	}
	return &mqttLight{
		LightState:    LightState{ColorSettable: true},
		log:           log,
		name:          name,
		topicPrefix:   normalizeTopicPrefix(topicPrefix),
		clientID:      clientID,
		brokerAddress: brokerAddress,
	}
}

// Name of the device
func (d *mqttLight) Name() string {
	return d.name
}

// Configure connects to the broker and publishes the current state.
func (d *mqttLight) Configure(ctx context.Context) error {
	if d.brokerAddress == "" {
		return NewMissingIOError("broker")
	}
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.client != nil {
		d.client.Disconnect(mqttDisconnectQuiesce)
		d.client = nil
	}
	client, err := connectMQTT(d.newClient, d.brokerAddress, d.clientID)
	if err != nil {
		return maskAny(err)
	}
	d.client = client
	d.publishBrightness(d.Brightness())
	d.publishColor(d.Color())
	return nil
}

// Close disconnects from the broker.
func (d *mqttLight) Close(ctx context.Context) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.client != nil {
		d.client.Disconnect(mqttDisconnectQuiesce)
		d.client = nil
	}
	return nil
}

// SetBrightness sets & publishes the brightness.
func (d *mqttLight) SetBrightness(value float64) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	value, err := d.ApplyBrightness(value)
	if err != nil {
		return err
	}
	d.publishBrightness(value)
	return nil
}

// SetColor sets & publishes the color.
func (d *mqttLight) SetColor(c colorful.Color) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	c, err := d.ApplyColor(c)
	if err != nil {
		return err
	}
	d.publishColor(c)
	return nil
}

// Requires the mutex to be held.
func (d *mqttLight) publishBrightness(value float64) {
	lightBrightnessGauge.WithLabelValues(d.name).Set(value)
	if d.client != nil {
		publishRetained(d.log, d.client, d.topicPrefix+"brightness", fmt.Sprintf("%.3f", value))
	}
}

// Requires the mutex to be held.
func (d *mqttLight) publishColor(c colorful.Color) {
	if d.client != nil {
		publishRetained(d.log, d.client, d.topicPrefix+"color", c.Hex())
	}
}
