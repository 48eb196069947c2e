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
	"strings"
	"sync"

	mqttapi "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/binkynet/Peripherals/pkg/event"
)

// mqttSwitch is a switch whose state is received on the MQTT topic
// <prefix>state.
type mqttSwitch struct {
	log           zerolog.Logger
	name          string
	topicPrefix   string
	clientID      string
	brokerAddress string
	newClient     mqttClientFactory

	mutex   sync.Mutex
	client  mqttapi.Client
	on      bool
	hasOn   bool
	changed *event.Source[SwitchChangedEvent]
}

var _ Switch = &mqttSwitch{}

// newMQTTSwitch creates a switch that listens on the given broker.
func newMQTTSwitch(log zerolog.Logger, name, topicPrefix, clientID, brokerAddress string) *mqttSwitch {
	if clientID == "" {
		clientID = name
	}
	d := &mqttSwitch{
		log:           log,
		name:          name,
		topicPrefix:   normalizeTopicPrefix(topicPrefix),
		clientID:      clientID,
		brokerAddress: brokerAddress,
	}
	d.changed = event.NewSource[SwitchChangedEvent](name+".changed", nil)
	return d
}

// Name of the device
func (d *mqttSwitch) Name() string {
	return d.name
}

func (d *mqttSwitch) stateTopic() string {
	return d.topicPrefix + "state"
}

// Configure connects to the broker and subscribes to the state topic.
func (d *mqttSwitch) Configure(ctx context.Context) error {
	if d.brokerAddress == "" {
		return NewMissingIOError("broker")
	}
	topic := d.stateTopic()
	log := d.log.With().Str("topic", topic).Logger()
	factory := d.newClient
	if factory == nil {
		factory = mqttapi.NewClient
	}
	client, err := connectMQTT(func(opts *mqttapi.ClientOptions) mqttapi.Client {
		// Subscribe on every (re)connect
		opts.SetOnConnectHandler(func(c mqttapi.Client) {
			log.Debug().Msg("Connected to MQTT")
			if token := c.Subscribe(topic, 0, d.onMessage); token.Wait() && token.Error() != nil {
				log.Error().Err(token.Error()).Msg("failed to subscribe")
			} else {
				log.Debug().Msg("Subscribed to MQTT topic")
			}
		})
		return factory(opts)
	}, d.brokerAddress, d.clientID)
	if err != nil {
		return maskAny(err)
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.client != nil {
		d.client.Disconnect(mqttDisconnectQuiesce)
	}
	d.client = client
	return nil
}

// Close disconnects from the broker.
func (d *mqttSwitch) Close(ctx context.Context) error {
	if n := d.changed.Count(); n > 0 {
		d.log.Debug().Int("subscribers", n).Msg("Closing switch with active subscribers")
	}
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if c := d.client; c != nil {
		d.client = nil
		c.Disconnect(mqttDisconnectQuiesce)
	}
	return nil
}

// IsOn returns the last received state, false when nothing was received yet.
func (d *mqttSwitch) IsOn(ctx context.Context) (bool, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.client == nil {
		return false, maskAny(NotConfiguredError)
	}
	return d.on, nil
}

// SubscribeChanged registers a handler for state changes.
// When a state was already received, the handler is called with it.
func (d *mqttSwitch) SubscribeChanged(handler func(SwitchChangedEvent)) context.CancelFunc {
	return event.SubscribeWithCurrent(d.changed, handler, d.current)
}

// current returns the last received state, if any.
func (d *mqttSwitch) current() (SwitchChangedEvent, bool) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return SwitchChangedEvent{Switch: d.name, On: d.on}, d.hasOn
}

// Receive messages
func (d *mqttSwitch) onMessage(client mqttapi.Client, msg mqttapi.Message) {
	payload := strings.TrimSpace(string(msg.Payload()))
	on, err := parseBool(payload)
	if err != nil {
		d.log.Warn().
			Str("payload", payload).
			Msg("Unknown payload in state message")
		return
	}

	d.mutex.Lock()
	changed := !d.hasOn || d.on != on
	d.on, d.hasOn = on, true
	d.mutex.Unlock()

	if changed {
		inputChangesTotal.WithLabelValues(d.name).Inc()
		d.log.Debug().Bool("on", on).Msg("switch changed")
		d.changed.Publish(SwitchChangedEvent{Switch: d.name, On: on})
	}
}
