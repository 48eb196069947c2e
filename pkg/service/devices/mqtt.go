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
	"fmt"
	"strings"
	"time"

	mqttapi "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

const (
	mqttPublishTimeout    = time.Millisecond * 200
	mqttDisconnectQuiesce = 250
)

// mqttClientFactory creates a (not yet connected) MQTT client.
type mqttClientFactory func(opts *mqttapi.ClientOptions) mqttapi.Client

// defaultMQTTClientOptions returns the client options used by all MQTT devices.
func defaultMQTTClientOptions(brokerAddress, clientID string) *mqttapi.ClientOptions {
	if !strings.Contains(brokerAddress, "://") {
		brokerAddress = "tcp://" + brokerAddress
	}
	opts := mqttapi.NewClientOptions().
		AddBroker(brokerAddress).
		SetClientID(clientID)
	opts.SetKeepAlive(2 * time.Second)
	opts.SetPingTimeout(1 * time.Second)
	opts.SetOrderMatters(false)
	opts.SetAutoReconnect(true)
	opts.SetDefaultPublishHandler(func(c mqttapi.Client, m mqttapi.Message) {
		// Ignore messages when no subscription match
	})
	return opts
}

// connectMQTT creates a client and connects it to the broker.
func connectMQTT(factory mqttClientFactory, brokerAddress, clientID string) (mqttapi.Client, error) {
	if factory == nil {
		factory = mqttapi.NewClient
	}
	client := factory(defaultMQTTClientOptions(brokerAddress, clientID))
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to mqtt: %w", token.Error())
	}
	return client, nil
}

// publishRetained publishes a retained message with QoS 0.
// Delivery failures are logged, not returned.
func publishRetained(log zerolog.Logger, client mqttapi.Client, topic, payload string) {
	token := client.Publish(topic, 0, true, payload)
	if !token.WaitTimeout(mqttPublishTimeout) {
		log.Error().
			Str("topic", topic).
			Str("payload", payload).
			Msg("failed to deliver MQTT message in time")
	} else if err := token.Error(); err != nil {
		log.Error().Err(err).
			Str("topic", topic).
			Str("payload", payload).
			Msg("failed to deliver MQTT message")
	}
}

// normalizeTopicPrefix makes sure the prefix ends with a single '/'.
func normalizeTopicPrefix(prefix string) string {
	return strings.TrimSuffix(prefix, "/") + "/"
}

// Parse a string into a bool
func parseBool(str string) (bool, error) {
	str = strings.ToLower(strings.TrimSpace(str))
	switch str {
	case "1", "t", "true", "on", "yes", "close", "closed":
		return true, nil
	case "0", "f", "false", "off", "no", "far", "open":
		return false, nil
	}
	return false, fmt.Errorf("invalid bool value '%s'", str)
}
