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
	"time"

	mqttapi "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func (c *mockClient) Subscribe(topic string, qos byte, callback mqttapi.MessageHandler) mqttapi.Token {
	c.Called(topic, qos)
	c.handler = callback
	return fakeToken{}
}

type fakeMessage struct {
	mqttapi.Message
	topic   string
	payload string
}

func (m fakeMessage) Topic() string   { return m.topic }
func (m fakeMessage) Payload() []byte { return []byte(m.payload) }

func TestMQTTSwitch(t *testing.T) {
	ctx := context.Background()
	client := &mockClient{}
	client.On("Connect").Return()
	client.On("Subscribe", "home/sensor/state", byte(0)).Return()
	client.On("Disconnect", mock.Anything).Return()

	d := newMQTTSwitch(zerolog.Nop(), "sensor", "home/sensor/", "", "broker:1883")
	var onConnect mqttapi.OnConnectHandler
	d.newClient = func(opts *mqttapi.ClientOptions) mqttapi.Client {
		onConnect = opts.OnConnect
		return client
	}
	_, err := d.IsOn(ctx)
	assert.True(t, IsNotConfigured(err))

	require.NoError(t, d.Configure(ctx))
	require.NotNil(t, onConnect)
	onConnect(client)
	require.NotNil(t, client.handler)

	events := make(chan SwitchChangedEvent, 16)
	cancel := d.SubscribeChanged(func(e SwitchChangedEvent) { events <- e })
	defer cancel()

	send := func(payload string) {
		client.handler(client, fakeMessage{topic: "home/sensor/state", payload: payload})
	}
	send("ON")
	assert.Equal(t, SwitchChangedEvent{Switch: "sensor", On: true}, receive(t, events))
	on, err := d.IsOn(ctx)
	require.NoError(t, err)
	assert.True(t, on)

	// Same state & garbage are ignored
	send("true")
	send("maybe")
	send("off")
	assert.Equal(t, SwitchChangedEvent{Switch: "sensor", On: false}, receive(t, events))

	// A new subscriber receives the current state
	late := make(chan SwitchChangedEvent, 16)
	cancelLate := d.SubscribeChanged(func(e SwitchChangedEvent) { late <- e })
	defer cancelLate()
	assert.False(t, receive(t, late).On)
	// Existing subscribers get no repeated event
	select {
	case e := <-events:
		t.Fatalf("unexpected event %v", e)
	case <-time.After(time.Millisecond * 20):
	}

	require.NoError(t, d.Close(ctx))
	client.AssertExpectations(t)
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"1", "true", "ON", " yes ", "close"} {
		v, err := parseBool(s)
		require.NoError(t, err, s)
		assert.True(t, v, s)
	}
	for _, s := range []string{"0", "false", "OFF", "no", "far"} {
		v, err := parseBool(s)
		require.NoError(t, err, s)
		assert.False(t, v, s)
	}
	_, err := parseBool("maybe")
	assert.Error(t, err)
}
