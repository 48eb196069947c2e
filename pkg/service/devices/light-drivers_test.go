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
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	mqttapi "github.com/eclipse/paho.mqtt.golang"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/binkynet/Peripherals/pkg/service/bridge"
)

func TestGPIOLight(t *testing.T) {
	ctx := context.Background()
	vb := bridge.NewVirtualBridge()
	d := newGPIOLight(zerolog.Nop(), "led", vb, 7, false)
	assert.Equal(t, 1.0, d.Brightness())
	assert.False(t, d.IsColorSettable())

	require.NoError(t, d.Configure(ctx))
	assert.True(t, vb.Level(7))

	require.NoError(t, d.SetBrightness(0))
	assert.False(t, vb.Level(7))
	require.NoError(t, d.SetBrightness(0.2))
	assert.True(t, vb.Level(7))

	assert.True(t, IsColorNotSettable(d.SetColor(colorful.Color{R: 1})))

	require.NoError(t, d.Close(ctx))
	assert.False(t, vb.Level(7))
}

func TestGPIOLightConcurrentSetBrightness(t *testing.T) {
	ctx := context.Background()
	vb := bridge.NewVirtualBridge()
	d := newGPIOLight(zerolog.Nop(), "led", vb, 8, false)
	require.NoError(t, d.Configure(ctx))

	for round := 0; round < 50; round++ {
		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			value := float64(i % 2)
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, d.SetBrightness(value))
			}()
		}
		wg.Wait()
		// Output always matches the stored brightness
		assert.Equal(t, d.Brightness() > 0, vb.Level(8))
	}
}

func TestGPIOLightMissingPin(t *testing.T) {
	d := newGPIOLight(zerolog.Nop(), "led", bridge.NewVirtualBridge(), NoPin, false)
	assert.True(t, IsMissingIO(d.Configure(context.Background())))
}

func createFakeLED(t *testing.T, base, name, maxBrightness string) string {
	dir := filepath.Join(base, name)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "max_brightness"), []byte(maxBrightness+"\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "brightness"), []byte("0"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "trigger"), []byte("[mmc0] none"), 0644))
	return dir
}

func readFile(t *testing.T, path string) string {
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.TrimSpace(string(raw))
}

func TestSysfsLight(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	dir := createFakeLED(t, base, "led0", "255")

	d := newSysfsLight(zerolog.Nop(), "status", base, "led0")
	require.NoError(t, d.SetBrightness(0.5))
	// Not written before Configure
	assert.Equal(t, "0", readFile(t, filepath.Join(dir, "brightness")))

	require.NoError(t, d.Configure(ctx))
	assert.Equal(t, "128", readFile(t, filepath.Join(dir, "brightness")))
	assert.Equal(t, "none", readFile(t, filepath.Join(dir, "trigger")))

	require.NoError(t, d.SetBrightness(3))
	assert.Equal(t, "255", readFile(t, filepath.Join(dir, "brightness")))
	assert.Equal(t, 1.0, d.Brightness())

	assert.True(t, IsColorNotSettable(d.SetColor(colorful.Color{G: 1})))

	require.NoError(t, d.Close(ctx))
	assert.Equal(t, "0", readFile(t, filepath.Join(dir, "brightness")))
}

func TestSysfsLightConcurrentSetBrightness(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	dir := createFakeLED(t, base, "led1", "100")
	d := newSysfsLight(zerolog.Nop(), "status", base, "led1")
	require.NoError(t, d.Configure(ctx))

	values := []float64{0.2, 0.8, 0.5, 0.1}
	for round := 0; round < 20; round++ {
		var wg sync.WaitGroup
		for _, value := range values {
			value := value
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, d.SetBrightness(value))
			}()
		}
		wg.Wait()
		expected := strconv.Itoa(int(math.Round(d.Brightness() * 100)))
		assert.Equal(t, expected, readFile(t, filepath.Join(dir, "brightness")))
	}
}

func TestSysfsLightNotFound(t *testing.T) {
	d := newSysfsLight(zerolog.Nop(), "status", t.TempDir(), "led9")
	err := d.Configure(context.Background())
	require.Error(t, err)
	assert.True(t, IsDeviceNotFound(err))
	assert.Contains(t, err.Error(), "led9")
}

// fakeToken is a completed MQTT token.
type fakeToken struct {
	mqttapi.Token
	err error
}

func (t fakeToken) Wait() bool                       { return true }
func (t fakeToken) WaitTimeout(_ time.Duration) bool { return true }
func (t fakeToken) Error() error                     { return t.err }

// mockClient records calls of the MQTT client methods used by devices.
type mockClient struct {
	mqttapi.Client
	mock.Mock
	handler mqttapi.MessageHandler
}

func (c *mockClient) Connect() mqttapi.Token {
	c.Called()
	return fakeToken{}
}

func (c *mockClient) Disconnect(quiesce uint) {
	c.Called(quiesce)
}

func (c *mockClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqttapi.Token {
	c.Called(topic, qos, retained, payload)
	return fakeToken{}
}

func TestMQTTLight(t *testing.T) {
	ctx := context.Background()
	client := &mockClient{}
	client.On("Connect").Return()
	client.On("Publish", "home/lamp/brightness", byte(0), true, "1.000").Return().Once()
	client.On("Publish", "home/lamp/color", byte(0), true, "#ffffff").Return().Once()
	client.On("Publish", "home/lamp/brightness", byte(0), true, "0.250").Return().Once()
	client.On("Publish", "home/lamp/color", byte(0), true, "#ff0000").Return().Once()
	client.On("Disconnect", uint(mqttDisconnectQuiesce)).Return()

	d := newMQTTLight(zerolog.Nop(), "lamp", "home/lamp", "", "broker:1883")
	d.newClient = func(opts *mqttapi.ClientOptions) mqttapi.Client {
		assert.Equal(t, "lamp", opts.ClientID)
		require.Len(t, opts.Servers, 1)
		assert.Equal(t, "tcp://broker:1883", opts.Servers[0].String())
		return client
	}
	assert.True(t, d.IsColorSettable())

	require.NoError(t, d.Configure(ctx))
	require.NoError(t, d.SetBrightness(0.25))
	require.NoError(t, d.SetColor(colorful.Color{R: 1.5}))
	assert.Equal(t, colorful.Color{R: 1}, d.Color())
	require.NoError(t, d.Close(ctx))

	client.AssertExpectations(t)
}

func TestMQTTLightMissingBroker(t *testing.T) {
	d := newMQTTLight(zerolog.Nop(), "lamp", "home/lamp", "", "")
	assert.True(t, IsMissingIO(d.Configure(context.Background())))
}
