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

package avoidance

import (
	"context"
	"testing"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/binkynet/Peripherals/pkg/dispatch"
	"github.com/binkynet/Peripherals/pkg/service/devices"
)

type mockDisplay struct {
	mock.Mock
}

func (d *mockDisplay) SetText(text string)            { d.Called(text) }
func (d *mockDisplay) SetForeground(c colorful.Color) { d.Called(c) }

// syncDispatcher runs dispatched functions immediately.
type syncDispatcher struct{}

func (syncDispatcher) Dispatch(fn func()) { fn() }

// fakeSwitch captures the handler of SubscribeChanged.
type fakeSwitch struct {
	devices.Switch
	handler      func(devices.SwitchChangedEvent)
	unsubscribed bool
}

func (s *fakeSwitch) Name() string { return "fake" }

func (s *fakeSwitch) SubscribeChanged(handler func(devices.SwitchChangedEvent)) context.CancelFunc {
	s.handler = handler
	return func() { s.unsubscribed = true }
}

func TestPresentation(t *testing.T) {
	text, color := Presentation(true)
	assert.Equal(t, "Close", text)
	assert.Equal(t, "#ff0000", color.Hex())

	text, color = Presentation(false)
	assert.Equal(t, "Far", text)
	assert.Equal(t, "#00ff00", color.Hex())
}

func TestPresenterRendersNotifications(t *testing.T) {
	display := &mockDisplay{}
	display.On("SetText", "Close").Once()
	display.On("SetForeground", CloseColor).Once()
	display.On("SetText", "Far").Once()
	display.On("SetForeground", FarColor).Once()

	sensor := &fakeSwitch{}
	p := NewPresenter(zerolog.Nop(), display, syncDispatcher{})
	p.Attach(sensor)
	require.NotNil(t, sensor.handler)

	sensor.handler(devices.SwitchChangedEvent{Switch: "fake", On: true})
	sensor.handler(devices.SwitchChangedEvent{Switch: "fake", On: false})
	display.AssertExpectations(t)

	p.Detach()
	assert.True(t, sensor.unsubscribed)
}

// recordingDisplay records all calls.
type recordingDisplay struct {
	texts  []string
	colors []colorful.Color
}

func (d *recordingDisplay) SetText(text string)            { d.texts = append(d.texts, text) }
func (d *recordingDisplay) SetForeground(c colorful.Color) { d.colors = append(d.colors, c) }

func TestPresenterUsesQueue(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q := dispatch.NewQueue(zerolog.Nop())
	go q.Run(ctx)

	display := &recordingDisplay{}
	p := NewPresenter(zerolog.Nop(), display, q)
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.OnValueChanged(true)
		p.OnValueChanged(false)
		p.OnValueChanged(true)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("OnValueChanged blocked")
	}

	var texts []string
	var colors []colorful.Color
	require.NoError(t, q.Invoke(ctx, func() {
		texts = append(texts, display.texts...)
		colors = append(colors, display.colors...)
	}))
	assert.Equal(t, []string{"Close", "Far", "Close"}, texts)
	assert.Equal(t, []colorful.Color{CloseColor, FarColor, CloseColor}, colors)
}
