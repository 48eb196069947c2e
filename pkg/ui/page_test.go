// Copyright 2023 Ewout Prangsma
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

package ui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binkynet/Peripherals/pkg/avoidance"
	"github.com/binkynet/Peripherals/pkg/config"
	"github.com/binkynet/Peripherals/pkg/dispatch"
	"github.com/binkynet/Peripherals/pkg/service/bridge"
	"github.com/binkynet/Peripherals/pkg/service/devices"
)

func TestPageApply(t *testing.T) {
	p := NewPage("proximity")
	assert.Contains(t, p.View(), "proximity")

	_, cmd := p.Update(applyMsg(func() { avoidance.Render(p, true) }))
	assert.Nil(t, cmd)
	assert.Equal(t, "Close", p.Text())
	assert.Equal(t, avoidance.CloseColor, p.Foreground())
	assert.Contains(t, p.View(), "Close")

	p.Update(applyMsg(func() { avoidance.Render(p, false) }))
	assert.Equal(t, "Far", p.Text())
	assert.Equal(t, avoidance.FarColor, p.Foreground())
}

func TestPageQuit(t *testing.T) {
	p := NewPage("proximity")
	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

// recordingSender collects messages sent to a program.
type recordingSender struct {
	msgs chan tea.Msg
}

func (s recordingSender) Send(msg tea.Msg) { s.msgs <- msg }

func TestProgramDispatcherOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q := dispatch.NewQueue(zerolog.Nop())
	go q.Run(ctx)

	s := recordingSender{msgs: make(chan tea.Msg, 10)}
	d := programDispatcher{queue: q, program: s}
	var order []string
	d.Dispatch(func() { order = append(order, "a") })
	d.Dispatch(func() { order = append(order, "b") })

	for i := 0; i < 2; i++ {
		select {
		case msg := <-s.msgs:
			fn, ok := msg.(applyMsg)
			require.True(t, ok)
			fn()
		case <-time.After(time.Second):
			t.Fatal("timeout")
		}
	}
	assert.Equal(t, "a,b", strings.Join(order, ","))
}

func TestPageUpdatesChannel(t *testing.T) {
	updates := make(chan applyMsg, 1)
	p := NewPage("proximity")
	p.updates = updates

	cmd := p.waitForUpdate()
	require.NotNil(t, cmd)
	updates <- applyMsg(func() { avoidance.Render(p, true) })
	msg := cmd()
	_, next := p.Update(msg)
	assert.Equal(t, "Close", p.Text())
	// Page keeps listening for updates
	assert.NotNil(t, next)

	close(updates)
	assert.Nil(t, p.waitForUpdate()())
}

func TestChannelDispatcherStopsOnDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := dispatch.NewQueue(zerolog.Nop())
	go q.Run(ctx)

	updates := make(chan applyMsg)
	d := channelDispatcher{queue: q, updates: updates, done: ctx.Done()}
	d.Dispatch(func() {})
	select {
	case fn := <-updates:
		assert.NotNil(t, fn)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for dispatched function")
	}
	cancel()
	// Must not block after done
	d.Dispatch(func() {})
}

// applyNext waits for the next update of a page and applies it.
func applyNext(t *testing.T, p *Page, updates <-chan applyMsg) {
	t.Helper()
	select {
	case fn := <-updates:
		p.Update(fn)
	case <-time.After(time.Second * 2):
		t.Fatal("timeout waiting for page update")
	}
}

func TestPagesShareSensor(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	vb := bridge.NewVirtualBridge()
	require.NoError(t, vb.SetLevel(3, true))
	pin := 3
	svc, err := devices.NewService(config.Configuration{
		Devices: []config.Device{
			{Name: "proximity", Type: config.DeviceTypeSwitch, Pin: &pin, PollIntervalMs: 1},
		},
	}, vb, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, svc.Configure(ctx))
	defer svc.Close(context.Background())
	sensor, err := devices.DeviceAs[devices.Switch](svc, "proximity")
	require.NoError(t, err)

	q := dispatch.NewQueue(zerolog.Nop())
	go q.Run(ctx)
	newPage := func() (*Page, chan applyMsg) {
		updates := make(chan applyMsg, 8)
		page := NewPage("proximity")
		page.updates = updates
		presenter := avoidance.NewPresenter(zerolog.Nop(), page, channelDispatcher{queue: q, updates: updates, done: ctx.Done()})
		presenter.Attach(sensor)
		t.Cleanup(presenter.Detach)
		return page, updates
	}

	first, firstUpdates := newPage()
	applyNext(t, first, firstUpdates)
	assert.Equal(t, "Close", first.Text())

	// A page that joins later shows the current state right away
	second, secondUpdates := newPage()
	applyNext(t, second, secondUpdates)
	assert.Equal(t, "Close", second.Text())
	assert.Equal(t, avoidance.CloseColor, second.Foreground())

	require.NoError(t, vb.SetLevel(3, false))
	applyNext(t, first, firstUpdates)
	applyNext(t, second, secondUpdates)
	assert.Equal(t, "Far", first.Text())
	assert.Equal(t, "Far", second.Text())
}
