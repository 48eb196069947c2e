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

package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/rs/zerolog"

	"github.com/binkynet/Peripherals/pkg/avoidance"
	"github.com/binkynet/Peripherals/pkg/dispatch"
	"github.com/binkynet/Peripherals/pkg/service/devices"
)

// SessionHandler serves the avoidance page to SSH sessions.
// Every session gets its own page & presenter.
type SessionHandler struct {
	log    zerolog.Logger
	sensor devices.Switch
}

// NewSessionHandler creates a handler showing the given sensor.
func NewSessionHandler(log zerolog.Logger, sensor devices.Switch) *SessionHandler {
	return &SessionHandler{
		log:    log.With().Str("component", "ssh-ui").Logger(),
		sensor: sensor,
	}
}

// Handler creates the model for a new SSH session.
// The presenter is detached when the session ends.
func (h *SessionHandler) Handler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	ctx := sess.Context()
	log := h.log.With().Str("user", sess.User()).Logger()
	updates := make(chan applyMsg)
	queue := dispatch.NewQueue(log)
	go queue.Run(ctx)

	page := NewPage(h.sensor.Name())
	page.updates = updates
	presenter := avoidance.NewPresenter(log, page, channelDispatcher{
		queue:   queue,
		updates: updates,
		done:    ctx.Done(),
	})
	presenter.Attach(h.sensor)
	go func() {
		<-ctx.Done()
		presenter.Detach()
		log.Debug().Msg("SSH session ended")
	}()
	return page, []tea.ProgramOption{tea.WithAltScreen()}
}

// channelDispatcher runs dispatched functions in the Update loop of a
// page that reads its updates channel.
type channelDispatcher struct {
	queue   *dispatch.Queue
	updates chan<- applyMsg
	done    <-chan struct{}
}

var _ dispatch.Dispatcher = channelDispatcher{}

// Dispatch forwards fn to the page.
func (d channelDispatcher) Dispatch(fn func()) {
	d.queue.Dispatch(func() {
		select {
		case d.updates <- applyMsg(fn):
		case <-d.done:
		}
	})
}
