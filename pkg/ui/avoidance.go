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

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/binkynet/Peripherals/pkg/avoidance"
	"github.com/binkynet/Peripherals/pkg/dispatch"
	"github.com/binkynet/Peripherals/pkg/service/devices"
)

// sender is implemented by tea.Program.
type sender interface {
	Send(msg tea.Msg)
}

// programDispatcher runs dispatched functions in the Update loop of
// a bubbletea program. Functions are forwarded in order by a queue,
// so Dispatch does not wait for the program.
type programDispatcher struct {
	queue   *dispatch.Queue
	program sender
}

var _ dispatch.Dispatcher = programDispatcher{}

// Dispatch forwards fn to the program.
func (d programDispatcher) Dispatch(fn func()) {
	d.queue.Dispatch(func() {
		d.program.Send(applyMsg(fn))
	})
}

// RunAvoidancePage shows the state of the given sensor in the terminal
// until the user quits or the given context is canceled.
func RunAvoidancePage(ctx context.Context, log zerolog.Logger, sensor devices.Switch, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	page := NewPage(sensor.Name())
	program := tea.NewProgram(page, append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)...)
	queue := dispatch.NewQueue(log)
	go queue.Run(ctx)

	presenter := avoidance.NewPresenter(log, page, programDispatcher{queue: queue, program: program})
	presenter.Attach(sensor)
	defer presenter.Detach()

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "failed to run terminal page")
	}
	return nil
}
