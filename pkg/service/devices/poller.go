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
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/binkynet/Peripherals/pkg/service/util"
)

// poller runs a poll function periodically while it is acquired by at least
// one event source. It implements EventObserver so it can be passed to
// event.NewSource directly.
type poller struct {
	log         zerolog.Logger
	description string
	interval    time.Duration
	poll        func() error
	reset       func()

	mutex  sync.Mutex
	users  int
	cancel context.CancelFunc
	done   chan struct{}
}

var _ EventObserver = &poller{}

// newPoller creates a poller that calls poll every interval.
// reset (optional) is called before the poll loop is (re)started.
func newPoller(log zerolog.Logger, description string, interval time.Duration, poll func() error, reset func()) *poller {
	return &poller{
		log:         log,
		description: description,
		interval:    interval,
		poll:        poll,
		reset:       reset,
	}
}

// OnFirstSubscriberAdded starts polling.
func (p *poller) OnFirstSubscriberAdded() {
	p.acquire()
}

// OnSubscriberAdded is a no-op.
func (p *poller) OnSubscriberAdded() {}

// OnSubscriberRemoved is a no-op.
func (p *poller) OnSubscriberRemoved() {}

// OnLastSubscriberRemoved stops polling unless another source still uses it.
func (p *poller) OnLastSubscriberRemoved() {
	p.release()
}

// IsRunning returns true while the poll loop is active.
func (p *poller) IsRunning() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.cancel != nil
}

func (p *poller) acquire() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.users++
	if p.users == 1 {
		p.start()
	}
}

func (p *poller) release() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.users == 0 {
		return
	}
	p.users--
	if p.users == 0 {
		p.stop()
	}
}

// Close stops polling, regardless of the number of users.
func (p *poller) Close() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.users = 0
	p.stop()
}

// start the poll loop. Requires the mutex to be held.
func (p *poller) start() {
	if p.cancel != nil {
		return
	}
	if p.reset != nil {
		p.reset()
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done
	p.log.Debug().Str("poller", p.description).Msg("Start polling")
	go func() {
		defer close(done)
		util.UntilCanceled(ctx, p.log, p.description, p.interval, p.poll)
	}()
}

// stop the poll loop and wait for it to finish. Requires the mutex to be held.
func (p *poller) stop() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
	p.cancel = nil
	p.done = nil
	p.log.Debug().Str("poller", p.description).Msg("Stopped polling")
}
