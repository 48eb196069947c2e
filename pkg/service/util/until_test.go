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

package util

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestUntilCanceledStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int32
	done := make(chan error)
	go func() {
		done <- UntilCanceled(ctx, zerolog.Nop(), "test", time.Millisecond, func() error {
			if atomic.AddInt32(&calls, 1) == 3 {
				cancel()
			}
			return nil
		})
	}()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("UntilCanceled did not return")
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestUntilCanceledContinuesAfterError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var calls int32
	done := make(chan struct{})
	go func() {
		defer close(done)
		UntilCanceled(ctx, zerolog.Nop(), "test", time.Millisecond, func() error {
			if atomic.AddInt32(&calls, 1) >= 2 {
				cancel()
			}
			return errors.New("failure")
		})
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("UntilCanceled did not return")
	}
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(2))
}
