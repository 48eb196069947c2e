//    Copyright 2017 Ewout Prangsma
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

package bridge

import (
	"io"
	"sync"
)

// txer is implemented by periph SPI connections and by the virtual loopback.
type txer interface {
	Tx(w, r []byte) error
}

// spiConn serializes transfers on a single SPI port and tracks metrics.
type spiConn struct {
	mutex  sync.Mutex
	name   string
	port   io.Closer
	conn   txer
	closed bool
}

func newSPIConn(name string, port io.Closer, conn txer) *spiConn {
	return &spiConn{
		name: name,
		port: port,
		conn: conn,
	}
}

// Tx performs a full duplex transfer.
func (c *spiConn) Tx(w, r []byte) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return io.ErrClosedPipe
	}
	spiTxCounters.WithLabelValues(c.name).Inc()
	if err := c.conn.Tx(w, r); err != nil {
		spiTxErrorCounters.WithLabelValues(c.name).Inc()
		return err
	}
	return nil
}

// Close the connection. Closing twice is a no-op.
func (c *spiConn) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	if c.port != nil {
		return c.port.Close()
	}
	return nil
}
