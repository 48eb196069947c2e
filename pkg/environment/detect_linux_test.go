//    Copyright 2018 Ewout Prangsma
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

package environment

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestDetectBridgeType(t *testing.T) {
	assert.Equal(t, BridgeTypeRaspberryPi, detectBridgeType("armv7l", "Raspberry Pi 3 Model B Rev 1.2\x00"))
	assert.Equal(t, BridgeTypeRaspberryPi, detectBridgeType("aarch64", "Raspberry Pi 4 Model B"))
	assert.Equal(t, BridgeTypeVirtual, detectBridgeType("aarch64", "Orange Pi Zero"))
	assert.Equal(t, BridgeTypeVirtual, detectBridgeType("x86_64", ""))
}

func TestAutoDetectBridgeType(t *testing.T) {
	result := AutoDetectBridgeType(zerolog.Nop())
	assert.Contains(t, []string{BridgeTypeRaspberryPi, BridgeTypeVirtual}, result)
}
