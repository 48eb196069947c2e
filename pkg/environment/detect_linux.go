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
	"os"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
)

const (
	// BridgeTypeRaspberryPi selects the local GPIO & SPI hardware of a Raspberry Pi.
	BridgeTypeRaspberryPi = "rpi"
	// BridgeTypeVirtual selects the in-memory bridge.
	BridgeTypeVirtual = "virtual"

	deviceTreeModelPath = "/proc/device-tree/model"
)

// AutoDetectBridgeType detects the default bridge type based on the environment.
func AutoDetectBridgeType(log zerolog.Logger) string {
	var name unix.Utsname
	if err := unix.Uname(&name); err != nil {
		// Fallback to virtual
		log.Warn().Err(err).Msg("Uname failed")
		return BridgeTypeVirtual
	}
	machine := unix.ByteSliceToString(name.Machine[:])
	model, _ := os.ReadFile(deviceTreeModelPath)
	result := detectBridgeType(machine, string(model))
	log.Debug().
		Str("machine", machine).
		Str("bridge", result).
		Msg("Detected bridge type")
	return result
}

// detectBridgeType selects the bridge type for the given machine
// architecture and device tree model.
func detectBridgeType(machine, model string) string {
	machine = strings.ToLower(strings.TrimSpace(machine))
	if !strings.HasPrefix(machine, "arm") && machine != "aarch64" {
		return BridgeTypeVirtual
	}
	if strings.Contains(strings.TrimRight(model, "\x00"), "Raspberry Pi") {
		return BridgeTypeRaspberryPi
	}
	return BridgeTypeVirtual
}
