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
	"github.com/binkynet/Peripherals/pkg/metrics"
)

const (
	subSystem = "devices"
)

var (
	devicesCreatedTotal    = metrics.MustRegisterGauge(subSystem, "created_total", "Number of devices created")
	devicesConfiguredTotal = metrics.MustRegisterGauge(subSystem, "configured_total", "Number of devices configured")
	inputReadErrorsTotal   = metrics.MustRegisterCounterVec(subSystem, "input_read_errors_total", "Number of failed input pin reads", "device")
	inputChangesTotal      = metrics.MustRegisterCounterVec(subSystem, "input_changes_total", "Number of detected input state changes", "device")
	rotationsTotal         = metrics.MustRegisterCounterVec(subSystem, "rotations_total", "Number of rotary encoder detents", "device", "direction")
	lightBrightnessGauge   = metrics.MustRegisterGaugeVec(subSystem, "light_brightness", "Current brightness of lights", "device")
)
