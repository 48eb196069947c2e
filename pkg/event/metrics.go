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

package event

import (
	"github.com/binkynet/Peripherals/pkg/metrics"
)

const (
	subSystem = "event"
)

var (
	// Number of subscribers per source
	subscribersGauge = metrics.MustRegisterGaugeVec(subSystem,
		"subscribers",
		"Number of active subscribers per event source",
		"source")
	// Number of published events per source
	eventsPublishedTotal = metrics.MustRegisterCounterVec(subSystem,
		"published_total",
		"Total number of events published per event source",
		"source")
	// Number of current values passed to new subscribers per source
	currentDeliveredTotal = metrics.MustRegisterCounterVec(subSystem,
		"current_delivered_total",
		"Total number of current values passed to new subscribers per event source",
		"source")
)
