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
	"fmt"

	"github.com/pkg/errors"
)

var (
	InvalidArgumentError  = errors.New("invalid argument")
	IsInvalidArgument     = isErrorFunc(InvalidArgumentError)
	ColorNotSettableError = errors.New("color not settable")
	IsColorNotSettable    = isErrorFunc(ColorNotSettableError)
	NotConfiguredError    = errors.New("not configured")
	IsNotConfigured       = isErrorFunc(NotConfiguredError)

	maskAny = errors.WithStack
)

func isErrorFunc(typeOfError error) func(err error) bool {
	return func(err error) bool {
		return err == typeOfError || errors.Cause(err) == typeOfError
	}
}

// DeviceNotFoundError is returned when a required physical device
// cannot be located by name.
type DeviceNotFoundError struct {
	DeviceName string
}

// NewDeviceNotFoundError returns a DeviceNotFoundError for the device with given name.
func NewDeviceNotFoundError(deviceName string) error {
	return maskAny(&DeviceNotFoundError{DeviceName: deviceName})
}

func (e *DeviceNotFoundError) Error() string {
	return fmt.Sprintf("device '%s' not found", e.DeviceName)
}

// IsDeviceNotFound returns true when the cause of the given error is
// a DeviceNotFoundError.
func IsDeviceNotFound(err error) bool {
	_, ok := errors.Cause(err).(*DeviceNotFoundError)
	return ok
}

// MissingIOError is returned when a required IO setting (pin, line,
// controller) was not supplied before an operation that needs it.
type MissingIOError struct {
	PropertyName string
}

// NewMissingIOError returns a MissingIOError for the property with given name.
func NewMissingIOError(propertyName string) error {
	return maskAny(&MissingIOError{PropertyName: propertyName})
}

func (e *MissingIOError) Error() string {
	return fmt.Sprintf("required IO setting '%s' is missing", e.PropertyName)
}

// IsMissingIO returns true when the cause of the given error is
// a MissingIOError.
func IsMissingIO(err error) bool {
	_, ok := errors.Cause(err).(*MissingIOError)
	return ok
}
