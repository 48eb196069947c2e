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

package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"

	"github.com/binkynet/Peripherals/pkg/service/devices"
)

var (
	maskAny = errors.WithStack
)

// DeviceInfo is the JSON representation of a device.
type DeviceInfo struct {
	Name         string   `json:"name"`
	Configured   bool     `json:"configured"`
	Capabilities []string `json:"capabilities,omitempty"`
	// Light
	Brightness      *float64 `json:"brightness,omitempty"`
	Color           string   `json:"color,omitempty"`
	IsColorSettable *bool    `json:"is_color_settable,omitempty"`
	// SPI
	Controller     string `json:"controller,omitempty"`
	ChipSelectLine *int   `json:"chip_select_line,omitempty"`
	// Switch
	On *bool `json:"on,omitempty"`
}

// LightRequest is the body of a request to change a light.
type LightRequest struct {
	Brightness *float64 `json:"brightness,omitempty"`
	// Color as hex string (#rrggbb)
	Color string `json:"color,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// listDevices returns all devices, configured or not.
func (s *Server) listDevices(c echo.Context) error {
	var result []DeviceInfo
	for _, name := range s.devices.GetDeviceNames() {
		dev, err := s.devices.DeviceByName(name)
		if err != nil {
			result = append(result, DeviceInfo{Name: name})
			continue
		}
		result = append(result, s.deviceInfo(c, dev))
	}
	return c.JSON(http.StatusOK, result)
}

// getDevice returns a single configured device.
func (s *Server) getDevice(c echo.Context) error {
	dev, err := s.devices.DeviceByName(c.Param("name"))
	if err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, s.deviceInfo(c, dev))
}

// setLight changes brightness and/or color of a light.
func (s *Server) setLight(c echo.Context) error {
	light, err := devices.DeviceAs[devices.Light](s.devices, c.Param("name"))
	if err != nil {
		return s.errorResponse(c, err)
	}
	var req LightRequest
	if err := c.Bind(&req); err != nil {
		return s.errorResponse(c, errors.Wrap(devices.InvalidArgumentError, err.Error()))
	}
	if req.Color != "" {
		color, err := colorful.Hex(req.Color)
		if err != nil {
			return s.errorResponse(c, errors.Wrap(devices.InvalidArgumentError, err.Error()))
		}
		if err := light.SetColor(color); err != nil {
			return s.errorResponse(c, err)
		}
	}
	if req.Brightness != nil {
		if err := light.SetBrightness(*req.Brightness); err != nil {
			return s.errorResponse(c, err)
		}
	}
	return c.JSON(http.StatusOK, s.deviceInfo(c, light))
}

// deviceInfo builds the JSON representation of a configured device.
func (s *Server) deviceInfo(c echo.Context, dev devices.Device) DeviceInfo {
	info := DeviceInfo{
		Name:         dev.Name(),
		Configured:   true,
		Capabilities: devices.Capabilities(dev),
	}
	if x, ok := dev.(devices.Light); ok {
		brightness := x.Brightness()
		settable := x.IsColorSettable()
		info.Brightness = &brightness
		info.Color = x.Color().Hex()
		info.IsColorSettable = &settable
	}
	if x, ok := dev.(devices.SPIBasedDevice); ok {
		line := x.ChipSelectLine()
		info.Controller = x.ControllerName()
		info.ChipSelectLine = &line
	}
	if x, ok := dev.(devices.Switch); ok {
		if on, err := x.IsOn(c.Request().Context()); err != nil {
			s.log.Warn().Err(err).Str("device", dev.Name()).Msg("Failed to read switch")
		} else {
			info.On = &on
		}
	}
	return info
}

// errorResponse maps the given error to an HTTP status.
func (s *Server) errorResponse(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case devices.IsDeviceNotFound(err):
		status = http.StatusNotFound
	case devices.IsInvalidArgument(err):
		status = http.StatusBadRequest
	case devices.IsColorNotSettable(err):
		status = http.StatusConflict
	}
	return c.JSON(status, errorResponse{Error: err.Error()})
}
