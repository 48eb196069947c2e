//    Copyright 2017-2022 Ewout Prangsma
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

package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	mqttapi "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/binkynet/Peripherals/pkg/config"
	"github.com/binkynet/Peripherals/pkg/logging"
	"github.com/binkynet/Peripherals/pkg/server"
	"github.com/binkynet/Peripherals/pkg/service/bridge"
	"github.com/binkynet/Peripherals/pkg/service/devices"
	"github.com/binkynet/Peripherals/pkg/ui"
)

// Service runs the peripherals of this host.
type Service interface {
	// Run the service until the given context is cancelled.
	Run(ctx context.Context) error
}

type Config struct {
	// Path of the TOML device configuration file
	ConfigPath string
	// HTTP server settings
	Server server.Config
	// If set, show the state of the switch with this name in the terminal
	// and to SSH sessions
	AvoidanceSensor string
	// If set, the avoidance page is only served over SSH
	Headless bool
	// If set, forward logs to this MQTT topic
	LogTopic string
}

type Dependencies struct {
	Logger zerolog.Logger
	Bridge bridge.API
	// Optional writer used to forward logs over MQTT
	LogWriter logging.MQTTWriter
}

type service struct {
	Config
	Dependencies
}

// NewService creates a Service instance and returns it.
func NewService(conf Config, deps Dependencies) (Service, error) {
	if conf.ConfigPath == "" {
		return nil, errors.New("ConfigPath is empty")
	}
	if deps.Bridge == nil {
		return nil, errors.New("Bridge is nil")
	}
	deps.Logger = deps.Logger.With().Str("component", "service").Logger()
	return &service{
		Config:       conf,
		Dependencies: deps,
	}, nil
}

// Run loads the device configuration, configures all devices and serves
// them until the given context is cancelled.
func (s *service) Run(ctx context.Context) error {
	log := s.Logger
	defer s.Bridge.Close()

	conf, err := config.Load(s.ConfigPath)
	if err != nil {
		configLoadErrorsTotal.Inc()
		return errors.Wrap(err, "Failed to load configuration")
	}
	log.Info().
		Str("path", s.ConfigPath).
		Int("devices", len(conf.Devices)).
		Msg("Loaded configuration")

	if s.LogWriter != nil && s.LogTopic != "" && conf.MQTT.Broker != "" {
		if client, err := s.connectLogForwarding(conf.MQTT); err != nil {
			log.Warn().Err(err).Msg("Failed to forward logs over MQTT")
		} else {
			defer client.Disconnect(250)
		}
	}

	if name := s.AvoidanceSensor; name != "" {
		if _, found := conf.DeviceByName(name); !found {
			return errors.Wrap(devices.NewDeviceNotFoundError(name), "Avoidance sensor is not configured")
		}
	}

	devService, err := devices.NewService(conf, s.Bridge, log)
	if err != nil {
		return errors.Wrap(err, "Failed to create devices")
	}
	if err := devService.Configure(ctx); err != nil {
		// Continue with the devices that did configure
		configureErrorsTotal.Inc()
		log.Warn().Err(err).
			Strs("unconfigured", devService.GetUnconfiguredDeviceNames()).
			Msg("Not all devices could be configured")
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		if err := devService.Close(closeCtx); err != nil {
			log.Warn().Err(err).Msg("Failed to close devices")
		}
	}()

	var sensor devices.Switch
	var sessionUI server.UI
	if name := s.AvoidanceSensor; name != "" {
		sensor, err = devices.DeviceAs[devices.Switch](devService, name)
		if err != nil {
			return errors.Wrap(err, "Failed to find avoidance sensor")
		}
		sessionUI = ui.NewSessionHandler(log, sensor)
	}
	httpServer, err := server.New(s.Server, log, devService, sessionUI)
	if err != nil {
		return errors.Wrap(err, "Failed to create server")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return httpServer.Run(ctx) })
	if sensor != nil && !s.Headless {
		g.Go(func() error {
			// Quitting the page stops the service
			defer cancel()
			return ui.RunAvoidancePage(ctx, log, sensor)
		})
	}
	return g.Wait()
}

// connectLogForwarding connects an MQTT client and sends logs to it.
func (s *service) connectLogForwarding(conf config.MQTTConfig) (mqttapi.Client, error) {
	hostname, _ := os.Hostname()
	clientID := fmt.Sprintf("%s-log-%s", conf.ClientIDPrefix, hostname)
	opts := mqttapi.NewClientOptions().
		AddBroker(brokerURL(conf.Broker)).
		SetClientID(clientID).
		SetAutoReconnect(true)
	client := mqttapi.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, errors.Wrap(token.Error(), "failed to connect to mqtt")
	}
	s.LogWriter.SetDestination(s.LogTopic, client)
	s.LogWriter.Enable(true)
	return client, nil
}

// brokerURL adds a tcp scheme to the given address when missing.
func brokerURL(address string) string {
	if strings.Contains(address, "://") {
		return address
	}
	return "tcp://" + address
}
