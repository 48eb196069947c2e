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

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	terminate "github.com/pulcy/go-terminate"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/binkynet/Peripherals/pkg/environment"
	"github.com/binkynet/Peripherals/pkg/logging"
	"github.com/binkynet/Peripherals/pkg/server"
	"github.com/binkynet/Peripherals/pkg/service"
	"github.com/binkynet/Peripherals/pkg/service/bridge"
)

const (
	projectName       = "Peripherals"
	defaultServerPort = 7130
	defaultSSHPort    = 7131
	defaultConfigPath = "peripherals.toml"
)

var (
	projectVersion = "dev"
	projectBuild   = "dev"
	maskAny        = errors.WithStack
)

func main() {
	var levelFlag string
	var configPath string
	var serverHost string
	var serverPort int
	var sshPort int
	var sshHostKeyPath string
	var headless bool
	var bridgeType string
	var avoidanceSensor string
	var logFile string
	var logTopic string

	pflag.StringVarP(&levelFlag, "level", "l", "info", "Set log level")
	pflag.StringVarP(&configPath, "config", "c", defaultConfigPath, "Path of the device configuration file")
	pflag.StringVarP(&bridgeType, "bridge", "b", "auto", "Type of bridge to use (auto|rpi|virtual)")
	pflag.StringVar(&serverHost, "host", "0.0.0.0", "Host address the HTTP server will listen on")
	pflag.IntVar(&serverPort, "port", defaultServerPort, "Port the HTTP server will listen on")
	pflag.IntVar(&sshPort, "ssh-port", defaultSSHPort, "Port the SSH server will listen on (0 to disable)")
	pflag.StringVar(&sshHostKeyPath, "ssh-host-key", ".ssh/id_ed25519", "Path of the SSH host key")
	pflag.StringVar(&avoidanceSensor, "avoidance", "", "Show the state of the obstacle sensor (switch) with this name in the terminal and over SSH")
	pflag.BoolVar(&headless, "headless", false, "Do not show the avoidance page in the terminal")
	pflag.StringVar(&logFile, "log-file", "", "Write logs to this file instead of the console")
	pflag.StringVar(&logTopic, "log-topic", "", "Forward logs to this MQTT topic")
	pflag.Parse()

	// Prepare to shutdown in a controlled manor
	ctx, cancel := context.WithCancel(context.Background())

	// Prepare logging
	var console io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			Exitf("Failed to open log file: %v\n", err)
		}
		defer f.Close()
		console = zerolog.ConsoleWriter{Out: f, NoColor: true}
	} else if avoidanceSensor != "" && !headless {
		// The terminal is used by the avoidance page
		console = io.Discard
	}
	logOutput := logging.NewMultiWriter(console)
	mqttWriter := logging.NewMQTTWriter(ctx)
	logOutput.Add(mqttWriter)
	logger := zerolog.New(logOutput).With().Timestamp().Logger()
	if level, err := zerolog.ParseLevel(levelFlag); err != nil {
		Exitf("Invalid log level '%s': %v\n", levelFlag, err)
	} else {
		logger = logger.Level(level)
	}

	if bridgeType == "auto" {
		bridgeType = environment.AutoDetectBridgeType(logger)
	}
	br, err := newBridge(bridgeType)
	if err != nil {
		Exitf("Failed to initialize bridge: %v\n", err)
	}

	svc, err := service.NewService(service.Config{
		ConfigPath: configPath,
		Server: server.Config{
			Host:           serverHost,
			HTTPPort:       serverPort,
			SSHPort:        sshPort,
			SSHHostKeyPath: sshHostKeyPath,
		},
		AvoidanceSensor: avoidanceSensor,
		Headless:        headless,
		LogTopic:        logTopic,
	}, service.Dependencies{
		Logger:    logger,
		Bridge:    br,
		LogWriter: mqttWriter,
	})
	if err != nil {
		Exitf("Failed to initialize Service: %v\n", err)
	}

	t := terminate.NewTerminator(func(template string, args ...interface{}) {
		logger.Info().Msgf(template, args...)
	}, cancel)
	go t.ListenSignals()

	logger.Info().
		Str("version", projectVersion).
		Str("build", projectBuild).
		Str("bridge", bridgeType).
		Msgf("Starting %s", projectName)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return svc.Run(ctx) })
	if err := g.Wait(); err != nil {
		Exitf("Service run failed: %v\n", err)
	}
}

// newBridge creates the bridge of given type.
func newBridge(bridgeType string) (bridge.API, error) {
	switch bridgeType {
	case environment.BridgeTypeRaspberryPi:
		br, err := bridge.NewRaspberryPiBridge()
		if err != nil {
			return nil, maskAny(err)
		}
		return br, nil
	case environment.BridgeTypeVirtual:
		return bridge.NewVirtualBridge(), nil
	default:
		return nil, fmt.Errorf("unknown bridge type '%s' (auto|rpi|virtual)", bridgeType)
	}
}

// Print the given error message and exit with code 1
func Exitf(message string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, message, args...)
	os.Exit(1)
}
