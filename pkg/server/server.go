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
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/binkynet/Peripherals/pkg/service/devices"
)

// Config for the HTTP server.
type Config struct {
	// Host interface to listen on
	Host string
	// Port to listen on for HTTP requests
	HTTPPort int
	// Port to listen on for SSH sessions (0 disables SSH)
	SSHPort int
	// Path of the SSH host key, created when it does not exist
	SSHHostKeyPath string
}

const (
	defaultSSHHostKeyPath = ".ssh/id_ed25519"
)

// Server runs the HTTP server for the service.
type Server struct {
	Config
	log     zerolog.Logger
	devices devices.Service
	ui      UI
}

// UI creates a Bubble Tea model for an incoming SSH session.
type UI interface {
	Handler(s ssh.Session) (tea.Model, []tea.ProgramOption)
}

// New configures a new Server.
// The ui is optional, without it no SSH server is started.
func New(cfg Config, log zerolog.Logger, devService devices.Service, ui UI) (*Server, error) {
	if cfg.SSHHostKeyPath == "" {
		cfg.SSHHostKeyPath = defaultSSHHostKeyPath
	}
	return &Server{
		Config:  cfg,
		log:     log.With().Str("component", "server").Logger(),
		devices: devService,
		ui:      ui,
	}, nil
}

// sshEnabled returns true when SSH sessions must be served.
func (s *Server) sshEnabled() bool {
	return s.ui != nil && s.SSHPort > 0
}

// newSSHServer creates the SSH server serving the UI.
func (s *Server) newSSHServer() (*ssh.Server, error) {
	sshAddr := net.JoinHostPort(s.Host, strconv.Itoa(s.SSHPort))
	sshServer, err := wish.NewServer(
		wish.WithAddress(sshAddr),
		wish.WithHostKeyPath(s.SSHHostKeyPath),
		// The last item in the chain is the first to be called.
		wish.WithMiddleware(
			bubbletea.Middleware(s.ui.Handler),
			activeterm.Middleware(),
			logging.Middleware(),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("could not start SSH server: %w", err)
	}
	return sshServer, nil
}

// newRouter creates the HTTP router with all routes.
func (s *Server) newRouter() *echo.Echo {
	httpRouter := echo.New()
	httpRouter.HideBanner = true
	httpRouter.HidePort = true
	httpRouter.GET("/health", s.healthHandler)
	httpRouter.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	httpRouter.GET("/debug/pprof/*", echo.WrapHandler(http.HandlerFunc(pprof.Index)))
	httpRouter.GET("/devices", s.listDevices)
	httpRouter.GET("/devices/:name", s.getDevice)
	httpRouter.PUT("/devices/:name/light", s.setLight)
	return httpRouter
}

// Run the server until the given context is canceled.
func (s *Server) Run(ctx context.Context) error {
	// Prepare HTTP listener
	log := s.log
	httpAddr := net.JoinHostPort(s.Host, strconv.Itoa(s.HTTPPort))
	httpLis, err := net.Listen("tcp", httpAddr)
	if err != nil {
		log.Error().Err(err).Msgf("failed to listen on address %s", httpAddr)
		return maskAny(err)
	}

	// Prepare HTTP server
	httpSrv := http.Server{
		Handler: s.newRouter(),
	}

	// Serve apis
	log.Debug().Str("address", httpAddr).Msg("Serving HTTP")
	go func() {
		if err := httpSrv.Serve(httpLis); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to serve HTTP server")
		}
		log.Debug().Str("address", httpAddr).Msg("Done Serving HTTP")
	}()

	// Serve UI
	var sshServer *ssh.Server
	if s.sshEnabled() {
		sshServer, err = s.newSSHServer()
		if err != nil {
			httpSrv.Shutdown(context.Background())
			return maskAny(err)
		}
		log.Debug().Str("address", sshServer.Addr).Msg("Serving SSH")
		go func() {
			if err := sshServer.ListenAndServe(); err != nil && err != ssh.ErrServerClosed {
				log.Error().Err(err).Msg("failed to serve SSH server")
			}
			log.Debug().Str("address", sshServer.Addr).Msg("Done Serving SSH")
		}()
	}

	// Wait until context closed
	<-ctx.Done()

	log.Info().Msg("Closing servers")
	httpSrv.Shutdown(context.Background())
	if sshServer != nil {
		sshServer.Shutdown(context.Background())
	}
	return nil
}

func (s *Server) healthHandler(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}
