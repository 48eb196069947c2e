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

package ui

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/binkynet/Peripherals/pkg/avoidance"
)

// Page shows the state of an obstacle avoidance sensor.
// Its Display methods must only be called from Update, which is where
// applyMsg functions run.
type Page struct {
	sensor     string
	width      int
	height     int
	loadAvg    string
	text       string
	foreground colorful.Color
	// If set, applyMsg functions are received from this channel
	updates <-chan applyMsg
}

var (
	_ tea.Model         = &Page{}
	_ avoidance.Display = &Page{}
)

// NewPage creates a page for the sensor with given name.
func NewPage(sensor string) *Page {
	return &Page{
		sensor:     sensor,
		text:       "...",
		foreground: colorful.Color{R: 1, G: 1, B: 1},
	}
}

// SetText sets the main text of the page.
func (p *Page) SetText(text string) {
	p.text = text
}

// SetForeground sets the color of the main text.
func (p *Page) SetForeground(c colorful.Color) {
	p.foreground = c
}

// Text returns the main text of the page.
func (p *Page) Text() string {
	return p.text
}

// Foreground returns the color of the main text.
func (p *Page) Foreground() colorful.Color {
	return p.foreground
}

// applyMsg is a function that is run on the goroutine of the program.
type applyMsg func()

// Init is the first function that will be called. It returns an optional
// initial command. To not perform an initial command return nil.
func (p *Page) Init() tea.Cmd {
	return tea.Batch(doReloadCPULoadAvg(), p.waitForUpdate())
}

// Update is called when a message is received. Use it to inspect messages
// and, in response, update the model and/or send a command.
func (p *Page) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case applyMsg:
		msg()
		return p, p.waitForUpdate()
	case loadAvgMsg:
		p.loadAvg = string(msg)
		return p, doReloadCPULoadAvg()
	case tea.WindowSizeMsg:
		p.height = msg.Height
		p.width = msg.Width
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return p, tea.Quit
		}
	}
	return p, nil
}

// View renders the program's UI, which is just a string. The view is
// rendered after every Update.
func (p *Page) View() string {
	style := lipgloss.NewStyle().
		Bold(true).
		Padding(1, 4).
		Foreground(lipgloss.Color(p.foreground.Hex()))
	return p.headerView() + "\n" + style.Render(p.text) + "\n\nq - Quit\n"
}

func (p *Page) headerView() string {
	return lipgloss.JoinHorizontal(lipgloss.Left,
		fmt.Sprintf("Obstacle sensor '%s'  ", p.sensor),
		p.loadAvg,
	) + "\n"
}

// waitForUpdate returns a command that waits for the next applyMsg
// on the updates channel.
func (p *Page) waitForUpdate() tea.Cmd {
	updates := p.updates
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		fn, ok := <-updates
		if !ok {
			return nil
		}
		return fn
	}
}

type loadAvgMsg string

func doReloadCPULoadAvg() tea.Cmd {
	return tea.Tick(time.Second*2, func(t time.Time) tea.Msg {
		if content, err := os.ReadFile("/proc/loadavg"); err != nil {
			return loadAvgMsg(err.Error())
		} else {
			return loadAvgMsg(strings.TrimSpace(string(content)))
		}
	})
}
