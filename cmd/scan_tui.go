// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Oleksandr Kolodkin <oleksandr.kolodkin@ukr.net>

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kolod/uss-detect/internal/portid"
	"github.com/kolod/uss-detect/internal/scan"
	"github.com/kolod/uss-detect/internal/transport"
)

// scanDoneMsg carries the sweep outcome into the TUI loop.
type scanDoneMsg struct {
	result *scan.Result
	err    error
}

// TUI model
type scanModel struct {
	spin  spinner.Model
	prog  progress.Model
	width int

	portPath  string
	mode      scan.Mode
	addrTotal int

	baudrate  int
	baudIndex int
	baudTotal int
	checked   int

	devices    []scan.DeviceRecord
	noise      int
	cancelling bool

	cancel context.CancelFunc
	result *scan.Result
	err    error
}

func newScanModel(portPath string, mode scan.Mode, addrTotal int, cancel context.CancelFunc) scanModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))

	pr := progress.New(progress.WithDefaultGradient())
	pr.Width = 40

	return scanModel{
		spin:      sp,
		prog:      pr,
		width:     80,
		portPath:  portPath,
		mode:      mode,
		addrTotal: addrTotal,
		cancel:    cancel,
	}
}

func (m scanModel) Init() tea.Cmd {
	return m.spin.Tick
}

func (m scanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			// Request cancellation and keep the UI up until the sweep
			// acknowledges at its next address boundary.
			m.cancelling = true
			m.cancel()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		w := msg.Width - 20
		if w > 50 {
			w = 50
		}
		if w > 0 {
			m.prog.Width = w
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case scan.BaudrateStarted:
		m.baudrate = msg.Baudrate
		m.baudIndex = msg.Index
		m.baudTotal = msg.Total
		m.checked = 0

	case scan.AddressChecked:
		m.checked++
		if msg.Outcome == scan.OutcomeNoise {
			m.noise++
		}

	case scan.DeviceFound:
		m.devices = append(m.devices, scan.DeviceRecord{Address: msg.Address, Baudrate: msg.Baudrate})

	case scanDoneMsg:
		m.result = msg.result
		m.err = msg.err
		return m, tea.Quit
	}

	return m, nil
}

func (m scanModel) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	var s strings.Builder
	s.WriteString(titleStyle.Render("USS-DETECT - BUS SCAN"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("Port: %s | Mode: %s | Press 'q' to cancel", m.portPath, m.mode)))
	s.WriteString("\n\n")

	if m.baudTotal > 0 {
		s.WriteString(fmt.Sprintf("%s %s %s\n",
			m.spin.View(),
			labelStyle.Render(fmt.Sprintf("%d baud", m.baudrate)),
			headerStyle.Render(fmt.Sprintf("(%d/%d)", m.baudIndex+1, m.baudTotal)),
		))
		pct := 0.0
		if m.addrTotal > 0 {
			pct = float64(m.checked) / float64(m.addrTotal)
		}
		s.WriteString(m.prog.ViewAs(pct))
		s.WriteString(headerStyle.Render(fmt.Sprintf("  address %d/%d", m.checked, m.addrTotal)))
		s.WriteString("\n\n")
	} else {
		s.WriteString(fmt.Sprintf("%s %s\n\n", m.spin.View(), headerStyle.Render("starting...")))
	}

	if len(m.devices) > 0 {
		s.WriteString(labelStyle.Render("Devices:"))
		s.WriteString("\n")
		for _, d := range m.devices {
			s.WriteString(valueStyle.Render(fmt.Sprintf("  ✓ address %d @ %d baud", d.Address, d.Baudrate)))
			s.WriteString("\n")
		}
		s.WriteString("\n")
	}

	if m.noise > 0 {
		s.WriteString(warningStyle.Render(fmt.Sprintf("Noise events: %d", m.noise)))
		s.WriteString("\n")
	}

	if m.cancelling {
		s.WriteString(warningStyle.Render("Cancelling..."))
		s.WriteString("\n")
	}

	return s.String()
}

// runScanTUI drives the sweep behind an interactive progress display.
func runScanTUI(ctx context.Context, ch transport.Channel, cfg scan.Config, port portid.PortInfo, total int) (*scan.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newScanModel(port.Path, cfg.Mode, total, cancel))

	cfg.Sink = func(ev scan.Event) {
		p.Send(ev)
	}

	go func() {
		result, err := scan.New(ch, cfg).Run(ctx)
		p.Send(scanDoneMsg{result: result, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("TUI error: %v", err)
	}

	m := final.(scanModel)
	return m.result, m.err
}
