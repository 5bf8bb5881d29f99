// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Oleksandr Kolodkin <oleksandr.kolodkin@ukr.net>

// Package portid owns the notion of "the bus adapter". It tracks a
// persisted hardware identity, supervises connect/reconnect and
// disambiguation, and hands a ready channel to the scan orchestrator.
package portid

import (
	"fmt"

	"go.bug.st/serial/enumerator"
)

// PortInfo describes one available serial port. HardwareID is stable
// across reconnects and device-node renumbering; Path is the most
// recently observed device node for that hardware.
type PortInfo struct {
	Path        string
	HardwareID  string
	Description string
}

// Enumerator lists the currently available serial ports. The system
// implementation wraps go.bug.st/serial/enumerator; tests substitute a
// fake.
type Enumerator interface {
	List() ([]PortInfo, error)
}

// SystemEnumerator enumerates real serial ports.
type SystemEnumerator struct{}

func (SystemEnumerator) List() ([]PortInfo, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}

	infos := make([]PortInfo, 0, len(ports))
	for _, p := range ports {
		infos = append(infos, PortInfo{
			Path:        p.Name,
			HardwareID:  hardwareID(p),
			Description: p.Product,
		})
	}
	return infos, nil
}

// hardwareID derives a renumbering-stable identifier. USB adapters carry
// VID/PID and usually a serial number; anything else falls back to the
// device path, which is the best identity available.
func hardwareID(p *enumerator.PortDetails) string {
	if p.IsUSB {
		return fmt.Sprintf("USB:%s:%s:%s", p.VID, p.PID, p.SerialNumber)
	}
	return p.Name
}
