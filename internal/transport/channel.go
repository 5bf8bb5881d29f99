// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Oleksandr Kolodkin <oleksandr.kolodkin@ukr.net>

// Package transport abstracts the byte channel to the bus adapter. The
// scan orchestrator and the port identity manager depend only on the
// Channel interface, so tests can substitute a simulated bus.
package transport

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// Channel is the capability interface over the bus adapter. A Channel is
// owned by exactly one scan run at a time and is never shared across
// goroutines.
type Channel interface {
	// SetBaudrate reconfigures the channel for the given baudrate with the
	// fixed USS framing (even parity, 8 data bits, 1 stop bit). Any bytes
	// pending from before the reconfiguration are discarded.
	SetBaudrate(baudrate int) error

	// Write transmits a complete request frame.
	Write(p []byte) (int, error)

	// ReadWithTimeout reads available bytes, waiting up to timeout.
	// A return of n == 0 with a nil error means the timeout elapsed with
	// nothing received.
	ReadWithTimeout(p []byte, timeout time.Duration) (int, error)

	// Close releases the underlying port.
	Close() error
}

// SerialChannel drives a physical serial port via go.bug.st/serial.
type SerialChannel struct {
	port serial.Port
}

// OpenSerial opens the serial port at path. The baudrate is set later by
// the orchestrator through SetBaudrate; the port opens with the slowest
// candidate so no traffic is attributed before reconfiguration.
func OpenSerial(path string) (Channel, error) {
	mode := &serial.Mode{
		BaudRate: 1200,
		DataBits: 8,
		Parity:   serial.EvenParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", path, err)
	}

	return &SerialChannel{port: port}, nil
}

func (s *SerialChannel) SetBaudrate(baudrate int) error {
	mode := &serial.Mode{
		BaudRate: baudrate,
		DataBits: 8,
		Parity:   serial.EvenParity,
		StopBits: serial.OneStopBit,
	}
	if err := s.port.SetMode(mode); err != nil {
		return fmt.Errorf("failed to set %d baud: %w", baudrate, err)
	}

	// Stale bytes from the previous baudrate must not be attributed to
	// queries sent at the new one.
	if err := s.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("failed to reset input buffer: %w", err)
	}
	if err := s.port.ResetOutputBuffer(); err != nil {
		return fmt.Errorf("failed to reset output buffer: %w", err)
	}
	return nil
}

func (s *SerialChannel) Write(p []byte) (int, error) {
	return s.port.Write(p)
}

func (s *SerialChannel) ReadWithTimeout(p []byte, timeout time.Duration) (int, error) {
	if err := s.port.SetReadTimeout(timeout); err != nil {
		return 0, fmt.Errorf("failed to set read timeout: %w", err)
	}
	return s.port.Read(p)
}

func (s *SerialChannel) Close() error {
	return s.port.Close()
}
