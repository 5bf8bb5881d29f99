// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Oleksandr Kolodkin <oleksandr.kolodkin@ukr.net>

// Package scan drives the baudrate/address sweep that discovers USS
// devices on the bus.
package scan

import (
	"sort"

	"github.com/kolod/uss-detect/pkg/uss"
)

// Mode selects the sweep exit policy. It is chosen once per scan run and
// is immutable for its duration.
type Mode int

const (
	// FirstMatch finishes the address sweep of the first baudrate that
	// yields any device, then tries no further baudrates.
	FirstMatch Mode = iota

	// Exhaustive sweeps every baudrate/address pair regardless of earlier
	// hits. Useful for buses carrying misconfigured devices.
	Exhaustive
)

func (m Mode) String() string {
	if m == Exhaustive {
		return "exhaustive"
	}
	return "first-match"
}

// DeviceRecord is one address confirmed responsive at a given baudrate.
type DeviceRecord struct {
	Address  int
	Baudrate int
}

// BusProfile describes the bus parameters under which at least one device
// answered. Parity, data bits and stop bits are protocol constants.
type BusProfile struct {
	Baudrate int
	Parity   string
	DataBits int
	StopBits int
}

// NewBusProfile builds a profile for the discovered baudrate with the
// fixed USS framing parameters.
func NewBusProfile(baudrate int) *BusProfile {
	return &BusProfile{
		Baudrate: baudrate,
		Parity:   uss.BusParity,
		DataBits: uss.BusDataBits,
		StopBits: uss.BusStopBits,
	}
}

// Result is the outcome of one scan run, owned by the caller.
type Result struct {
	// Profile is nil when no device answered at any baudrate.
	Profile *BusProfile

	// Devices lists the responsive addresses under Profile's baudrate, in
	// ascending address order.
	Devices []DeviceRecord

	// ByBaudrate keys every hit by the baudrate that elicited it. Under
	// FirstMatch it holds at most one entry; under Exhaustive a
	// misconfigured device may appear under several baudrates.
	ByBaudrate map[int][]int

	// Cancelled marks a run stopped by the cancellation signal; the
	// fields above still hold whatever was accumulated.
	Cancelled bool

	// NoiseEvents counts addresses where bytes arrived but never formed a
	// valid telegram. For detection these count as silence, but a nonzero
	// value points at bus noise rather than empty addresses.
	NoiseEvents int
}

// finalize picks the bus profile from the accumulated per-baudrate hits.
// FirstMatch passes the winning baudrate explicitly; Exhaustive passes -1
// and the baudrate with the most devices wins, faster baudrate on ties
// (candidates are tried fastest first).
func (r *Result) finalize(winner int) {
	if winner < 0 {
		best := -1
		for baud, addrs := range r.ByBaudrate {
			if best < 0 || len(addrs) > len(r.ByBaudrate[best]) {
				best = baud
			} else if len(addrs) == len(r.ByBaudrate[best]) && baud > best {
				best = baud
			}
		}
		winner = best
	}
	if winner < 0 {
		return
	}

	addrs := append([]int{}, r.ByBaudrate[winner]...)
	sort.Ints(addrs)
	r.Profile = NewBusProfile(winner)
	r.Devices = make([]DeviceRecord, 0, len(addrs))
	for _, a := range addrs {
		r.Devices = append(r.Devices, DeviceRecord{Address: a, Baudrate: winner})
	}
}
