// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Oleksandr Kolodkin <oleksandr.kolodkin@ukr.net>

package scan

// Outcome classifies a single address probe.
type Outcome int

const (
	// OutcomeSilent means the timeout elapsed with no bytes: an
	// unoccupied address, not an error.
	OutcomeSilent Outcome = iota

	// OutcomeDevice means a structurally valid, checksum-correct response
	// arrived from the probed address.
	OutcomeDevice

	// OutcomeNoise means bytes arrived but never formed a valid telegram.
	// Treated as silence for detection purposes, counted for diagnostics.
	OutcomeNoise
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDevice:
		return "device"
	case OutcomeNoise:
		return "noise"
	default:
		return "silent"
	}
}

// Event is a one-way progress notification from the orchestrator to the
// presentation layer. The orchestrator never blocks on consumption; sinks
// must hand events off without waiting.
type Event interface{}

// Sink receives progress events. A nil Sink disables reporting.
type Sink func(Event)

// BaudrateStarted is emitted before the address sweep of one candidate.
type BaudrateStarted struct {
	Baudrate int
	Index    int // position in the candidate list, 0-based
	Total    int // number of candidates
}

// AddressChecked is emitted after every address probe.
type AddressChecked struct {
	Baudrate int
	Address  int
	Outcome  Outcome
}

// DeviceFound is emitted when an address answers with a valid telegram.
type DeviceFound struct {
	Baudrate int
	Address  int
}

// BaudrateFinished is emitted after the address sweep of one candidate.
type BaudrateFinished struct {
	Baudrate int
	Found    int
}

// ScanComplete carries the final result of an uninterrupted run.
type ScanComplete struct {
	Result *Result
}

// ScanCancelled carries the partial result of a cancelled run.
type ScanCancelled struct {
	Result *Result
}

func (s *Scanner) emit(ev Event) {
	if s.cfg.Sink != nil {
		s.cfg.Sink(ev)
	}
}
