// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Oleksandr Kolodkin <oleksandr.kolodkin@ukr.net>

// Package uss implements the Siemens USS (Universal Serial Interface)
// telegram codec.
//
// A USS telegram is STX ADR LEN W1..Wn BCC: a fixed start byte, the device
// address, the count of 16-bit data words, the words themselves in
// big-endian order, and a trailing XOR checksum. This package is pure
// encode/decode; it performs no I/O.
package uss

// Telegram framing
const (
	// STX is the start-of-telegram marker.
	STX = 0x02

	// MinAddress and MaxAddress bound the USS device address space.
	MinAddress = 0
	MaxAddress = 31

	// MaxDataWords is the largest word count a telegram may carry. The
	// length field is a single byte counting 16-bit words; 125 words keeps
	// the whole frame under 256 bytes.
	MaxDataWords = 125

	// headerSize is STX + ADR + LEN; frameOverhead adds the BCC byte.
	headerSize    = 3
	frameOverhead = 4
)

// DefaultBaudrates lists the standard USS baudrates, fastest first. Scans
// must try candidates in exactly this order unless the caller overrides
// the set.
var DefaultBaudrates = []int{115200, 57600, 38400, 19200, 9600, 4800, 2400, 1200}

// Fixed bus framing parameters. USS always runs even parity, 8 data bits,
// 1 stop bit; these are constants of the protocol, not discovered.
const (
	BusParity   = "even"
	BusDataBits = 8
	BusStopBits = 1
)
