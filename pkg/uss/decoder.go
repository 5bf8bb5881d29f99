// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Oleksandr Kolodkin <oleksandr.kolodkin@ukr.net>

package uss

import (
	"errors"
	"fmt"
)

// Decoding errors. Callers classify with errors.Is.
var (
	// ErrFraming reports a missing or misplaced start marker.
	ErrFraming = errors.New("framing error")

	// ErrLengthMismatch reports a declared word count that disagrees with
	// the number of bytes received.
	ErrLengthMismatch = errors.New("length mismatch")

	// ErrChecksumMismatch reports a failed BCC check.
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// DecodeResponse validates and decodes a complete response frame. Decoding
// is all-or-nothing: on any failure no partial telegram is returned.
//
// The frame must start with STX, carry exactly the number of bytes its
// length field declares, and close with a matching BCC.
func DecodeResponse(data []byte) (*Telegram, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty frame", ErrFraming)
	}
	if data[0] != STX {
		return nil, fmt.Errorf("%w: expected STX 0x%02X, got 0x%02X", ErrFraming, STX, data[0])
	}
	if len(data) < frameOverhead {
		return nil, fmt.Errorf("%w: frame too short (%d bytes)", ErrLengthMismatch, len(data))
	}

	address := data[1]
	length := int(data[2])
	expected := frameOverhead + 2*length
	if len(data) != expected {
		return nil, fmt.Errorf("%w: declared %d words (%d bytes), received %d bytes",
			ErrLengthMismatch, length, expected, len(data))
	}

	received := data[expected-1]
	calculated := Checksum(data[1 : expected-1])
	if received != calculated {
		return nil, fmt.Errorf("%w: expected 0x%02X, got 0x%02X",
			ErrChecksumMismatch, calculated, received)
	}

	words := make([]uint16, length)
	for i := range words {
		hi := data[headerSize+2*i]
		lo := data[headerSize+2*i+1]
		words[i] = uint16(hi)<<8 | uint16(lo)
	}

	return &Telegram{address: address, words: words, bcc: received}, nil
}
