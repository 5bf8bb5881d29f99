package uss

import (
	"errors"
	"fmt"
)

// Encoding errors.
var (
	ErrInvalidAddress = errors.New("address out of range")
	ErrInvalidLength  = errors.New("too many data words")
)

// EncodeQuery builds a complete request telegram for the given address and
// data words. The returned bytes are ready for transmission: STX, address,
// word count, big-endian words, BCC.
func EncodeQuery(address byte, words []uint16) ([]byte, error) {
	if address > MaxAddress {
		return nil, fmt.Errorf("%w: %d (max %d)", ErrInvalidAddress, address, MaxAddress)
	}
	if len(words) > MaxDataWords {
		return nil, fmt.Errorf("%w: %d (max %d)", ErrInvalidLength, len(words), MaxDataWords)
	}

	frame := make([]byte, 0, frameOverhead+2*len(words))
	frame = append(frame, STX, address, byte(len(words)))
	for _, w := range words {
		frame = append(frame, byte(w>>8), byte(w))
	}

	// BCC covers address through last data byte; STX is excluded.
	frame = append(frame, Checksum(frame[1:]))
	return frame, nil
}

// NewPingQuery builds a minimal presence probe: a telegram with no data
// words. Any structurally valid answer from the address counts as a hit.
func NewPingQuery(address byte) ([]byte, error) {
	return EncodeQuery(address, nil)
}

// NewReadParameterQuery builds a PKW parameter read request. The task id
// (AK=1, request) is packed into the first word together with the high
// byte of the parameter number, the low byte rides in the second word.
func NewReadParameterQuery(address byte, parameter uint16) ([]byte, error) {
	pkw := []uint16{
		0x0100 | (parameter >> 8),
		(parameter & 0xFF) << 8,
	}
	return EncodeQuery(address, pkw)
}
