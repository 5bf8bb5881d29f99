// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Oleksandr Kolodkin <oleksandr.kolodkin@ukr.net>

package uss

import (
	"bytes"
	"errors"
	"testing"
)

// ============================================================
// Checksum Tests
// ============================================================

func TestChecksum_Empty(t *testing.T) {
	if bcc := Checksum(nil); bcc != 0 {
		t.Errorf("BCC of empty data should be 0, got 0x%02X", bcc)
	}
}

func TestChecksum_KnownValues(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected byte
	}{
		{
			name:     "single byte",
			data:     []byte{0x5A},
			expected: 0x5A,
		},
		{
			name:     "self-cancelling pair",
			data:     []byte{0xAA, 0xAA},
			expected: 0x00,
		},
		{
			name:     "ping frame body for address 7",
			data:     []byte{0x07, 0x00},
			expected: 0x07,
		},
		{
			name:     "address, length and one word",
			data:     []byte{0x03, 0x01, 0x12, 0x34},
			expected: 0x24,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if bcc := Checksum(tt.data); bcc != tt.expected {
				t.Errorf("BCC mismatch: expected 0x%02X, got 0x%02X", tt.expected, bcc)
			}
		})
	}
}

func TestChecksum_Deterministic(t *testing.T) {
	data := []byte{0x1F, 0x02, 0x01, 0x00, 0xFF, 0x80}
	if Checksum(data) != Checksum(data) {
		t.Error("BCC should be deterministic")
	}
}

// ============================================================
// Encoder Tests
// ============================================================

func TestEncodeQuery_WireLayout(t *testing.T) {
	// Exact bytes matter: real devices parse this frame bit-for-bit.
	tests := []struct {
		name    string
		address byte
		words   []uint16
		want    []byte
	}{
		{
			name:    "ping for address 5",
			address: 5,
			words:   nil,
			want:    []byte{0x02, 0x05, 0x00, 0x05},
		},
		{
			name:    "ping for address 0",
			address: 0,
			words:   nil,
			want:    []byte{0x02, 0x00, 0x00, 0x00},
		},
		{
			name:    "one data word, big-endian",
			address: 3,
			words:   []uint16{0x1234},
			want:    []byte{0x02, 0x03, 0x01, 0x12, 0x34, 0x24},
		},
		{
			name:    "two data words",
			address: 31,
			words:   []uint16{0xABCD, 0x0001},
			want:    []byte{0x02, 0x1F, 0x02, 0xAB, 0xCD, 0x00, 0x01, 0x7A},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := EncodeQuery(tt.address, tt.words)
			if err != nil {
				t.Fatalf("EncodeQuery failed: %v", err)
			}
			if !bytes.Equal(frame, tt.want) {
				t.Errorf("wire bytes mismatch:\n  got  % X\n  want % X", frame, tt.want)
			}
		})
	}
}

func TestEncodeQuery_InvalidAddress(t *testing.T) {
	for _, addr := range []byte{32, 100, 255} {
		_, err := EncodeQuery(addr, nil)
		if !errors.Is(err, ErrInvalidAddress) {
			t.Errorf("address %d: expected ErrInvalidAddress, got %v", addr, err)
		}
	}
}

func TestEncodeQuery_InvalidLength(t *testing.T) {
	words := make([]uint16, MaxDataWords+1)
	_, err := EncodeQuery(0, words)
	if !errors.Is(err, ErrInvalidLength) {
		t.Errorf("expected ErrInvalidLength, got %v", err)
	}

	// MaxDataWords itself must encode fine.
	if _, err := EncodeQuery(0, words[:MaxDataWords]); err != nil {
		t.Errorf("MaxDataWords should encode, got %v", err)
	}
}

func TestNewPingQuery(t *testing.T) {
	frame, err := NewPingQuery(7)
	if err != nil {
		t.Fatalf("NewPingQuery failed: %v", err)
	}
	want := []byte{0x02, 0x07, 0x00, 0x07}
	if !bytes.Equal(frame, want) {
		t.Errorf("ping frame mismatch: got % X, want % X", frame, want)
	}
}

func TestNewReadParameterQuery(t *testing.T) {
	frame, err := NewReadParameterQuery(2, 0x0134)
	if err != nil {
		t.Fatalf("NewReadParameterQuery failed: %v", err)
	}

	tg, err := DecodeResponse(frame)
	if err != nil {
		t.Fatalf("decode of own query failed: %v", err)
	}
	words := tg.Words()
	if len(words) != 2 {
		t.Fatalf("expected 2 PKW words, got %d", len(words))
	}
	if words[0] != 0x0101 {
		t.Errorf("PKW word 0: got 0x%04X, want 0x0101", words[0])
	}
	if words[1] != 0x3400 {
		t.Errorf("PKW word 1: got 0x%04X, want 0x3400", words[1])
	}
}

// ============================================================
// Decoder Tests
// ============================================================

func TestDecodeResponse_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		address byte
		words   []uint16
	}{
		{name: "empty telegram", address: 0, words: nil},
		{name: "highest address", address: 31, words: nil},
		{name: "single word", address: 7, words: []uint16{0x4711}},
		{name: "several words", address: 12, words: []uint16{0, 0xFFFF, 0x8000, 0x0001}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := EncodeQuery(tt.address, tt.words)
			if err != nil {
				t.Fatalf("EncodeQuery failed: %v", err)
			}

			tg, err := DecodeResponse(frame)
			if err != nil {
				t.Fatalf("DecodeResponse failed: %v", err)
			}
			if tg.Address() != tt.address {
				t.Errorf("address mismatch: got %d, want %d", tg.Address(), tt.address)
			}
			if int(tg.Length()) != len(tt.words) {
				t.Errorf("length mismatch: got %d, want %d", tg.Length(), len(tt.words))
			}
			for i, w := range tt.words {
				if tg.Words()[i] != w {
					t.Errorf("word %d mismatch: got 0x%04X, want 0x%04X", i, tg.Words()[i], w)
				}
			}
		})
	}
}

func TestDecodeResponse_Framing(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "wrong start marker", data: []byte{0x03, 0x05, 0x00, 0x05}},
		{name: "marker displaced", data: []byte{0x00, 0x02, 0x05, 0x00, 0x05}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeResponse(tt.data)
			if !errors.Is(err, ErrFraming) {
				t.Errorf("expected ErrFraming, got %v", err)
			}
		})
	}
}

func TestDecodeResponse_LengthMismatch(t *testing.T) {
	valid, _ := EncodeQuery(4, []uint16{0x0102})

	tests := []struct {
		name string
		data []byte
	}{
		{name: "truncated header", data: valid[:2]},
		{name: "truncated payload", data: valid[:len(valid)-2]},
		{name: "missing checksum", data: valid[:len(valid)-1]},
		{name: "trailing garbage", data: append(append([]byte{}, valid...), 0x00)},
		{name: "declares more words than received", data: []byte{0x02, 0x01, 0x05, 0x04}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeResponse(tt.data)
			if !errors.Is(err, ErrLengthMismatch) {
				t.Errorf("expected ErrLengthMismatch, got %v", err)
			}
		})
	}
}

func TestDecodeResponse_ChecksumBitFlip(t *testing.T) {
	// Every single-bit corruption of the BCC byte must fail the check;
	// a false-positive decode here would report a phantom device.
	frame, err := EncodeQuery(9, []uint16{0xBEEF, 0x00AA})
	if err != nil {
		t.Fatalf("EncodeQuery failed: %v", err)
	}

	for bit := 0; bit < 8; bit++ {
		corrupted := append([]byte{}, frame...)
		corrupted[len(corrupted)-1] ^= 1 << bit

		tg, err := DecodeResponse(corrupted)
		if tg != nil {
			t.Fatalf("bit %d: corrupted frame decoded to a telegram", bit)
		}
		if !errors.Is(err, ErrChecksumMismatch) {
			t.Errorf("bit %d: expected ErrChecksumMismatch, got %v", bit, err)
		}
	}
}

func TestDecodeResponse_PayloadBitFlip(t *testing.T) {
	frame, err := EncodeQuery(1, []uint16{0x1234})
	if err != nil {
		t.Fatalf("EncodeQuery failed: %v", err)
	}

	// Flip one bit in each payload byte; the BCC must catch all of them.
	for i := headerSize; i < len(frame)-1; i++ {
		corrupted := append([]byte{}, frame...)
		corrupted[i] ^= 0x01

		if _, err := DecodeResponse(corrupted); !errors.Is(err, ErrChecksumMismatch) {
			t.Errorf("byte %d: expected ErrChecksumMismatch, got %v", i, err)
		}
	}
}
