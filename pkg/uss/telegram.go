// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Oleksandr Kolodkin <oleksandr.kolodkin@ukr.net>

package uss

// Telegram represents a decoded USS telegram. Instances are created per
// request/response exchange and discarded; nothing here persists.
type Telegram struct {
	address byte
	words   []uint16
	bcc     byte
}

// Address returns the device address (0-31).
func (t *Telegram) Address() byte {
	return t.address
}

// Length returns the declared word count.
func (t *Telegram) Length() byte {
	return byte(len(t.words))
}

// Words returns the 16-bit data words in wire order.
func (t *Telegram) Words() []uint16 {
	return t.words
}

// BCC returns the telegram's checksum byte as received.
func (t *Telegram) BCC() byte {
	return t.bcc
}
