// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Oleksandr Kolodkin <oleksandr.kolodkin@ukr.net>

package uss

// Checksum computes the USS block check character: an XOR fold of every
// byte from the address field through the last data byte inclusive. The
// STX marker does not participate. Encoder and decoder must use the same
// fold bit-for-bit, since devices echo the structure back.
func Checksum(data []byte) byte {
	var bcc byte
	for _, b := range data {
		bcc ^= b
	}
	return bcc
}
