// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Oleksandr Kolodkin <oleksandr.kolodkin@ukr.net>
//
// uss-detect - Siemens USS Protocol Device Scanner
//
// Detects USS devices on a serial bus and determines the bus baudrate
// and the set of occupied device addresses.

package main

import (
	"os"

	"github.com/kolod/uss-detect/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
