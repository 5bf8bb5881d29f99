// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Oleksandr Kolodkin <oleksandr.kolodkin@ukr.net>

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kolod/uss-detect/internal/portid"
)

var (
	// Connection flags
	portName  string
	storePath string

	// Logging flags
	logFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "uss-detect",
	Short: "Siemens USS bus device scanner",
	Long: `uss-detect - a CLI tool for detecting USS devices on a serial bus.

Sweeps the candidate baudrates (fastest first) and pings every bus address
with a minimal USS telegram. A valid, checksummed answer identifies an
occupied address; the winning baudrate becomes the reported bus profile.

Port selection:
  Explicit:  --port /dev/ttyUSB0
  Automatic: with no --port, the last used adapter is recognized by its
             USB hardware identity (VID:PID:serial) even when the OS has
             renumbered the device path. The identity is persisted in
             ~/.uss-detect.json.`,
	Version: "1.2.0",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device (skips automatic port selection)")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "Port identity store path (default ~/"+portid.DefaultStoreName+")")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Append diagnostics to a rotated JSON log file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug-level console diagnostics")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
