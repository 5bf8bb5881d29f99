// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Oleksandr Kolodkin <oleksandr.kolodkin@ukr.net>

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kolod/uss-detect/internal/logging"
	"github.com/kolod/uss-detect/internal/portid"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports and their hardware identities",
	Long: `List the serial ports known to the operating system.

USB adapters are shown with their stable hardware identity
(USB:VID:PID:serial); the port remembered from the last successful
scan is marked with an asterisk.`,
	RunE: runPorts,
}

func init() {
	rootCmd.AddCommand(portsCmd)
}

func runPorts(cmd *cobra.Command, args []string) error {
	logger := logging.New(verbose, logFile)
	defer logger.Sync()

	path := storePath
	if path == "" {
		path = portid.DefaultStorePath()
	}
	store := portid.LoadStore(path, logger)
	preferred := store.PreferredID()

	ports, err := portid.SystemEnumerator{}.List()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if len(ports) == 0 {
		fmt.Println("No serial ports found.")
		return nil
	}

	for _, p := range ports {
		marker := " "
		if p.HardwareID == preferred {
			marker = "*"
		}
		if p.Description != "" {
			fmt.Printf("%s %-20s %-28s %s\n", marker, p.Path, p.HardwareID, p.Description)
		} else {
			fmt.Printf("%s %-20s %s\n", marker, p.Path, p.HardwareID)
		}
	}
	return nil
}
