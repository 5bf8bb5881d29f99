// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Oleksandr Kolodkin <oleksandr.kolodkin@ukr.net>

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kolod/uss-detect/internal/portid"
)

// promptSelector asks the operator to pick one of several serial ports
// when no persisted identity matches.
type promptSelector struct{}

func (promptSelector) Choose(ctx context.Context, candidates []portid.PortInfo) (portid.PortInfo, error) {
	fmt.Println("Multiple serial ports found:")
	for i, p := range candidates {
		if p.Description != "" {
			fmt.Printf("  [%d] %s (%s, %s)\n", i+1, p.Path, p.HardwareID, p.Description)
		} else {
			fmt.Printf("  [%d] %s (%s)\n", i+1, p.Path, p.HardwareID)
		}
	}

	type answer struct {
		line string
		err  error
	}
	// One reader for the whole prompt loop, so buffered input survives a
	// retry after an invalid selection.
	reader := bufio.NewReader(os.Stdin)
	lines := make(chan answer, 1)
	readLine := func() {
		go func() {
			line, err := reader.ReadString('\n')
			lines <- answer{line: line, err: err}
		}()
	}
	readLine()

	for {
		fmt.Printf("Select port [1-%d]: ", len(candidates))

		var a answer
		select {
		case <-ctx.Done():
			fmt.Println()
			return portid.PortInfo{}, ctx.Err()
		case a = <-lines:
		}
		if a.err != nil {
			return portid.PortInfo{}, fmt.Errorf("reading selection: %v", a.err)
		}

		n, err := strconv.Atoi(strings.TrimSpace(a.line))
		if err == nil && n >= 1 && n <= len(candidates) {
			return candidates[n-1], nil
		}

		fmt.Println("Invalid selection.")
		readLine()
	}
}
