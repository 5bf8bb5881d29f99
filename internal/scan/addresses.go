// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Oleksandr Kolodkin <oleksandr.kolodkin@ukr.net>

package scan

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kolod/uss-detect/pkg/uss"
)

// AllAddresses returns the full USS address space 0..31.
func AllAddresses() []int {
	addrs := make([]int, uss.MaxAddress+1)
	for i := range addrs {
		addrs[i] = i
	}
	return addrs
}

// ParseAddressSet parses an address selection argument. Supported forms:
// a single address ("7"), a range ("0-10"), a comma-separated list
// ("0,2,5"), and any mix of those ("0-3,7,20-22"). The result is sorted
// and deduplicated.
func ParseAddressSet(arg string) ([]int, error) {
	seen := make(map[int]bool)

	for _, part := range strings.Split(arg, ",") {
		part = strings.TrimSpace(part)

		if strings.Contains(part, "-") {
			bounds := strings.SplitN(part, "-", 2)
			start, err := parseAddress(bounds[0])
			if err != nil {
				return nil, fmt.Errorf("invalid range %q: %w", part, err)
			}
			end, err := parseAddress(bounds[1])
			if err != nil {
				return nil, fmt.Errorf("invalid range %q: %w", part, err)
			}
			if start > end {
				return nil, fmt.Errorf("invalid range %q: start > end", part)
			}
			for a := start; a <= end; a++ {
				seen[a] = true
			}
			continue
		}

		a, err := parseAddress(part)
		if err != nil {
			return nil, err
		}
		seen[a] = true
	}

	addrs := make([]int, 0, len(seen))
	for a := range seen {
		addrs = append(addrs, a)
	}
	sort.Ints(addrs)
	return addrs, nil
}

func parseAddress(s string) (int, error) {
	s = strings.TrimSpace(s)
	a, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	if a < uss.MinAddress || a > uss.MaxAddress {
		return 0, fmt.Errorf("address %d out of valid range [%d-%d]", a, uss.MinAddress, uss.MaxAddress)
	}
	return a, nil
}
