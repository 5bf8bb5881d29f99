// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Oleksandr Kolodkin <oleksandr.kolodkin@ukr.net>

package scan

import (
	"reflect"
	"testing"
)

func TestParseAddressSet_Valid(t *testing.T) {
	tests := []struct {
		name string
		arg  string
		want []int
	}{
		{name: "single address", arg: "0", want: []int{0}},
		{name: "single high address", arg: "31", want: []int{31}},
		{name: "range", arg: "0-5", want: []int{0, 1, 2, 3, 4, 5}},
		{name: "single-element range", arg: "7-7", want: []int{7}},
		{name: "comma list", arg: "0,2,5", want: []int{0, 2, 5}},
		{name: "unsorted list is sorted", arg: "5,2,0", want: []int{0, 2, 5}},
		{name: "duplicates removed", arg: "3,3,3", want: []int{3}},
		{name: "mixed list and range", arg: "0-2,7,20-22", want: []int{0, 1, 2, 7, 20, 21, 22}},
		{name: "overlapping ranges", arg: "0-5,3-8", want: []int{0, 1, 2, 3, 4, 5, 6, 7, 8}},
		{name: "whitespace tolerated", arg: " 1 , 3 - 4 ", want: []int{1, 3, 4}},
		{name: "full address space", arg: "0-31", want: AllAddresses()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAddressSet(tt.arg)
			if err != nil {
				t.Fatalf("ParseAddressSet(%q) failed: %v", tt.arg, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseAddressSet(%q) = %v, want %v", tt.arg, got, tt.want)
			}
		})
	}
}

func TestParseAddressSet_Invalid(t *testing.T) {
	tests := []struct {
		name string
		arg  string
	}{
		{name: "empty", arg: ""},
		{name: "not a number", arg: "abc"},
		{name: "address too high", arg: "32"},
		{name: "negative address", arg: "-1"},
		{name: "range end too high", arg: "30-35"},
		{name: "reversed range", arg: "10-5"},
		{name: "bad list element", arg: "0,x,2"},
		{name: "trailing comma", arg: "1,2,"},
		{name: "dangling range", arg: "5-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, err := ParseAddressSet(tt.arg); err == nil {
				t.Errorf("ParseAddressSet(%q) = %v, expected error", tt.arg, got)
			}
		})
	}
}
