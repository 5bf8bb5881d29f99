// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Oleksandr Kolodkin <oleksandr.kolodkin@ukr.net>

package portid

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func storePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "store.json")
}

func TestLoadStore_Missing(t *testing.T) {
	s := LoadStore(storePath(t), nil)
	if s.PreferredID() != "" {
		t.Errorf("missing store should have no preference, got %q", s.PreferredID())
	}
	if len(s.KnownPorts) != 0 {
		t.Errorf("missing store should know no ports, got %v", s.KnownPorts)
	}
}

func TestLoadStore_Corrupt(t *testing.T) {
	path := storePath(t)
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	// Corrupt persisted state falls back to empty, never fails the run.
	s := LoadStore(path, nil)
	if s.PreferredID() != "" || len(s.KnownPorts) != 0 {
		t.Errorf("corrupt store should load empty, got %+v", s)
	}
}

func TestStore_RecordConnectRoundTrip(t *testing.T) {
	path := storePath(t)

	s := LoadStore(path, nil)
	if err := s.RecordConnect("USB:1A86:7523:A50285", "/dev/ttyUSB0"); err != nil {
		t.Fatalf("RecordConnect failed: %v", err)
	}
	if err := s.RecordConnect("USB:0403:6001:FT1234", "/dev/ttyUSB1"); err != nil {
		t.Fatalf("RecordConnect failed: %v", err)
	}

	loaded := LoadStore(path, nil)
	if loaded.PreferredID() != "USB:0403:6001:FT1234" {
		t.Errorf("preferred: got %q, want the last connected identity", loaded.PreferredID())
	}
	if loaded.KnownPorts["USB:1A86:7523:A50285"] != "/dev/ttyUSB0" {
		t.Errorf("known ports missing earlier identity: %v", loaded.KnownPorts)
	}
	if loaded.KnownPorts["USB:0403:6001:FT1234"] != "/dev/ttyUSB1" {
		t.Errorf("known ports missing latest identity: %v", loaded.KnownPorts)
	}
}

func TestStore_Schema(t *testing.T) {
	path := storePath(t)
	s := LoadStore(path, nil)
	if err := s.RecordConnect("USB:1A86:7523:A50285", "/dev/ttyUSB0"); err != nil {
		t.Fatalf("RecordConnect failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("store is not valid JSON: %v", err)
	}
	if _, ok := raw["preferred_hardware_id"]; !ok {
		t.Error("missing preferred_hardware_id field")
	}
	if _, ok := raw["known_ports"]; !ok {
		t.Error("missing known_ports field")
	}
}

func TestStore_RecordConnectUpdatesPath(t *testing.T) {
	path := storePath(t)
	s := LoadStore(path, nil)

	// Same hardware reappearing under a different device node keeps one
	// entry with the fresh path.
	if err := s.RecordConnect("USB:1A86:7523:A50285", "/dev/ttyUSB0"); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordConnect("USB:1A86:7523:A50285", "/dev/ttyUSB3"); err != nil {
		t.Fatal(err)
	}

	loaded := LoadStore(path, nil)
	if len(loaded.KnownPorts) != 1 {
		t.Errorf("expected one known port, got %v", loaded.KnownPorts)
	}
	if loaded.KnownPorts["USB:1A86:7523:A50285"] != "/dev/ttyUSB3" {
		t.Errorf("path not updated: %v", loaded.KnownPorts)
	}
}
