// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Oleksandr Kolodkin <oleksandr.kolodkin@ukr.net>

package portid

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// DefaultStoreName is the identity store file in the user's home
// directory.
const DefaultStoreName = ".uss-detect.json"

// Store is the durable adapter identity record. It maps hardware
// identifiers to their last-known device paths and remembers a single
// preferred identity used as the default on the next run.
//
// The store is mutated only by the Manager, on successful connect, with
// one atomic write per mutation. Concurrent runs against the same store
// are not supported.
type Store struct {
	Preferred  *string           `json:"preferred_hardware_id"`
	KnownPorts map[string]string `json:"known_ports"`

	path string
	log  *zap.Logger
}

// DefaultStorePath returns the store location in the user's home
// directory, falling back to the working directory when home is unknown.
func DefaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultStoreName
	}
	return filepath.Join(home, DefaultStoreName)
}

// LoadStore reads the identity store at path. A missing, unreadable or
// corrupt file is recovered locally by starting from an empty store;
// persisted-state problems are never fatal to a run.
func LoadStore(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		KnownPorts: make(map[string]string),
		path:       path,
		log:        logger,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("identity store unreadable, starting empty",
				zap.String("path", path), zap.Error(err))
		}
		return s
	}

	if err := json.Unmarshal(data, s); err != nil {
		logger.Warn("identity store corrupt, starting empty",
			zap.String("path", path), zap.Error(err))
		s.Preferred = nil
		s.KnownPorts = make(map[string]string)
		return s
	}
	if s.KnownPorts == nil {
		s.KnownPorts = make(map[string]string)
	}
	return s
}

// PreferredID returns the preferred hardware identifier, or "" when none
// is stored.
func (s *Store) PreferredID() string {
	if s.Preferred == nil {
		return ""
	}
	return *s.Preferred
}

// RecordConnect marks hwid as the preferred identity and records its
// current path, then persists the store. Called only after a successful
// connect.
func (s *Store) RecordConnect(hwid, path string) error {
	s.Preferred = &hwid
	s.KnownPorts[hwid] = path
	return s.save()
}

// save writes the store atomically: serialize to a sibling temp file,
// then rename over the target.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode identity store: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write identity store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace identity store: %w", err)
	}
	return nil
}
