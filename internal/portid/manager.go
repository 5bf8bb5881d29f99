// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Oleksandr Kolodkin <oleksandr.kolodkin@ukr.net>

package portid

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kolod/uss-detect/internal/transport"
)

// DefaultPollInterval paces the Waiting state's port re-enumeration.
const DefaultPollInterval = 500 * time.Millisecond

// Selector resolves the Disambiguating state: when several ports are
// available and none matches the stored preference, the candidate set is
// handed to the caller and connection blocks until one is chosen.
type Selector interface {
	Choose(ctx context.Context, candidates []PortInfo) (PortInfo, error)
}

// SelectorFunc adapts a function to the Selector interface.
type SelectorFunc func(ctx context.Context, candidates []PortInfo) (PortInfo, error)

func (f SelectorFunc) Choose(ctx context.Context, candidates []PortInfo) (PortInfo, error) {
	return f(ctx, candidates)
}

// Opener opens a channel to the port at path.
type Opener func(path string) (transport.Channel, error)

// Manager re-establishes a channel to the same physical adapter across
// reconnects and device renumbering. Once a channel is handed out its
// hardware identity is fixed for the run; the open transport is trusted
// to stay on the same adapter.
type Manager struct {
	store    *Store
	enum     Enumerator
	open     Opener
	selector Selector
	poll     time.Duration
	log      *zap.Logger
}

// NewManager wires a manager. selector may be nil when the caller cannot
// disambiguate; in that state Connect fails instead of blocking forever.
func NewManager(store *Store, enum Enumerator, open Opener, selector Selector, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:    store,
		enum:     enum,
		open:     open,
		selector: selector,
		poll:     DefaultPollInterval,
		log:      logger,
	}
}

// SetPollInterval overrides the Waiting state's poll pacing (tests).
func (m *Manager) SetPollInterval(d time.Duration) {
	m.poll = d
}

// Connect resolves the bus adapter and returns an open channel to it:
//
//   - a port matching the preferred hardware identity connects directly,
//     even under a different path than last time;
//   - with no preferred match and exactly one port available, that port
//     is taken and becomes the new preference;
//   - with no ports available the manager waits, re-enumerating at the
//     poll interval, until a port appears or ctx is cancelled;
//   - with several ports and no preferred match the selector decides.
//
// The identity store is updated only after the port opened successfully.
func (m *Manager) Connect(ctx context.Context) (transport.Channel, PortInfo, error) {
	ports, err := m.enum.List()
	if err != nil {
		return nil, PortInfo{}, err
	}

	if len(ports) == 0 {
		return m.waitForPort(ctx)
	}

	if port, ok := m.matchPreferred(ports); ok {
		return m.connectTo(port)
	}

	if len(ports) == 1 {
		return m.connectTo(ports[0])
	}

	return m.disambiguate(ctx, ports)
}

// waitForPort is the Waiting state: poll for newly available ports until
// one appears or cancellation is requested. Cancellation is checked at
// every poll tick, never by interrupting anything in flight.
func (m *Manager) waitForPort(ctx context.Context) (transport.Channel, PortInfo, error) {
	m.log.Info("no serial ports available, waiting", zap.Duration("poll", m.poll))

	ticker := time.NewTicker(m.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, PortInfo{}, ctx.Err()
		case <-ticker.C:
		}

		ports, err := m.enum.List()
		if err != nil {
			return nil, PortInfo{}, err
		}
		if len(ports) == 0 {
			continue
		}

		if port, ok := m.matchPreferred(ports); ok {
			return m.connectTo(port)
		}
		if len(ports) == 1 {
			return m.connectTo(ports[0])
		}
		return m.disambiguate(ctx, ports)
	}
}

// disambiguate is the Disambiguating state: expose the candidate list and
// block until the external caller supplies a choice.
func (m *Manager) disambiguate(ctx context.Context, ports []PortInfo) (transport.Channel, PortInfo, error) {
	if m.selector == nil {
		return nil, PortInfo{}, fmt.Errorf("%d serial ports available and no way to choose one", len(ports))
	}

	m.log.Info("multiple serial ports available", zap.Int("count", len(ports)))
	port, err := m.selector.Choose(ctx, ports)
	if err != nil {
		return nil, PortInfo{}, fmt.Errorf("port selection failed: %w", err)
	}
	return m.connectTo(port)
}

// matchPreferred finds the port whose hardware identity equals the stored
// preference, tolerating a changed device path.
func (m *Manager) matchPreferred(ports []PortInfo) (PortInfo, bool) {
	preferred := m.store.PreferredID()
	if preferred == "" {
		return PortInfo{}, false
	}
	for _, p := range ports {
		if p.HardwareID == preferred {
			return p, true
		}
	}
	return PortInfo{}, false
}

// connectTo opens the chosen port and, only on success, records it as the
// preferred identity.
func (m *Manager) connectTo(port PortInfo) (transport.Channel, PortInfo, error) {
	ch, err := m.open(port.Path)
	if err != nil {
		return nil, PortInfo{}, fmt.Errorf("failed to connect to %s: %w", port.Path, err)
	}

	if err := m.store.RecordConnect(port.HardwareID, port.Path); err != nil {
		// The connection is usable; a store write failure only costs the
		// preference on the next run.
		m.log.Warn("failed to persist adapter identity", zap.Error(err))
	}

	m.log.Info("connected",
		zap.String("path", port.Path),
		zap.String("hardware_id", port.HardwareID),
	)
	return ch, port, nil
}
