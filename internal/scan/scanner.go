// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Oleksandr Kolodkin <oleksandr.kolodkin@ukr.net>

package scan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kolod/uss-detect/internal/transport"
	"github.com/kolod/uss-detect/pkg/uss"
)

// ErrChannelLost reports that the bus adapter failed mid-sweep (unplugged,
// write failure, reconfiguration failure). The run aborts immediately;
// this is distinct from an unoccupied address.
var ErrChannelLost = errors.New("channel lost")

// DefaultTimeout is the per-query response timeout. One fixed timeout is
// used across all baudrates; it must cover the worst-case device response
// time at the slowest candidate (1200 baud: a minimal 4-byte answer takes
// roughly 37ms on the wire).
const DefaultTimeout = 100 * time.Millisecond

// Config parameterizes one scan run.
type Config struct {
	// Baudrates overrides the candidate list. Defaults to
	// uss.DefaultBaudrates, fastest first; the order is binding.
	Baudrates []int

	// Addresses overrides the address subset. Defaults to 0..31.
	Addresses []int

	// Mode selects the exit policy. Zero value is FirstMatch.
	Mode Mode

	// Timeout bounds each query/response exchange. Defaults to
	// DefaultTimeout.
	Timeout time.Duration

	// Sink receives progress events; may be nil.
	Sink Sink

	// Logger receives diagnostics; may be nil.
	Logger *zap.Logger

	// RunID tags this run's log entries.
	RunID string
}

// Scanner sweeps the baudrate/address space over a single channel. It is
// the channel's sole owner for the run's lifetime and issues exactly one
// request at a time: USS responders are single-threaded, overlapping
// requests would corrupt address disambiguation.
type Scanner struct {
	ch  transport.Channel
	cfg Config
	log *zap.Logger
}

// New creates a scanner over an open channel.
func New(ch transport.Channel, cfg Config) *Scanner {
	if len(cfg.Baudrates) == 0 {
		cfg.Baudrates = uss.DefaultBaudrates
	}
	if len(cfg.Addresses) == 0 {
		cfg.Addresses = AllAddresses()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.RunID != "" {
		log = log.With(zap.String("run_id", cfg.RunID))
	}
	return &Scanner{ch: ch, cfg: cfg, log: log}
}

// Run executes the sweep. It always returns a non-nil Result holding
// whatever was accumulated; the error is non-nil only when the channel
// itself failed. Cancellation via ctx is not an error: the partial result
// comes back with Cancelled set.
func (s *Scanner) Run(ctx context.Context) (*Result, error) {
	result := &Result{ByBaudrate: make(map[int][]int)}

	s.log.Info("scan started",
		zap.String("mode", s.cfg.Mode.String()),
		zap.Ints("baudrates", s.cfg.Baudrates),
		zap.Int("addresses", len(s.cfg.Addresses)),
		zap.Duration("timeout", s.cfg.Timeout),
	)

	for i, baud := range s.cfg.Baudrates {
		if cancelled(ctx) {
			return s.cancel(result), nil
		}

		if err := s.ch.SetBaudrate(baud); err != nil {
			s.log.Error("baudrate reconfiguration failed", zap.Int("baudrate", baud), zap.Error(err))
			return result, fmt.Errorf("%w: %v", ErrChannelLost, err)
		}

		s.emit(BaudrateStarted{Baudrate: baud, Index: i, Total: len(s.cfg.Baudrates)})

		found, err := s.sweepAddresses(ctx, baud, result)
		if err != nil {
			return result, err
		}

		s.emit(BaudrateFinished{Baudrate: baud, Found: found})

		if cancelled(ctx) {
			return s.cancel(result), nil
		}

		if found > 0 && s.cfg.Mode == FirstMatch {
			result.finalize(baud)
			break
		}
	}

	if result.Profile == nil {
		result.finalize(-1)
	}

	s.log.Info("scan complete",
		zap.Int("devices", len(result.Devices)),
		zap.Int("noise_events", result.NoiseEvents),
	)
	s.emit(ScanComplete{Result: result})
	return result, nil
}

// sweepAddresses probes every configured address at the current baudrate.
// Decode failures never abort the sweep: adjacent noise must not stop
// discovery of other addresses.
func (s *Scanner) sweepAddresses(ctx context.Context, baud int, result *Result) (int, error) {
	found := 0
	for _, addr := range s.cfg.Addresses {
		if cancelled(ctx) {
			return found, nil
		}

		outcome, err := s.probe(addr)
		if err != nil {
			s.log.Error("channel failure", zap.Int("baudrate", baud), zap.Int("address", addr), zap.Error(err))
			return found, fmt.Errorf("%w: %v", ErrChannelLost, err)
		}

		switch outcome {
		case OutcomeDevice:
			found++
			result.ByBaudrate[baud] = append(result.ByBaudrate[baud], addr)
			s.log.Info("device found", zap.Int("baudrate", baud), zap.Int("address", addr))
			s.emit(DeviceFound{Baudrate: baud, Address: addr})
		case OutcomeNoise:
			result.NoiseEvents++
			s.log.Debug("unusable response", zap.Int("baudrate", baud), zap.Int("address", addr))
		}

		s.emit(AddressChecked{Baudrate: baud, Address: addr, Outcome: outcome})
	}
	return found, nil
}

// probe sends one ping query and waits out the response window. The
// response may arrive fragmented, so decoding is retried on the growing
// buffer until the deadline.
func (s *Scanner) probe(addr int) (Outcome, error) {
	query, err := uss.NewPingQuery(byte(addr))
	if err != nil {
		return OutcomeSilent, err
	}

	if _, err := s.ch.Write(query); err != nil {
		return OutcomeSilent, err
	}

	deadline := time.Now().Add(s.cfg.Timeout)
	buf := make([]byte, 64)
	var response []byte

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}

		n, err := s.ch.ReadWithTimeout(buf, remaining)
		if err != nil {
			return OutcomeSilent, err
		}
		if n == 0 {
			break // timed out
		}
		response = append(response, buf[:n]...)

		tg, derr := uss.DecodeResponse(response)
		if derr == nil && int(tg.Address()) == addr {
			return OutcomeDevice, nil
		}
	}

	if len(response) > 0 {
		return OutcomeNoise, nil
	}
	return OutcomeSilent, nil
}

func (s *Scanner) cancel(result *Result) *Result {
	result.Cancelled = true
	if result.Profile == nil {
		result.finalize(-1)
	}
	s.log.Info("scan cancelled",
		zap.Int("devices", len(result.Devices)),
		zap.Int("noise_events", result.NoiseEvents),
	)
	s.emit(ScanCancelled{Result: result})
	return result
}

func cancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
