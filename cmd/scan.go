// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Oleksandr Kolodkin <oleksandr.kolodkin@ukr.net>

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/kolod/uss-detect/internal/logging"
	"github.com/kolod/uss-detect/internal/portid"
	"github.com/kolod/uss-detect/internal/scan"
	"github.com/kolod/uss-detect/internal/transport"
	"github.com/kolod/uss-detect/pkg/uss"
)

var (
	forceAll  bool
	idArg     string
	timeoutMS int
	plainMode bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Detect USS devices and the bus baudrate",
	Long: `Sweep the candidate baudrates and ping every USS address.

By default the scan stops after the first baudrate that yields at least
one answering device (its address sweep is still finished, so devices
sharing the bus are all reported). Use --force-all to sweep every
baudrate regardless and report hits per baudrate.

Examples:
  uss-detect scan
  uss-detect scan --id 0-10 --timeout 50
  uss-detect scan --force-all --plain`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().BoolVar(&forceAll, "force-all", false, "Sweep all baudrates instead of stopping at the first match")
	scanCmd.Flags().StringVar(&idArg, "id", "", "Address subset to probe, e.g. \"7\", \"0-10\" or \"0,3,29\" (default all 0-31)")
	scanCmd.Flags().IntVar(&timeoutMS, "timeout", 100, "Per-address response timeout (milliseconds)")
	scanCmd.Flags().BoolVar(&plainMode, "plain", false, "Line-oriented output instead of the terminal UI")
}

func runScan(cmd *cobra.Command, args []string) error {
	logger := logging.New(verbose, logFile)
	defer logger.Sync()

	addresses := scan.AllAddresses()
	if idArg != "" {
		var err error
		addresses, err = scan.ParseAddressSet(idArg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid --id %q: %v\n", idArg, err)
			os.Exit(2)
		}
	}

	mode := scan.FirstMatch
	if forceAll {
		mode = scan.Exhaustive
	}

	// Ctrl+C requests cancellation; the sweep stops at the next address
	// boundary and the partial result is still reported.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ch, port, err := openChannel(ctx, logger)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	defer ch.Close()

	cfg := scan.Config{
		Addresses: addresses,
		Mode:      mode,
		Timeout:   time.Duration(timeoutMS) * time.Millisecond,
		Logger:    logger,
		RunID:     uuid.NewString(),
	}

	var result *scan.Result
	if plainMode || !term.IsTerminal(int(os.Stdout.Fd())) {
		result, err = runScanPlain(ctx, ch, cfg, port, len(addresses))
	} else {
		result, err = runScanTUI(ctx, ch, cfg, port, len(addresses))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	printSummary(result, mode)
	return nil
}

// openChannel resolves the serial port, either from --port or through the
// persisted hardware identity, and opens it with USS framing.
func openChannel(ctx context.Context, logger *zap.Logger) (transport.Channel, portid.PortInfo, error) {
	if portName != "" {
		ch, err := transport.OpenSerial(portName)
		if err != nil {
			return nil, portid.PortInfo{}, err
		}
		return ch, portid.PortInfo{Path: portName, HardwareID: portName}, nil
	}

	path := storePath
	if path == "" {
		path = portid.DefaultStorePath()
	}
	store := portid.LoadStore(path, logger)
	mgr := portid.NewManager(store, portid.SystemEnumerator{}, transport.OpenSerial, promptSelector{}, logger)
	return mgr.Connect(ctx)
}

// runScanPlain drives the sweep with line-oriented progress output, for
// pipes and dumb terminals.
func runScanPlain(ctx context.Context, ch transport.Channel, cfg scan.Config, port portid.PortInfo, total int) (*scan.Result, error) {
	fmt.Printf("Scanning %s (%d addresses per baudrate)\n", port.Path, total)

	cfg.Sink = func(ev scan.Event) {
		switch ev := ev.(type) {
		case scan.BaudrateStarted:
			fmt.Printf("Trying %d baud (%d/%d)...\n", ev.Baudrate, ev.Index+1, ev.Total)
		case scan.DeviceFound:
			fmt.Printf("  device at address %d\n", ev.Address)
		case scan.BaudrateFinished:
			if ev.Found == 0 {
				fmt.Printf("  no answer\n")
			}
		}
	}

	return scan.New(ch, cfg).Run(ctx)
}

// printSummary renders the final report.
func printSummary(result *scan.Result, mode scan.Mode) {
	fmt.Println()
	if result.Cancelled {
		fmt.Println("Scan cancelled.")
	}

	if result.Profile == nil {
		fmt.Println("No USS devices found.")
		fmt.Println()
		fmt.Println("Hints:")
		fmt.Println("  - check bus wiring, termination and device power")
		fmt.Println("  - devices answer only when their USS interface is enabled")
		if mode == scan.FirstMatch && !result.Cancelled {
			fmt.Println("  - try --force-all to sweep every baudrate")
		}
		return
	}

	p := result.Profile
	fmt.Println("Bus settings:")
	fmt.Printf("  Baudrate:  %d\n", p.Baudrate)
	fmt.Printf("  Parity:    %s\n", p.Parity)
	fmt.Printf("  Data bits: %d\n", p.DataBits)
	fmt.Printf("  Stop bits: %d\n", p.StopBits)
	fmt.Println()

	fmt.Printf("Devices found: %d\n", len(result.Devices))
	for _, d := range result.Devices {
		fmt.Printf("  address %d\n", d.Address)
	}

	if mode == scan.Exhaustive && len(result.ByBaudrate) > 1 {
		fmt.Println()
		fmt.Println("Hits per baudrate:")
		for _, baud := range uss.DefaultBaudrates {
			if addrs, ok := result.ByBaudrate[baud]; ok {
				fmt.Printf("  %6d baud: %v\n", baud, addrs)
			}
		}
	}

	if result.NoiseEvents > 0 {
		fmt.Println()
		fmt.Printf("Note: %d address(es) returned unparseable bytes (bus noise?)\n", result.NoiseEvents)
	}
}
