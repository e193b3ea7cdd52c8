package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/faiface/pixel/pixelgl"

	"github.com/n-ulricksen/nescore/nes"
)

// Command line flags
var (
	flagRomPath string
	flagDebug   bool
)

func main() {
	parseFlags()

	logger := log.New(os.Stdout, "nes: ", log.LstdFlags)

	cart, err := nes.LoadROMFile(flagRomPath)
	if err != nil {
		logger.Fatal(err)
	}

	bus := nes.NewBus(logger)
	bus.InsertCartridge(cart)
	bus.Reset()

	pixelgl.Run(func() {
		run(bus, logger)
	})
}

func parseFlags() {
	flag.StringVar(&flagRomPath, "rom", "", "path to an iNES ROM file")
	flag.BoolVar(&flagDebug, "d", false, "enable the debug register panel")

	flag.Parse()

	if flagRomPath == "" {
		fmt.Fprintln(os.Stderr, "usage: nes -rom path/to/game.nes")
		os.Exit(2)
	}
}

// run wires the core's pixel/frame hooks to a Display and drives the
// emulation loop on a background goroutine, cancelled when the window
// closes.
func run(bus *nes.Bus, logger *log.Logger) {
	display := NewDisplay(flagDebug)

	// Background/sprite pixel generation is out of this core's scope (see
	// the Ppu doc comment); OnPixelClocked visualizes raster position
	// through the one pixel source the core does expose -- palette entry
	// zero -- so the host has something to paint per dot.
	bus.Ppu.OnPixelClocked = func(cycle, scanline int) {
		x, y := cycle-1, scanline
		if x < 0 || x >= 256 || y < 0 || y >= 240 {
			return
		}
		display.DrawPixel(x, y, bus.Ppu.GetColor(0, 0))
	}

	frameDone := make(chan struct{}, 1)
	bus.Ppu.OnFrameCompleted = func() {
		select {
		case frameDone <- struct{}{}:
		default:
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go emulate(ctx, bus)

	for !display.window.Closed() {
		select {
		case <-frameDone:
		case <-time.After(20 * time.Millisecond):
		}

		updateControllerInput(display.window, bus.Controller)

		if flagDebug {
			display.WriteRegDebugString(cpuDebugString(bus))
		}

		display.UpdateScreen()
	}
}

// emulate clocks the bus as fast as it can until ctx is cancelled. Pacing
// to 60Hz happens in run's render loop via the frame-complete signal; this
// goroutine's only job is to keep producing frames.
func emulate(ctx context.Context, bus *nes.Bus) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			bus.Clock()
		}
	}
}

func cpuDebugString(bus *nes.Bus) string {
	cpu := bus.Cpu
	return fmt.Sprintf(
		"Flags: %08b\nPC: %#04X\nA: %#02X\nX: %#02X\nY: %#02X\nSP: %#02X\n\nCycles: %d\n",
		cpu.Status, cpu.Pc, cpu.A, cpu.X, cpu.Y, cpu.Sp, cpu.CycleCount,
	)
}
