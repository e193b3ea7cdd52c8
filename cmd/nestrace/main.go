// Command nestrace runs a ROM headlessly and streams one line per
// instruction fetch in the conventional nestest trace column layout, for
// byte-for-byte comparison against a reference log.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/n-ulricksen/nescore/nes"
)

var (
	flagRomPath string
	flagStartPc uint
	flagCycles  uint
)

func main() {
	flag.StringVar(&flagRomPath, "rom", "", "path to an iNES ROM file")
	flag.UintVar(&flagStartPc, "pc", 0, "override the program counter after reset (0 = use the reset vector)")
	flag.UintVar(&flagCycles, "n", 26554, "number of CPU cycles to run (default matches nestest's automated-mode length)")
	flag.Parse()

	if flagRomPath == "" {
		fmt.Fprintln(os.Stderr, "usage: nestrace -rom path/to/nestest.nes")
		os.Exit(2)
	}

	cart, err := nes.LoadROMFile(flagRomPath)
	if err != nil {
		log.Fatal(err)
	}

	bus := nes.NewBus(nil)
	bus.InsertCartridge(cart)
	bus.Reset()

	if flagStartPc != 0 {
		bus.Cpu.Pc = uint16(flagStartPc)
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	bus.Cpu.OnOpcodeLoaded = func(opcode byte, pc uint16) {
		fmt.Fprintln(out, traceLine(bus, opcode, pc))
	}

	for i := uint(0); i < flagCycles; i++ {
		bus.Cpu.Cycle()
	}
}

// traceLine formats one instruction's fetch-time state in the nestest
// column layout: PC, raw opcode bytes, disassembly, then register/cycle
// state as it stood immediately before the instruction ran.
func traceLine(bus *nes.Bus, opcode byte, pc uint16) string {
	cpu := bus.Cpu
	inst := cpu.InstLookup[opcode]

	operandLen := operandLength(inst.Mode)
	bytes := fmt.Sprintf("%02X", opcode)
	for i := 0; i < operandLen; i++ {
		bytes += fmt.Sprintf(" %02X", bus.CpuRead(pc+1+uint16(i)))
	}

	return fmt.Sprintf("%04X  %-9s %-4s  A:%02X X:%02X Y:%02X P:%02X SP:%02X CYC:%d",
		pc, bytes, inst.Name, cpu.A, cpu.X, cpu.Y, cpu.Status, cpu.Sp, cpu.CycleCount)
}

func operandLength(mode nes.AddressingMode) int {
	switch mode {
	case nes.IMP:
		return 0
	case nes.IMM, nes.REL, nes.ZP0, nes.ZPX, nes.ZPY, nes.IZX, nes.IZY:
		return 1
	case nes.ABS, nes.ABX, nes.ABY, nes.IND:
		return 2
	default:
		return 0
	}
}
