package nes

import (
	"log"
)

// Bus wires the CPU, PPU, work RAM, controller port and cartridge together
// behind the NES's 16-bit shared address space. It owns CPU/PPU scheduling
// (the PPU runs three times for every CPU cycle) but renders nothing itself
// -- a host drives Clock() and reads pixels back out through Ppu.OnPixelClocked
// and Ppu.OnFrameCompleted.
type Bus struct {
	Cpu        *Cpu6502      // NES CPU.
	Ppu        *Ppu          // Picture processing unit.
	Ram        [2 * 1024]byte // 2KB internal work RAM.
	Cart       *Cartridge    // Inserted cartridge; nil until InsertCartridge.
	Controller *Controller   // Player 1 controller.

	ClockCount int

	Logger *log.Logger

	// OnUnmappedAccess, if set, fires when a CPU read or write falls
	// outside every mapped window (RAM, PPU registers, controller port,
	// cartridge space). The core itself never treats this as fatal --
	// unmapped reads settle to 0x00, writes are dropped.
	OnUnmappedAccess func(op string, addr uint16)
}

const (
	// RAM
	ramMinAddr uint16 = 0x0000
	ramMaxAddr uint16 = 0x1FFF
	ramMirror  uint16 = 0x07FF // mirror every 2KB.

	// PPU registers
	ppuMinAddr uint16 = 0x2000
	ppuMaxAddr uint16 = 0x3FFF
	ppuMirror  uint16 = 0x0007 // mirror every 8 bytes.

	// Controller port
	ctrlAddr1 uint16 = 0x4016
	ctrlAddr2 uint16 = 0x4017

	// Cartridge space (PRG-ROM, and mapper registers on mappers that have
	// them; Mapper 0 has none).
	cartMinAddr uint16 = 0x4020
	cartMaxAddr uint16 = 0xFFFF
)

// NewBus constructs a Bus with a fresh CPU, PPU and controller already
// wired together. No cartridge is attached; call InsertCartridge before
// Reset.
func NewBus(logger *log.Logger) *Bus {
	cpu := NewCpu6502()

	bus := &Bus{
		Cpu:        cpu,
		Ppu:        NewPpu(),
		Controller: NewController(),
		Logger:     logger,
	}

	cpu.ConnectBus(bus)

	return bus
}

// CpuRead is used by the CPU (and by a host's debugger/disassembler) to
// read a byte from the main bus at the given address. Cartridge space is
// checked first since that's where the reset/IRQ/NMI vectors live and
// where most addresses in a running program fall.
func (b *Bus) CpuRead(addr uint16) byte {
	switch {
	case addr >= cartMinAddr && addr <= cartMaxAddr:
		if b.Cart != nil {
			if data, ok := b.Cart.cpuRead(addr); ok {
				return data
			}
		}
	case addr >= ramMinAddr && addr <= ramMaxAddr:
		return b.Ram[addr&ramMirror]
	case addr >= ppuMinAddr && addr <= ppuMaxAddr:
		return b.Ppu.cpuRead(addr & ppuMirror)
	case addr == ctrlAddr1:
		return b.Controller.read()
	case addr == ctrlAddr2:
		// Player 2 port; no second controller wired up.
		return 0x00
	}

	if b.OnUnmappedAccess != nil {
		b.OnUnmappedAccess("read", addr)
	}
	return 0x00
}

// CpuWrite is used by the CPU to write a byte to the main bus at the given
// address.
func (b *Bus) CpuWrite(addr uint16, data byte) {
	switch {
	case addr >= cartMinAddr && addr <= cartMaxAddr:
		if b.Cart != nil && b.Cart.cpuWrite(addr, data) {
			return
		}
	case addr >= ramMinAddr && addr <= ramMaxAddr:
		b.Ram[addr&ramMirror] = data
		return
	case addr >= ppuMinAddr && addr <= ppuMaxAddr:
		b.Ppu.cpuWrite(addr&ppuMirror, data)
		return
	case addr == ctrlAddr1:
		b.Controller.write(data)
		return
	case addr == ctrlAddr2:
		return
	}

	if b.OnUnmappedAccess != nil {
		b.OnUnmappedAccess("write", addr)
	}
}

// InsertCartridge attaches a cartridge to both the CPU-visible bus and the
// PPU's own bus.
func (b *Bus) InsertCartridge(cart *Cartridge) {
	b.Cart = cart
	b.Ppu.ConnectCartridge(cart)

	if b.Logger != nil {
		b.Logger.Printf("nes: cartridge inserted, mapper %d, %d PRG bank(s), %d CHR bank(s)",
			cart.MapperID, cart.PrgBanks, cart.ChrBanks)
	}
}

// Reset brings the CPU to its power-on state by reading the reset vector
// out of cartridge space; a cartridge must already be inserted.
func (b *Bus) Reset() {
	b.Cpu.Reset()
	b.ClockCount = 0

	if b.Logger != nil {
		b.Logger.Printf("nes: reset, pc=%#04X", b.Cpu.Pc)
	}
}

// Clock advances the system by one PPU dot. The CPU is clocked every third
// call, matching the NES's fixed 3:1 PPU:CPU ratio. A PPU-raised NMI is
// delivered to the CPU within the same call that raised it, after that
// call's CPU cycle (if any).
func (b *Bus) Clock() {
	b.Ppu.Clock()

	if b.ClockCount%3 == 0 {
		b.Cpu.Cycle()
	}

	if b.Ppu.nmi {
		b.Ppu.nmi = false
		b.Cpu.NMI()
	}

	b.ClockCount++
}
