package nes

import "image/color"

// References:
// http://wiki.nesdev.com/w/index.php/PPU_registers
// http://wiki.nesdev.com/w/index.php/PPU_rendering
//
// Ppu models the NTSC timing grid and the register/palette-RAM surface of
// the picture processing unit. Background/sprite pixel generation is
// intentionally not implemented here -- see the package doc comment on the
// Bus type for the boundary this core draws.
type Ppu struct {
	Cart *Cartridge

	tblName [2][1024]byte // 2 on-board nametables.
	palette [32]byte      // Palette RAM.

	oamAddr byte
	oam     [256]byte

	ctrl   PpuReg
	mask   PpuReg
	status PpuReg

	vramAddr    PpuLoopyReg // Current VRAM address, used for PPUDATA access.
	tramAddr    PpuLoopyReg // Temporary VRAM address, latched by PPUSCROLL/PPUADDR.
	fineX       byte
	addrLatch   bool // false = first write (hi byte), true = second write (lo byte)
	dataBuffer  byte // PPUDATA reads are delayed by one read, per real hardware.

	Cycle    int // 0..340
	Scanline int // -1..260

	frameComplete bool
	nmi           bool // Latched true for one Bus.Clock() when an NMI should fire.

	// OnPixelClocked, if set, fires once per PPU dot advanced by Clock().
	OnPixelClocked func(cycle, scanline int)
	// OnFrameCompleted, if set, fires once every 341*262 dots.
	OnFrameCompleted func()
}

func NewPpu() *Ppu {
	return &Ppu{
		Scanline: -1,
	}
}

func (p *Ppu) ConnectCartridge(c *Cartridge) {
	p.Cart = c
}

// nesPalette is the fixed 64-entry NTSC NES color lookup table; every PPU
// palette byte resolves through it to an RGB triple.
var nesPalette = [64]color.RGBA{
	{84, 84, 84, 255}, {0, 30, 116, 255}, {8, 16, 144, 255}, {48, 0, 136, 255},
	{68, 0, 100, 255}, {92, 0, 48, 255}, {84, 4, 0, 255}, {60, 24, 0, 255},
	{32, 42, 0, 255}, {8, 58, 0, 255}, {0, 64, 0, 255}, {0, 60, 0, 255},
	{0, 50, 60, 255}, {0, 0, 0, 255}, {0, 0, 0, 255}, {0, 0, 0, 255},

	{152, 150, 152, 255}, {8, 76, 196, 255}, {48, 50, 236, 255}, {92, 30, 228, 255},
	{136, 20, 176, 255}, {160, 20, 100, 255}, {152, 34, 32, 255}, {120, 60, 0, 255},
	{84, 90, 0, 255}, {40, 114, 0, 255}, {8, 124, 0, 255}, {0, 118, 40, 255},
	{0, 102, 120, 255}, {0, 0, 0, 255}, {0, 0, 0, 255}, {0, 0, 0, 255},

	{236, 238, 236, 255}, {76, 154, 236, 255}, {120, 124, 236, 255}, {176, 98, 236, 255},
	{228, 84, 236, 255}, {236, 88, 180, 255}, {236, 106, 100, 255}, {212, 136, 32, 255},
	{160, 170, 0, 255}, {116, 196, 0, 255}, {76, 208, 32, 255}, {56, 204, 108, 255},
	{56, 180, 204, 255}, {60, 60, 60, 255}, {0, 0, 0, 255}, {0, 0, 0, 255},

	{236, 238, 236, 255}, {168, 204, 236, 255}, {188, 188, 236, 255}, {212, 178, 236, 255},
	{236, 174, 236, 255}, {236, 174, 212, 255}, {236, 180, 176, 255}, {228, 196, 144, 255},
	{204, 210, 120, 255}, {180, 222, 120, 255}, {168, 226, 144, 255}, {152, 226, 180, 255},
	{160, 214, 228, 255}, {160, 162, 160, 255}, {0, 0, 0, 255}, {0, 0, 0, 255},
}

// GetColor resolves a palette index (0-3) within the given palette number
// (0-7) to an RGB color.
func (p *Ppu) GetColor(paletteNum, pixel byte) color.RGBA {
	idx := p.paletteRead(0x3F00+uint16(paletteNum)*4+uint16(pixel)) & 0x3F
	return nesPalette[idx]
}

// Clock advances the PPU by one NTSC dot. The caller (Bus) is responsible
// for invoking this three times per CPU cycle.
func (p *Ppu) Clock() {
	// vblank begins at the start of scanline 241.
	if p.Scanline == 241 && p.Cycle == 1 {
		p.status.setFlag(statusVBlank)
		if p.ctrl.isFlagSet(ctrlNmi) {
			p.nmi = true
		}
	}

	// Pre-render scanline clears vblank/sprite flags at the start of the
	// visible frame.
	if p.Scanline == -1 && p.Cycle == 1 {
		p.status.clearFlag(statusVBlank)
		p.status.clearFlag(statusSprite0Hit)
		p.status.clearFlag(statusSpriteOverflow)
	}

	if p.OnPixelClocked != nil {
		p.OnPixelClocked(p.Cycle, p.Scanline)
	}

	p.Cycle++
	if p.Cycle > 340 {
		p.Cycle = 0
		p.Scanline++
		if p.Scanline > 260 {
			p.Scanline = -1
			p.frameComplete = true
			if p.OnFrameCompleted != nil {
				p.OnFrameCompleted()
			}
		}
	}
}

// FrameComplete reports whether a full frame has been clocked since the
// last call to ClearFrameComplete.
func (p *Ppu) FrameComplete() bool {
	return p.frameComplete
}

func (p *Ppu) ClearFrameComplete() {
	p.frameComplete = false
}

// Communicate with main (CPU) bus - used for PPU register access. addr has
// already been masked to 0-7 by the Bus.
func (p *Ppu) cpuRead(addr uint16) byte {
	var data byte

	switch addr {
	case 0x0000: // Controller - not readable
	case 0x0001: // Mask - not readable
	case 0x0002: // Status
		data = byte(p.status)&0xE0 | (p.dataBuffer & 0x1F)
		p.status.clearFlag(statusVBlank)
		p.addrLatch = false
	case 0x0003: // OAM Address - not readable
	case 0x0004: // OAM Data
		data = p.oam[p.oamAddr]
	case 0x0005: // Scroll - not readable
	case 0x0006: // Address - not readable
	case 0x0007: // Data
		data = p.dataBuffer
		p.dataBuffer = p.ppuRead(p.vramAddr.value())
		// Palette reads are not delayed by the read-buffer quirk.
		if p.vramAddr.value() >= 0x3F00 {
			data = p.dataBuffer
		}
		p.advanceVramAddr()
	}

	return data
}

func (p *Ppu) cpuWrite(addr uint16, data byte) {
	switch addr {
	case 0x0000: // Controller
		p.ctrl = PpuReg(data)
		p.tramAddr.setNametable(data & 0x03)
	case 0x0001: // Mask
		p.mask = PpuReg(data)
	case 0x0002: // Status - not writable
	case 0x0003: // OAM Address
		p.oamAddr = data
	case 0x0004: // OAM Data
		p.oam[p.oamAddr] = data
		p.oamAddr++
	case 0x0005: // Scroll
		if !p.addrLatch {
			p.fineX = data & 0x07
			p.tramAddr.setCoarseX(data >> 3)
			p.addrLatch = true
		} else {
			p.tramAddr.setFineY(data & 0x07)
			p.tramAddr.setCoarseY(data >> 3)
			p.addrLatch = false
		}
	case 0x0006: // Address
		if !p.addrLatch {
			p.tramAddr = (p.tramAddr & 0x00FF) | (PpuLoopyReg(data&0x3F) << 8)
			p.addrLatch = true
		} else {
			p.tramAddr = (p.tramAddr & 0xFF00) | PpuLoopyReg(data)
			p.vramAddr = p.tramAddr
			p.addrLatch = false
		}
	case 0x0007: // Data
		p.ppuWrite(p.vramAddr.value(), data)
		p.advanceVramAddr()
	}
}

func (p *Ppu) advanceVramAddr() {
	if p.ctrl.isFlagSet(ctrlVramInc) {
		p.vramAddr += 32
	} else {
		p.vramAddr++
	}
}

// Communicate with PPU bus.
func (p *Ppu) ppuRead(addr uint16) byte {
	addr &= 0x3FFF

	if p.Cart != nil {
		if data, ok := p.Cart.ppuRead(addr); ok {
			return data
		}
	}

	switch {
	case addr <= 0x1FFF:
		return 0
	case addr <= 0x3EFF:
		return p.tblName[p.nametableIndex(addr)][addr&0x03FF]
	default:
		return p.paletteRead(addr)
	}
}

func (p *Ppu) ppuWrite(addr uint16, data byte) {
	addr &= 0x3FFF

	if p.Cart != nil {
		if p.Cart.ppuWrite(addr, data) {
			return
		}
	}

	switch {
	case addr <= 0x1FFF:
		// CHR is cartridge-owned; nothing to do if the cartridge refused it.
	case addr <= 0x3EFF:
		p.tblName[p.nametableIndex(addr)][addr&0x03FF] = data
	default:
		p.paletteWrite(addr, data)
	}
}

// nametableIndex maps a 0x2000-0x3EFF address to one of the two physical
// nametables according to the cartridge's mirroring mode.
func (p *Ppu) nametableIndex(addr uint16) int {
	table := (addr / 0x0400) % 4
	mirror := MirrorVertical
	if p.Cart != nil {
		mirror = p.Cart.Mirroring
	}

	switch mirror {
	case MirrorVertical:
		return int(table % 2)
	case MirrorHorizontal:
		return int(table / 2)
	default:
		return int(table % 2)
	}
}

func (p *Ppu) paletteAddr(addr uint16) uint16 {
	a := addr & 0x1F

	// $3F10/$3F14/$3F18/$3F1C are mirrors of $3F00/$3F04/$3F08/$3F0C.
	if a == 0x10 || a == 0x14 || a == 0x18 || a == 0x1C {
		a -= 0x10
	}

	return a
}

func (p *Ppu) paletteRead(addr uint16) byte {
	return p.palette[p.paletteAddr(addr)]
}

func (p *Ppu) paletteWrite(addr uint16, data byte) {
	p.palette[p.paletteAddr(addr)] = data
}
