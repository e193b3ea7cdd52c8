package nes

import "testing"

func TestPpuVBlankSetAndNMI(t *testing.T) {
	ppu := NewPpu()
	ppu.ctrl.setFlag(ctrlNmi)

	ppu.Scanline = 241
	ppu.Cycle = 0
	ppu.Clock() // advances cycle 0 -> 1, does not yet fire

	ppu.Clock() // cycle 1: vblank sets, NMI requested

	if !ppu.status.isFlagSet(statusVBlank) {
		t.Errorf("statusVBlank not set at scanline 241 cycle 1")
	}
	if !ppu.nmi {
		t.Errorf("nmi not latched when PPUCTRL NMI-enable is set")
	}
}

func TestPpuVBlankClearedAtPreRender(t *testing.T) {
	ppu := NewPpu()
	ppu.status.setFlag(statusVBlank)
	ppu.status.setFlag(statusSprite0Hit)
	ppu.Scanline = -1
	ppu.Cycle = 1

	ppu.Clock() // cycle 1: vblank/sprite flags clear

	if ppu.status.isFlagSet(statusVBlank) {
		t.Errorf("statusVBlank still set at pre-render cycle 1")
	}
	if ppu.status.isFlagSet(statusSprite0Hit) {
		t.Errorf("statusSprite0Hit still set at pre-render cycle 1")
	}
}

func TestPpuFrameCompletes(t *testing.T) {
	ppu := NewPpu()

	total := 341 * 262
	for i := 0; i < total; i++ {
		ppu.Clock()
	}

	if !ppu.FrameComplete() {
		t.Errorf("FrameComplete() = false after %d dots, want true", total)
	}
}

func TestPpuStatusReadClearsVBlankAndLatch(t *testing.T) {
	ppu := NewPpu()
	ppu.status.setFlag(statusVBlank)
	ppu.addrLatch = true

	data := ppu.cpuRead(0x0002)

	if data&0x80 == 0 {
		t.Errorf("status read missing vblank bit")
	}
	if ppu.status.isFlagSet(statusVBlank) {
		t.Errorf("statusVBlank still set after reading PPUSTATUS")
	}
	if ppu.addrLatch {
		t.Errorf("addrLatch not reset after reading PPUSTATUS")
	}
}

func TestPpuPaletteMirroring(t *testing.T) {
	ppu := NewPpu()

	ppu.cpuWrite(0x0006, 0x3F)
	ppu.cpuWrite(0x0006, 0x10)
	ppu.cpuWrite(0x0007, 0x22)

	if got := ppu.paletteRead(0x3F00); got != 0x22 {
		t.Errorf("paletteRead(0x3F00) = %#02X, want %#02X ($3F10 mirrors $3F00)", got, 0x22)
	}
}

func TestPpuDataReadBufferQuirk(t *testing.T) {
	ppu := NewPpu()
	cart := newTestCartridge(1, 1)
	ppu.ConnectCartridge(cart)
	cart.chrMem[0x0010] = 0x42

	ppu.cpuWrite(0x0006, 0x00)
	ppu.cpuWrite(0x0006, 0x10)

	first := ppu.cpuRead(0x0007)
	if first == 0x42 {
		t.Errorf("first PPUDATA read returned the fresh byte, want the stale read buffer")
	}

	second := ppu.cpuRead(0x0007)
	if second != 0x42 {
		// The first read filled the buffer from 0x0010, so the second read
		// returns that byte while the buffer refills from 0x0011.
		t.Errorf("second PPUDATA read = %#02X, want 0x42 (buffered byte from addr 0x0010)", second)
	}
}
