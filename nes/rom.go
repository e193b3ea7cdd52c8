package nes

import (
	"bytes"
	"encoding/binary"
	"io"
	"io/ioutil"
	"time"

	"github.com/pkg/errors"
)

// iNES file header
// reference: https://wiki.nesdev.com/w/index.php/INES
type CartridgeHeader struct {
	Name         [4]byte // Constant "NES" followed by MS-DOS end of file
	PrgRomChunks byte    // Program memory size in 16KB chunks
	ChrRomChunks byte    // Character memory size in 8KB chunks
	Mapper1      byte    // Flags 6
	Mapper2      byte    // Flags 7
	PrgRamSize   byte    // Flags 8
	TvSystem1    byte    // Flags 9
	TvSystem2    byte    // Flags 10
	Unused       [5]byte // Unused padding
}

const (
	trainerSize    = 512
	playChoiceSize = 8192
	prgBankSize    = 16 * 1024
	chrBankSize    = 8 * 1024
)

// LoadROMFile reads an iNES ROM image from disk and constructs a
// Cartridge around it.
func LoadROMFile(filepath string) (*Cartridge, error) {
	defer TimeTrack(time.Now())

	data, err := ioutil.ReadFile(filepath)
	if err != nil {
		return nil, errors.Wrapf(err, "nes: unable to open rom file %q", filepath)
	}

	cart, err := LoadROM(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "nes: loading rom file %q", filepath)
	}

	return cart, nil
}

// LoadROM parses an iNES v1 ROM image and constructs a Cartridge with the
// mapper its header names. Only mapper 0 (NROM) is supported; any other
// mapper ID, or a NES 2.0 header, is a ROM format error.
func LoadROM(r io.Reader) (*Cartridge, error) {
	header := new(CartridgeHeader)
	if err := binary.Read(r, binary.BigEndian, header); err != nil {
		return nil, errors.Wrap(err, "nes: unable to read rom header")
	}

	if !bytes.Equal(header.Name[:3], []byte("NES")) || header.Name[3] != 0x1A {
		return nil, errors.New("nes: not an iNES rom (bad magic bytes)")
	}

	// NES 2.0 headers identify themselves via bits 2-3 of flags 7.
	if header.Mapper2&0x0C == 0x08 {
		return nil, errors.New("nes: NES 2.0 roms are not supported")
	}

	hasTrainer := header.Mapper1&(0x1<<2) != 0
	if hasTrainer {
		if _, err := io.CopyN(ioutil.Discard, r, trainerSize); err != nil {
			return nil, errors.Wrap(err, "nes: unable to skip trainer data")
		}
	}

	mapperLo := header.Mapper1 >> 4
	mapperHi := header.Mapper2 >> 4
	mapperID := (mapperHi << 4) | mapperLo

	var mapper Mapper
	switch mapperID {
	case 0:
		mapper = NewMapper000(header.PrgRomChunks, header.ChrRomChunks)
	default:
		return nil, errors.Errorf("nes: unsupported mapper %d", mapperID)
	}

	cart := &Cartridge{
		mapper:   mapper,
		MapperID: mapperID,
		PrgBanks: header.PrgRomChunks,
		ChrBanks: header.ChrRomChunks,
		Battery:  header.Mapper1&(0x1<<1) != 0,
	}

	switch {
	case header.Mapper1&0x1 == 0:
		cart.Mirroring = MirrorHorizontal
	default:
		cart.Mirroring = MirrorVertical
	}
	if header.Mapper1&(0x1<<3) != 0 {
		cart.Mirroring = MirrorFourScreen
	}

	cart.prgMem = make([]byte, prgBankSize*int(header.PrgRomChunks))
	if _, err := io.ReadFull(r, cart.prgMem); err != nil {
		return nil, errors.Wrap(err, "nes: unable to read PRG memory")
	}

	// CHR bank count of 0 means the cartridge uses CHR RAM; still allocate
	// one 8KB bank so the PPU always has backing storage to read. Mapper000
	// rejects every CHR write, so this bank stays zero-filled.
	chrBanks := header.ChrRomChunks
	if chrBanks == 0 {
		chrBanks = 1
	}
	cart.chrMem = make([]byte, chrBankSize*int(chrBanks))
	if header.ChrRomChunks > 0 {
		if _, err := io.ReadFull(r, cart.chrMem); err != nil {
			return nil, errors.Wrap(err, "nes: unable to read CHR memory")
		}
	}

	// Determine if PlayChoice INST-ROM (bit 1 of mapper2 flags) is present
	// and skip over it; this core has no PlayChoice-10 support.
	if header.Mapper2&(0x1<<1) != 0 {
		if _, err := io.CopyN(ioutil.Discard, r, playChoiceSize); err != nil {
			return nil, errors.Wrap(err, "nes: unable to skip PlayChoice INST-ROM data")
		}
	}

	return cart, nil
}
