package cartridge

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// MirrorMode selects how the PPU's two physical nametables are laid out
// in the four logical nametable slots.
type MirrorMode uint8

const (
	MirrorHorizontal MirrorMode = iota
	MirrorVertical
	MirrorOneScreenLo
	MirrorOneScreenHi
)

var (
	// ErrInvalidImage is returned when the supplied data is not an iNES image.
	ErrInvalidImage = errors.New("cartridge: invalid iNES image")

	// ErrUnsupportedMapper is returned at load time when the image requests a
	// board the emulator does not implement. No session is started.
	ErrUnsupportedMapper = errors.New("cartridge: unsupported mapper")
)

const (
	prgBankSize = 16384
	chrBankSize = 8192
)

// Cartridge holds the parsed program and pattern banks plus the board
// mapper chosen from the image header. All bus and PPU accesses to
// cartridge space go through the mapper.
type Cartridge struct {
	PRG    []byte
	CHR    []byte
	Mapper Mapper

	MapperID uint8
	chrRAM   bool
	mirror   MirrorMode
}

// Load reads and parses an iNES file from disk.
func Load(path string) (*Cartridge, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return New(f)
}

// New parses an iNES image from r. The header supplies PRG/CHR bank counts,
// the mirroring flag and the mapper ID; the mapper variant is selected here,
// once, and never re-checked per access.
func New(r io.Reader) (*Cartridge, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(data) < 16 {
		return nil, fmt.Errorf("%w: file shorter than header", ErrInvalidImage)
	}
	if data[0] != 'N' || data[1] != 'E' || data[2] != 'S' || data[3] != 0x1A {
		return nil, fmt.Errorf("%w: missing iNES signature", ErrInvalidImage)
	}

	c := &Cartridge{}
	prgSize := int(data[4]) * prgBankSize
	chrSize := int(data[5]) * chrBankSize
	if prgSize == 0 {
		return nil, fmt.Errorf("%w: no PRG banks", ErrInvalidImage)
	}

	offset := 16
	if data[6]&0x04 != 0 { // trainer present, skip it
		offset += 512
	}
	if len(data) < offset+prgSize+chrSize {
		return nil, fmt.Errorf("%w: truncated bank data", ErrInvalidImage)
	}

	c.PRG = make([]byte, prgSize)
	copy(c.PRG, data[offset:offset+prgSize])

	if chrSize > 0 {
		c.CHR = make([]byte, chrSize)
		copy(c.CHR, data[offset+prgSize:offset+prgSize+chrSize])
	} else {
		// No CHR banks means the board carries 8KB of CHR RAM instead.
		c.CHR = make([]byte, chrBankSize)
		c.chrRAM = true
	}

	c.mirror = MirrorHorizontal
	if data[6]&0x01 != 0 {
		c.mirror = MirrorVertical
	}
	c.MapperID = (data[6] >> 4) | (data[7] & 0xF0)

	m, err := newMapper(c)
	if err != nil {
		return nil, err
	}
	c.Mapper = m
	return c, nil
}

func newMapper(c *Cartridge) (Mapper, error) {
	switch c.MapperID {
	case 0:
		return newNROM(c), nil
	case 2:
		return newUxROM(c), nil
	case 3:
		return newCNROM(c), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedMapper, c.MapperID)
	}
}

// ReadPRG resolves a CPU-side cartridge read through the mapper.
func (c *Cartridge) ReadPRG(addr uint16) byte { return c.Mapper.ReadPRG(addr) }

// WritePRG forwards a CPU-side cartridge write to the mapper. On most boards
// this is a bank-select side effect, not a memory write.
func (c *Cartridge) WritePRG(addr uint16, data byte) { c.Mapper.WritePRG(addr, data) }

// ReadCHR resolves a PPU-side pattern read through the mapper.
func (c *Cartridge) ReadCHR(addr uint16) byte { return c.Mapper.ReadCHR(addr) }

// WriteCHR forwards a PPU-side pattern write to the mapper. Only boards with
// CHR RAM honor it.
func (c *Cartridge) WriteCHR(addr uint16, data byte) { c.Mapper.WriteCHR(addr, data) }

// Mirroring reports the nametable layout the board wires up.
func (c *Cartridge) Mirroring() MirrorMode { return c.Mapper.Mirroring() }

// Reset restores the mapper's power-on bank selection.
func (c *Cartridge) Reset() { c.Mapper.Reset() }
