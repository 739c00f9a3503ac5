package cartridge

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildImage assembles a minimal iNES image in memory.
func buildImage(prgBanks, chrBanks, mapperID int, vertical bool) []byte {
	header := make([]byte, 16)
	copy(header, []byte{'N', 'E', 'S', 0x1A})
	header[4] = byte(prgBanks)
	header[5] = byte(chrBanks)
	header[6] = byte(mapperID&0x0F) << 4
	if vertical {
		header[6] |= 0x01
	}
	header[7] = byte(mapperID & 0xF0)

	data := append(header, make([]byte, prgBanks*prgBankSize)...)
	return append(data, make([]byte, chrBanks*chrBankSize)...)
}

func TestNewParsesHeader(t *testing.T) {
	cart, err := New(bytes.NewReader(buildImage(2, 1, 0, true)))
	require.NoError(t, err)

	assert.Equal(t, 2*prgBankSize, len(cart.PRG))
	assert.Equal(t, chrBankSize, len(cart.CHR))
	assert.Equal(t, uint8(0), cart.MapperID)
	assert.Equal(t, MirrorVertical, cart.Mirroring())
	assert.False(t, cart.chrRAM)
}

func TestNewAllocatesCHRRAM(t *testing.T) {
	cart, err := New(bytes.NewReader(buildImage(1, 0, 0, false)))
	require.NoError(t, err)

	assert.True(t, cart.chrRAM)
	assert.Equal(t, chrBankSize, len(cart.CHR))

	cart.WriteCHR(0x1234, 0xAB)
	assert.Equal(t, byte(0xAB), cart.ReadCHR(0x1234))
}

func TestNewRejectsBadImages(t *testing.T) {
	_, err := New(bytes.NewReader([]byte{'N', 'E', 'S'}))
	assert.ErrorIs(t, err, ErrInvalidImage)

	bad := buildImage(1, 1, 0, false)
	bad[0] = 'X'
	_, err = New(bytes.NewReader(bad))
	assert.ErrorIs(t, err, ErrInvalidImage)

	truncated := buildImage(2, 1, 0, false)
	_, err = New(bytes.NewReader(truncated[:len(truncated)-100]))
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestNewRejectsUnsupportedMapper(t *testing.T) {
	_, err := New(bytes.NewReader(buildImage(1, 1, 7, false)))
	assert.ErrorIs(t, err, ErrUnsupportedMapper)
}

func TestNROMMirrorsSingleBank(t *testing.T) {
	img := buildImage(1, 1, 0, false)
	// Place a marker at PRG offset 0x1234.
	img[16+0x1234] = 0x42
	cart, err := New(bytes.NewReader(img))
	require.NoError(t, err)

	// A 16KB bank fills the 32KB window twice.
	assert.Equal(t, byte(0x42), cart.ReadPRG(0x9234))
	assert.Equal(t, byte(0x42), cart.ReadPRG(0xD234))

	// PRG writes are ignored on NROM.
	cart.WritePRG(0x9234, 0x99)
	assert.Equal(t, byte(0x42), cart.ReadPRG(0x9234))
}

func TestNROMDoesNotMirror32K(t *testing.T) {
	img := buildImage(2, 1, 0, false)
	img[16+0x0010] = 0x11
	img[16+prgBankSize+0x0010] = 0x22
	cart, err := New(bytes.NewReader(img))
	require.NoError(t, err)

	assert.Equal(t, byte(0x11), cart.ReadPRG(0x8010))
	assert.Equal(t, byte(0x22), cart.ReadPRG(0xC010))
}

func TestUxROMBankSwitch(t *testing.T) {
	img := buildImage(4, 0, 2, false)
	for bank := 0; bank < 4; bank++ {
		img[16+bank*prgBankSize] = byte(0xA0 + bank)
	}
	cart, err := New(bytes.NewReader(img))
	require.NoError(t, err)

	// Power-on: bank 0 selected, last bank fixed.
	assert.Equal(t, byte(0xA0), cart.ReadPRG(0x8000))
	assert.Equal(t, byte(0xA3), cart.ReadPRG(0xC000))

	cart.WritePRG(0x8000, 2)
	assert.Equal(t, byte(0xA2), cart.ReadPRG(0x8000))
	assert.Equal(t, byte(0xA3), cart.ReadPRG(0xC000), "fixed bank must not move")

	cart.Reset()
	assert.Equal(t, byte(0xA0), cart.ReadPRG(0x8000))
}

func TestCNROMBankSwitch(t *testing.T) {
	img := buildImage(1, 4, 3, false)
	for bank := 0; bank < 4; bank++ {
		img[16+prgBankSize+bank*chrBankSize] = byte(0xC0 + bank)
	}
	cart, err := New(bytes.NewReader(img))
	require.NoError(t, err)

	assert.Equal(t, byte(0xC0), cart.ReadCHR(0x0000))
	cart.WritePRG(0x8000, 3)
	assert.Equal(t, byte(0xC3), cart.ReadCHR(0x0000))

	// CHR ROM: writes are dropped.
	cart.WriteCHR(0x0000, 0xFF)
	assert.Equal(t, byte(0xC3), cart.ReadCHR(0x0000))
}
