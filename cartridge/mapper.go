package cartridge

// Mapper is the board-side address decoding and bank switching logic.
// A variant is chosen once at load time from the image header; every
// cartridge-window access afterwards dispatches through this interface.
type Mapper interface {
	// ReadPRG reads from CPU cartridge space ($4020-$FFFF as seen by the bus,
	// though all supported boards only decode $8000 and up).
	ReadPRG(addr uint16) byte

	// WritePRG handles CPU writes to cartridge space. On the supported boards
	// this triggers bank-select side effects; the ROM itself is never written.
	WritePRG(addr uint16, data byte)

	// ReadCHR reads pattern memory ($0000-$1FFF on the PPU bus).
	ReadCHR(addr uint16) byte

	// WriteCHR writes pattern memory. Honored only when the board has CHR RAM.
	WriteCHR(addr uint16, data byte)

	// Mirroring reports the nametable layout, which on some boards depends on
	// mutable mapper state.
	Mirroring() MirrorMode

	// Reset restores power-on bank selection.
	Reset()
}
