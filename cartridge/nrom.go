package cartridge

// nrom is mapper 0, the no-bank-switching board. A single 16KB PRG bank is
// mirrored across the 32KB window; 32KB images map directly. CHR is a flat
// 8KB bank, writable only when the board carries CHR RAM.
type nrom struct {
	prg    []byte
	chr    []byte
	mirror MirrorMode
	chrRAM bool
}

func newNROM(c *Cartridge) *nrom {
	return &nrom{
		prg:    c.PRG,
		chr:    c.CHR,
		mirror: c.mirror,
		chrRAM: c.chrRAM,
	}
}

func (n *nrom) ReadPRG(addr uint16) byte {
	if addr < 0x8000 {
		return 0
	}
	// 16KB images wrap so the reset vector at $FFFC lands on the same bank.
	return n.prg[int(addr-0x8000)%len(n.prg)]
}

func (n *nrom) WritePRG(addr uint16, data byte) {
	// No bank-select state on this board.
}

func (n *nrom) ReadCHR(addr uint16) byte {
	return n.chr[addr&0x1FFF]
}

func (n *nrom) WriteCHR(addr uint16, data byte) {
	if n.chrRAM {
		n.chr[addr&0x1FFF] = data
	}
}

func (n *nrom) Mirroring() MirrorMode { return n.mirror }

func (n *nrom) Reset() {}
