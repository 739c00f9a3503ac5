package cartridge

// uxrom is mapper 2. The 16KB bank at $8000-$BFFF is switchable, the bank at
// $C000-$FFFF is fixed to the last PRG bank. CHR is an unbanked 8KB, almost
// always RAM on this board.
type uxrom struct {
	prg      []byte
	chr      []byte
	mirror   MirrorMode
	chrRAM   bool
	prgBanks int
	bankSel  int
}

func newUxROM(c *Cartridge) *uxrom {
	return &uxrom{
		prg:      c.PRG,
		chr:      c.CHR,
		mirror:   c.mirror,
		chrRAM:   c.chrRAM,
		prgBanks: len(c.PRG) / prgBankSize,
	}
}

func (u *uxrom) ReadPRG(addr uint16) byte {
	switch {
	case addr >= 0xC000:
		return u.prg[(u.prgBanks-1)*prgBankSize+int(addr-0xC000)]
	case addr >= 0x8000:
		bank := u.bankSel % u.prgBanks
		return u.prg[bank*prgBankSize+int(addr-0x8000)]
	}
	return 0
}

func (u *uxrom) WritePRG(addr uint16, data byte) {
	if addr >= 0x8000 {
		u.bankSel = int(data & 0x0F)
	}
}

func (u *uxrom) ReadCHR(addr uint16) byte {
	return u.chr[addr&0x1FFF]
}

func (u *uxrom) WriteCHR(addr uint16, data byte) {
	if u.chrRAM {
		u.chr[addr&0x1FFF] = data
	}
}

func (u *uxrom) Mirroring() MirrorMode { return u.mirror }

func (u *uxrom) Reset() { u.bankSel = 0 }
