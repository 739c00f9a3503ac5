package cartridge

// cnrom is mapper 3. PRG is fixed like NROM; writes to PRG space select one
// of up to four 8KB CHR banks.
type cnrom struct {
	prg      []byte
	chr      []byte
	mirror   MirrorMode
	chrBanks int
	bankSel  int
}

func newCNROM(c *Cartridge) *cnrom {
	return &cnrom{
		prg:      c.PRG,
		chr:      c.CHR,
		mirror:   c.mirror,
		chrBanks: len(c.CHR) / chrBankSize,
	}
}

func (c *cnrom) ReadPRG(addr uint16) byte {
	if addr < 0x8000 {
		return 0
	}
	return c.prg[int(addr-0x8000)%len(c.prg)]
}

func (c *cnrom) WritePRG(addr uint16, data byte) {
	if addr >= 0x8000 && c.chrBanks > 0 {
		c.bankSel = int(data&0x03) % c.chrBanks
	}
}

func (c *cnrom) ReadCHR(addr uint16) byte {
	return c.chr[c.bankSel*chrBankSize+int(addr&0x1FFF)]
}

func (c *cnrom) WriteCHR(addr uint16, data byte) {
	// CHR ROM only on this board.
}

func (c *cnrom) Mirroring() MirrorMode { return c.mirror }

func (c *cnrom) Reset() { c.bankSel = 0 }
