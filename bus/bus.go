// Package bus wires the console together: it decodes CPU addresses onto
// RAM, the picture generator, the audio unit, the controller latches and
// the cartridge, and keeps the other chips advancing in lockstep with the
// processor.
package bus

import (
	"famicore/apu"
	"famicore/cartridge"
	"famicore/controller"
	"famicore/cpu"
	"famicore/ppu"
)

type Bus struct {
	ram [2048]uint8

	ppu  *ppu.PPU
	apu  *apu.APU
	cart *cartridge.Cartridge
	pads [2]*controller.Controller

	clockCounter uint64
	stall        int
	nmiPending   bool
	irqLine      bool
	frameReady   bool
}

func New(cart *cartridge.Cartridge, p *ppu.PPU, a *apu.APU, pad1, pad2 *controller.Controller) *Bus {
	p.ConnectCartridge(cart)
	return &Bus{
		ppu:  p,
		apu:  a,
		cart: cart,
		pads: [2]*controller.Controller{pad1, pad2},
	}
}

// Read services a CPU read. Unclaimed addresses are open bus and read as
// zero.
func (b *Bus) Read(addr uint16) uint8 {
	switch {
	case addr <= 0x1FFF:
		return b.ram[addr&0x07FF]
	case addr <= 0x3FFF:
		return b.ppu.ReadRegister(addr & 0x0007)
	case addr == 0x4015:
		return b.apu.Read(addr)
	case addr == 0x4016 || addr == 0x4017:
		return b.pads[addr&0x0001].Read()
	case addr >= 0x4020:
		return b.cart.ReadPRG(addr)
	}
	return 0
}

// Write services a CPU write.
func (b *Bus) Write(addr uint16, data uint8) {
	switch {
	case addr <= 0x1FFF:
		b.ram[addr&0x07FF] = data
	case addr <= 0x3FFF:
		b.ppu.WriteRegister(addr&0x0007, data)
	case addr == 0x4014:
		b.dma(data)
	case addr == 0x4016:
		// The strobe line is shared by both controller latches.
		b.pads[0].Write(data)
		b.pads[1].Write(data)
	case addr <= 0x4013 || addr == 0x4015 || addr == 0x4017:
		b.apu.Write(addr, data)
	case addr >= 0x4020:
		b.cart.WritePRG(addr, data)
	}
}

// Peek reads without side effects, for the disassembler and debug overlay.
func (b *Bus) Peek(addr uint16) uint8 {
	switch {
	case addr <= 0x1FFF:
		return b.ram[addr&0x07FF]
	case addr <= 0x3FFF:
		return b.ppu.PeekRegister(addr & 0x0007)
	case addr >= 0x4020:
		return b.cart.ReadPRG(addr)
	}
	return 0
}

// dma copies one 256-byte page into sprite memory through normal bus
// reads. The processor is stalled 513 cycles, one more when the transfer
// starts on an odd cycle.
func (b *Bus) dma(page uint8) {
	base := uint16(page) << 8
	for i := uint16(0); i < 256; i++ {
		b.ppu.WriteOAM(b.Read(base | i))
	}
	b.stall += 513
	if b.clockCounter&1 == 1 {
		b.stall++
	}
}

// Tick advances the machine by cpuCycles processor cycles: the picture
// generator runs three dots per cycle and the audio unit one step per
// cycle. Interrupt and frame-completion signals raised during the window
// are latched for the next poll.
func (b *Bus) Tick(cpuCycles int) {
	for i := 0; i < cpuCycles; i++ {
		b.apu.Clock()
		b.ppu.Clock()
		b.ppu.Clock()
		b.ppu.Clock()
	}
	b.clockCounter += uint64(cpuCycles)

	if b.ppu.TakeNMI() {
		b.nmiPending = true
	}
	if b.ppu.FrameComplete {
		b.ppu.FrameComplete = false
		b.frameReady = true
	}
}

// PollInterrupt reports the line to service. A latched NMI wins and is
// consumed; the IRQ line is level-triggered and stays up until cleared.
func (b *Bus) PollInterrupt() cpu.Interrupt {
	if b.nmiPending {
		b.nmiPending = false
		return cpu.InterruptNMI
	}
	if b.irqLine {
		return cpu.InterruptIRQ
	}
	return cpu.InterruptNone
}

// StallCycles claims and clears pending DMA stall cycles.
func (b *Bus) StallCycles() int {
	s := b.stall
	b.stall = 0
	return s
}

// AssertIRQ raises the cartridge IRQ line. None of the supported boards
// generate interrupts, but the line is part of the connector.
func (b *Bus) AssertIRQ() { b.irqLine = true }
func (b *Bus) ClearIRQ()  { b.irqLine = false }

// FrameReady reports and clears the frame-completion latch.
func (b *Bus) FrameReady() bool {
	r := b.frameReady
	b.frameReady = false
	return r
}

// ClockCounter reports total elapsed CPU cycles since reset.
func (b *Bus) ClockCounter() uint64 { return b.clockCounter }

// Reset restores the bus and the chips behind it to power-on state. The
// processor is reset separately by its owner, after this returns, so its
// vector fetch sees a settled bus.
func (b *Bus) Reset() {
	b.cart.Reset()
	b.ppu.Reset()
	b.apu.Reset()
	b.clockCounter = 0
	b.stall = 0
	b.nmiPending = false
	b.irqLine = false
	b.frameReady = false
}
