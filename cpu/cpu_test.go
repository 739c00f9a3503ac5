package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ramBus is a flat 64K test double with scriptable interrupt and stall
// lines.
type ramBus struct {
	mem       [0x10000]uint8
	interrupt Interrupt
	stall     int
}

func (b *ramBus) Read(addr uint16) uint8        { return b.mem[addr] }
func (b *ramBus) Write(addr uint16, data uint8) { b.mem[addr] = data }

func (b *ramBus) PollInterrupt() Interrupt {
	i := b.interrupt
	b.interrupt = InterruptNone
	return i
}

func (b *ramBus) StallCycles() int {
	s := b.stall
	b.stall = 0
	return s
}

// load places a program at $8000, points the reset vector at it and
// returns a freshly reset CPU.
func load(t *testing.T, program ...uint8) (*CPU, *ramBus) {
	t.Helper()
	bus := &ramBus{}
	copy(bus.mem[0x8000:], program)
	bus.mem[0xFFFC] = 0x00
	bus.mem[0xFFFD] = 0x80
	c := New(bus)
	c.Reset()
	return c, bus
}

func step(t *testing.T, c *CPU) int {
	t.Helper()
	cycles, err := c.Step()
	require.NoError(t, err)
	return cycles
}

func TestResetState(t *testing.T) {
	c, _ := load(t, 0xEA)
	assert.Equal(t, uint16(0x8000), c.PC())
	assert.Equal(t, uint8(0xFD), c.SP())
	assert.Equal(t, uint8(U), c.Status())
	assert.Equal(t, uint8(0), c.A())
}

func TestLDAImmediateFlags(t *testing.T) {
	c, _ := load(t,
		0xA9, 0x42, // LDA #$42
		0xA9, 0x00, // LDA #$00
		0xA9, 0x80, // LDA #$80
	)

	cycles := step(t, c)
	assert.Equal(t, 2, cycles)
	assert.Equal(t, uint8(0x42), c.A())
	assert.False(t, c.Flag(Z))
	assert.False(t, c.Flag(N))

	step(t, c)
	assert.True(t, c.Flag(Z))
	assert.False(t, c.Flag(N))

	step(t, c)
	assert.False(t, c.Flag(Z))
	assert.True(t, c.Flag(N))
}

func TestADCOverflowAndCarry(t *testing.T) {
	c, _ := load(t,
		0xA9, 0x50, // LDA #$50
		0x69, 0x50, // ADC #$50: positive overflow
		0xA9, 0xFF, // LDA #$FF
		0x69, 0x01, // ADC #$01: wraps, carry out
	)

	step(t, c)
	step(t, c)
	assert.Equal(t, uint8(0xA0), c.A())
	assert.True(t, c.Flag(V))
	assert.True(t, c.Flag(N))
	assert.False(t, c.Flag(C))

	c.setFlag(C, false)
	step(t, c)
	step(t, c)
	assert.Equal(t, uint8(0x00), c.A())
	assert.True(t, c.Flag(C))
	assert.True(t, c.Flag(Z))
}

func TestSBCBorrow(t *testing.T) {
	c, _ := load(t,
		0x38,       // SEC
		0xA9, 0x05, // LDA #$05
		0xE9, 0x03, // SBC #$03
	)
	step(t, c)
	step(t, c)
	step(t, c)
	assert.Equal(t, uint8(0x02), c.A())
	assert.True(t, c.Flag(C), "no borrow needed")
}

func TestAbsoluteXPageCrossPenalty(t *testing.T) {
	c, bus := load(t,
		0xA2, 0x01, // LDX #$01
		0xBD, 0xFE, 0x00, // LDA $00FE,X -> $00FF, same page
		0xA2, 0x02, // LDX #$02
		0xBD, 0xFE, 0x00, // LDA $00FE,X -> $0100, crossed
	)
	bus.mem[0x00FF] = 0x11
	bus.mem[0x0100] = 0x22

	step(t, c)
	assert.Equal(t, 4, step(t, c))
	assert.Equal(t, uint8(0x11), c.A())

	step(t, c)
	assert.Equal(t, 5, step(t, c), "crossing into the next page costs one more")
	assert.Equal(t, uint8(0x22), c.A())
}

func TestStoreNeverTakesPageCrossPenalty(t *testing.T) {
	c, bus := load(t,
		0xA2, 0x02, // LDX #$02
		0xA9, 0x33, // LDA #$33
		0x9D, 0xFE, 0x00, // STA $00FE,X -> $0100, crossed
	)
	step(t, c)
	step(t, c)
	assert.Equal(t, 5, step(t, c), "STA abs,X is a flat five cycles")
	assert.Equal(t, uint8(0x33), bus.mem[0x0100])
}

func TestBranchCycleCosts(t *testing.T) {
	// Not taken: 2 cycles.
	c, _ := load(t,
		0x38,       // SEC
		0x90, 0x02, // BCC +2 (not taken)
	)
	step(t, c)
	assert.Equal(t, 2, step(t, c))
	assert.Equal(t, uint16(0x8003), c.PC())

	// Taken within the page: 3 cycles.
	c, _ = load(t,
		0x18,       // CLC
		0x90, 0x02, // BCC +2 (taken)
	)
	step(t, c)
	assert.Equal(t, 3, step(t, c))
	assert.Equal(t, uint16(0x8005), c.PC())

	// Taken across a page boundary: 4 cycles.
	c, _ = load(t,
		0x18,       // CLC
		0x90, 0x80, // BCC -128 (taken, crosses into $7Fxx)
	)
	step(t, c)
	assert.Equal(t, 4, step(t, c))
	assert.Equal(t, uint16(0x7F83), c.PC())
}

func TestJSRAndRTS(t *testing.T) {
	c, bus := load(t,
		0x20, 0x10, 0x90, // JSR $9010
	)
	bus.mem[0x9010] = 0x60 // RTS

	assert.Equal(t, 6, step(t, c))
	assert.Equal(t, uint16(0x9010), c.PC())
	// Return address minus one sits on the stack.
	assert.Equal(t, uint8(0x80), bus.mem[0x01FD])
	assert.Equal(t, uint8(0x02), bus.mem[0x01FC])

	assert.Equal(t, 6, step(t, c))
	assert.Equal(t, uint16(0x8003), c.PC())
	assert.Equal(t, uint8(0xFD), c.SP())
}

func TestJMPIndirectPageWrapBug(t *testing.T) {
	c, bus := load(t,
		0x6C, 0xFF, 0x02, // JMP ($02FF)
	)
	bus.mem[0x02FF] = 0x34
	bus.mem[0x0300] = 0x12 // would be the high byte on a correct chip
	bus.mem[0x0200] = 0x90 // actual high byte source

	step(t, c)
	assert.Equal(t, uint16(0x9034), c.PC(), "high byte wraps to the start of the pointer page")
}

func TestPHPPushesBreakAndUnused(t *testing.T) {
	c, bus := load(t,
		0x38, // SEC
		0x08, // PHP
	)
	step(t, c)
	step(t, c)
	pushed := bus.mem[0x01FD]
	assert.Equal(t, uint8(C)|uint8(B)|uint8(U), pushed)
}

func TestDecodeErrorStopsAtOffendingByte(t *testing.T) {
	c, _ := load(t, 0x02)
	_, err := c.Step()
	require.Error(t, err)

	var derr *DecodeError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, uint8(0x02), derr.Opcode)
	assert.Equal(t, uint16(0x8000), derr.PC)
	assert.Equal(t, uint16(0x8000), c.PC(), "PC stays on the bad byte")
}

func TestNMIServiceSequence(t *testing.T) {
	c, bus := load(t, 0xA9, 0x42)
	bus.mem[0xFFFA] = 0x00
	bus.mem[0xFFFB] = 0x90
	bus.interrupt = InterruptNMI

	cycles := step(t, c)
	assert.Equal(t, 8, cycles)
	assert.Equal(t, uint16(0x9000), c.PC())
	assert.True(t, c.Flag(I))
	// Interrupted PC and status are on the stack, break flag clear.
	assert.Equal(t, uint8(0x80), bus.mem[0x01FD])
	assert.Equal(t, uint8(0x00), bus.mem[0x01FC])
	assert.Equal(t, uint8(0), bus.mem[0x01FB]&uint8(B))

	// Next step runs the interrupted instruction stream's handler code.
	bus.mem[0x9000] = 0x40 // RTI
	step(t, c)
	assert.Equal(t, uint16(0x8000), c.PC())
	assert.False(t, c.Flag(I), "RTI restores the pre-interrupt status")
}

func TestIRQMaskedByInterruptDisable(t *testing.T) {
	c, bus := load(t, 0xA9, 0x42)
	bus.mem[0xFFFE] = 0x00
	bus.mem[0xFFFF] = 0x90

	// Reset leaves I clear, so masking requires SEI.
	c.setFlag(I, true)
	bus.interrupt = InterruptIRQ
	cycles := step(t, c)
	assert.Equal(t, 2, cycles, "masked IRQ falls through to the instruction")
	assert.Equal(t, uint8(0x42), c.A())

	c.setFlag(I, false)
	c.pc = 0x8000
	bus.interrupt = InterruptIRQ
	cycles = step(t, c)
	assert.Equal(t, 7, cycles)
	assert.Equal(t, uint16(0x9000), c.PC())
}

func TestStallCyclesAddedToStep(t *testing.T) {
	c, bus := load(t, 0xA9, 0x42)
	bus.stall = 513

	cycles := step(t, c)
	assert.Equal(t, 515, cycles, "DMA stall rides on top of the instruction")
	assert.Equal(t, uint8(0x42), c.A())

	c.pc = 0x8000
	assert.Equal(t, 2, step(t, c), "stall is claimed once")
}

func TestUnofficialNOPConsumesOperand(t *testing.T) {
	c, _ := load(t,
		0x04, 0x12, // NOP $12 (zero page variant)
		0xA9, 0x01, // LDA #$01
	)
	assert.Equal(t, 3, step(t, c))
	assert.Equal(t, uint16(0x8002), c.PC())
	step(t, c)
	assert.Equal(t, uint8(0x01), c.A())
}

func TestDisassembleChainsAddresses(t *testing.T) {
	c, _ := load(t,
		0xA9, 0x10, // LDA #$10
		0x8D, 0x00, 0x02, // STA $0200
		0xEA, // NOP
	)

	lines := c.Disassemble(0x8000, 0x8005)
	require.Contains(t, lines, uint16(0x8000))
	assert.Equal(t, "$8000: LDA #$10 {IMM}", lines[0x8000].Instruction)
	assert.Equal(t, uint16(0x8002), lines[0x8000].NextAddr)
	assert.Equal(t, "$8002: STA $0200 {ABS}", lines[0x8002].Instruction)
	assert.Equal(t, uint16(0x8005), lines[0x8002].NextAddr)
}
