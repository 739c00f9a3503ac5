package bus

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"famicore/apu"
	"famicore/cartridge"
	"famicore/controller"
	"famicore/cpu"
	"famicore/ppu"
)

// testConsole builds a full machine around a 16KB mapper-0 image whose
// code region starts with the given program at $8000.
func testConsole(t *testing.T, program ...uint8) (*Bus, *cpu.CPU, *ppu.PPU, *controller.Controller) {
	t.Helper()

	prg := make([]byte, 16384)
	copy(prg, program)
	// Reset vector: the 16KB bank mirrors, so $FFFC reads offset $3FFC.
	prg[0x3FFC] = 0x00
	prg[0x3FFD] = 0x80

	image := append([]byte{'N', 'E', 'S', 0x1A, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, prg...)
	image = append(image, make([]byte, 8192)...)

	cart, err := cartridge.New(bytes.NewReader(image))
	require.NoError(t, err)

	p := ppu.New()
	pad1 := controller.New()
	b := New(cart, p, apu.New(), pad1, controller.New())
	c := cpu.New(b)
	c.Reset()
	return b, c, p, pad1
}

func TestRAMMirroring(t *testing.T) {
	b, _, _, _ := testConsole(t)
	b.Write(0x0001, 0x42)
	assert.Equal(t, uint8(0x42), b.Read(0x0801))
	assert.Equal(t, uint8(0x42), b.Read(0x1001))
	assert.Equal(t, uint8(0x42), b.Read(0x1801))

	b.Write(0x1FFF, 0x99)
	assert.Equal(t, uint8(0x99), b.Read(0x07FF))
}

func TestPPURegisterMirroring(t *testing.T) {
	b, _, _, _ := testConsole(t)
	// $3FF8 folds onto register 0, the control register.
	b.Write(0x3FF8, 0x80)
	assert.Equal(t, uint8(0x80), b.Peek(0x2000))
}

func TestOpenBusReadsZero(t *testing.T) {
	b, _, _, _ := testConsole(t)
	assert.Equal(t, uint8(0), b.Read(0x4018))
	b.Write(0x4018, 0xFF) // dropped
	assert.Equal(t, uint8(0), b.Read(0x4018))
}

func TestCartridgeWindow(t *testing.T) {
	b, _, _, _ := testConsole(t, 0xA9, 0x42)
	assert.Equal(t, uint8(0xA9), b.Read(0x8000))
	assert.Equal(t, uint8(0xA9), b.Read(0xC000), "16KB image mirrors into the upper bank")
}

func TestOAMDMACopiesPageAndStalls(t *testing.T) {
	b, _, p, _ := testConsole(t)
	for i := 0; i < 256; i++ {
		b.Write(uint16(0x0200+i), uint8(i))
	}

	b.Write(0x2003, 0x00) // OAMADDR = 0
	b.Write(0x4014, 0x02)

	oam := p.OAM()
	for i := 0; i < 256; i++ {
		require.Equal(t, uint8(i), oam[i], "OAM byte %d", i)
	}
	assert.Equal(t, 513, b.StallCycles(), "even start cycle")
	assert.Equal(t, 0, b.StallCycles(), "stall is claimed once")
}

func TestOAMDMAOddCycleCostsExtra(t *testing.T) {
	b, _, _, _ := testConsole(t)
	b.Tick(1)
	b.Write(0x4014, 0x02)
	assert.Equal(t, 514, b.StallCycles())
}

func TestControllerLatchAndShift(t *testing.T) {
	b, _, _, pad1 := testConsole(t)
	var buttons [8]bool
	buttons[controller.ButtonA] = true
	buttons[controller.ButtonStart] = true
	pad1.SetButtons(buttons)

	b.Write(0x4016, 1)
	b.Write(0x4016, 0)

	// Report order: A, B, Select, Start, Up, Down, Left, Right.
	want := []uint8{1, 0, 0, 1, 0, 0, 0, 0}
	for i, w := range want {
		assert.Equal(t, w, b.Read(0x4016)&1, "bit %d", i)
	}
	assert.Equal(t, uint8(1), b.Read(0x4016)&1, "drained latch reports set bits")
}

func TestInterruptPolling(t *testing.T) {
	b, _, _, _ := testConsole(t)
	assert.Equal(t, cpu.InterruptNone, b.PollInterrupt())

	b.AssertIRQ()
	assert.Equal(t, cpu.InterruptIRQ, b.PollInterrupt())
	assert.Equal(t, cpu.InterruptIRQ, b.PollInterrupt(), "IRQ line is level triggered")
	b.ClearIRQ()
	assert.Equal(t, cpu.InterruptNone, b.PollInterrupt())
}

func TestNMILatchedFromPPU(t *testing.T) {
	b, _, _, _ := testConsole(t)
	b.Write(0x2000, 0x80) // enable vblank interrupt

	// Run until the vblank line has certainly been crossed.
	for i := 0; i < 262*341/3+2; i++ {
		b.Tick(1)
		if b.PollInterrupt() == cpu.InterruptNMI {
			return
		}
	}
	t.Fatal("no NMI latched across a full frame")
}

func TestFrameReadyLatch(t *testing.T) {
	b, _, _, _ := testConsole(t)
	assert.False(t, b.FrameReady())

	b.Tick(262*341/3 + 2)
	assert.True(t, b.FrameReady())
	assert.False(t, b.FrameReady(), "latch is claimed once")
}

func TestProgramExecutionThroughResetVector(t *testing.T) {
	// LDA #$42 / STA $0200 / LDX #$07 / STX $0201
	b, c, _, _ := testConsole(t,
		0xA9, 0x42,
		0x8D, 0x00, 0x02,
		0xA2, 0x07,
		0x8E, 0x01, 0x02,
	)

	for i := 0; i < 4; i++ {
		cycles, err := c.Step()
		require.NoError(t, err)
		b.Tick(cycles)
	}

	assert.Equal(t, uint8(0x42), b.Read(0x0200))
	assert.Equal(t, uint8(0x07), b.Read(0x0201))
}

func TestResetClearsLatches(t *testing.T) {
	b, _, _, _ := testConsole(t)
	b.AssertIRQ()
	b.Write(0x4014, 0x00)
	b.Tick(10)

	b.Reset()
	assert.Equal(t, 0, b.StallCycles())
	assert.Equal(t, cpu.InterruptNone, b.PollInterrupt())
	assert.Equal(t, uint64(0), b.ClockCounter())
}
