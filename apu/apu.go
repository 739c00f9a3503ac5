// Package apu emulates the audio register block well enough for software
// that drives it, with an approximated (not bit-exact) pulse synth.
package apu

import "sync"

const (
	cpuClockHz = 1789773.0

	// SampleRate is what the frontend's audio player consumes.
	SampleRate = 44100
)

// Sequencer is the shared countdown timer the channels run on.
type Sequencer struct {
	sequence uint32
	timer    uint16
	reload   uint16
	output   uint8
}

// Clock counts the timer down and applies manip to the sequence on reload.
func (s *Sequencer) Clock(enable bool, manip func(*uint32)) uint8 {
	if enable {
		s.timer--
		if s.timer == 0xFFFF {
			s.timer = s.reload + 1
			manip(&s.sequence)
			s.output = uint8(s.sequence & 0x01)
		}
	}
	return s.output
}

// pulseOsc approximates a band-limited square wave by summing harmonics,
// which sounds much closer to the real channel than a naive square.
type pulseOsc struct {
	frequency float64
	dutycycle float64
	amplitude float64
	harmonics float64
}

const pi = 3.14159

func approxsin(t float64) float64 {
	j := t * 0.15915
	j = j - float64(int(j))
	return 20.785 * j * (j - 0.5) * (j - 1.0)
}

func (o *pulseOsc) sample(t float64) float64 {
	a := float64(0)
	b := float64(0)
	p := o.dutycycle * 2.0 * pi
	for n := float64(1); n < o.harmonics; n++ {
		c := n * o.frequency * 2.0 * pi * t
		a += -approxsin(c) / n
		b += -approxsin(c-p*n) / n
	}
	return (2.0 * o.amplitude / pi) * (a - b)
}

type pulseChannel struct {
	enable bool
	seq    Sequencer
	osc    pulseOsc
	sample float64
}

func newPulseChannel() pulseChannel {
	return pulseChannel{
		osc: pulseOsc{amplitude: 1, harmonics: 20},
	}
}

func (p *pulseChannel) writeDuty(data uint8) {
	switch (data & 0xC0) >> 6 {
	case 0x00:
		p.seq.sequence = 0b00000001
		p.osc.dutycycle = 0.125
	case 0x01:
		p.seq.sequence = 0b00000011
		p.osc.dutycycle = 0.250
	case 0x02:
		p.seq.sequence = 0b00001111
		p.osc.dutycycle = 0.500
	case 0x03:
		p.seq.sequence = 0b11111100
		p.osc.dutycycle = 0.750
	}
}

// APU owns the $4000-$4015/$4017 register window on the bus.
type APU struct {
	pulse1 pulseChannel
	pulse2 pulseChannel

	clockCounter      uint32
	frameClockCounter uint32
	globalTime        float64

	mu        sync.Mutex
	buffer    []int16
	sampleAcc float64
}

func New() *APU {
	return &APU{
		pulse1: newPulseChannel(),
		pulse2: newPulseChannel(),
	}
}

// Read services CPU reads in the APU window. Only $4015 carries readable
// state on real hardware; the rest is open bus, which the system bus handles.
func (a *APU) Read(addr uint16) uint8 {
	if addr == 0x4015 {
		status := uint8(0)
		if a.pulse1.enable {
			status |= 0x01
		}
		if a.pulse2.enable {
			status |= 0x02
		}
		return status
	}
	return 0x00
}

// Write services CPU writes in the APU window.
func (a *APU) Write(addr uint16, data uint8) {
	switch addr {
	case 0x4000:
		a.pulse1.writeDuty(data)
	case 0x4002:
		a.pulse1.seq.reload = (a.pulse1.seq.reload & 0xFF00) | uint16(data)
	case 0x4003:
		a.pulse1.seq.reload = ((uint16(data) & 0x07) << 8) | (a.pulse1.seq.reload & 0x00FF)
		a.pulse1.seq.timer = a.pulse1.seq.reload
	case 0x4004:
		a.pulse2.writeDuty(data)
	case 0x4006:
		a.pulse2.seq.reload = (a.pulse2.seq.reload & 0xFF00) | uint16(data)
	case 0x4007:
		a.pulse2.seq.reload = ((uint16(data) & 0x07) << 8) | (a.pulse2.seq.reload & 0x00FF)
		a.pulse2.seq.timer = a.pulse2.seq.reload
	case 0x4015:
		a.pulse1.enable = data&0x01 != 0
		a.pulse2.enable = data&0x02 != 0
	}
}

// Clock advances the APU by one CPU cycle. The sequencers rotate their
// duty patterns at the programmed period; audible output is synthesized
// by the harmonic oscillators rather than sampled off the sequencer bit.
func (a *APU) Clock() {
	a.globalTime += 1.0 / cpuClockHz

	if a.clockCounter%2 == 0 {
		a.frameClockCounter++
		if a.frameClockCounter >= 14916 {
			a.frameClockCounter = 0
		}

		rotate := func(s *uint32) {
			*s = ((*s & 0x0001) << 7) | ((*s & 0x00FE) >> 1)
		}
		a.pulse1.seq.Clock(a.pulse1.enable, rotate)
		a.pulse2.seq.Clock(a.pulse2.enable, rotate)

		if a.pulse1.enable {
			a.pulse1.osc.frequency = cpuClockHz / (16.0 * float64(a.pulse1.seq.reload+1))
			a.pulse1.sample = a.pulse1.osc.sample(a.globalTime)
		} else {
			a.pulse1.sample = 0
		}
		if a.pulse2.enable {
			a.pulse2.osc.frequency = cpuClockHz / (16.0 * float64(a.pulse2.seq.reload+1))
			a.pulse2.sample = a.pulse2.osc.sample(a.globalTime)
		} else {
			a.pulse2.sample = 0
		}
	}
	a.clockCounter++

	// Downsample to the output rate.
	a.sampleAcc += SampleRate / cpuClockHz
	if a.sampleAcc >= 1.0 {
		a.sampleAcc -= 1.0
		a.pushSample(a.Sample())
	}
}

// Sample mixes the channels into a single output value in [-1, 1].
func (a *APU) Sample() float32 {
	return float32((a.pulse1.sample + a.pulse2.sample) * 0.25)
}

func (a *APU) pushSample(s float32) {
	v := int16(s * 0x4000)
	a.mu.Lock()
	if len(a.buffer) < SampleRate { // cap backlog at one second
		a.buffer = append(a.buffer, v)
	}
	a.mu.Unlock()
}

// ReadSamples fills p with 16-bit little-endian stereo PCM for the audio
// player. Underruns are padded with silence so playback never blocks the
// emulation loop.
func (a *APU) ReadSamples(p []byte) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	frames := len(p) / 4
	for i := 0; i < frames; i++ {
		var v int16
		if len(a.buffer) > 0 {
			v = a.buffer[0]
			a.buffer = a.buffer[1:]
		}
		lo, hi := byte(v), byte(v>>8)
		p[i*4+0], p[i*4+1] = lo, hi // left
		p[i*4+2], p[i*4+3] = lo, hi // right
	}
	return frames * 4, nil
}

// Reset silences both channels.
func (a *APU) Reset() {
	a.pulse1 = newPulseChannel()
	a.pulse2 = newPulseChannel()
	a.clockCounter = 0
	a.frameClockCounter = 0

	a.mu.Lock()
	a.buffer = nil
	a.mu.Unlock()
}
