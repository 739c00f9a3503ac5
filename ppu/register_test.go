package ppu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test8BitsRegister(t *testing.T) {
	r := createStatusRegister()

	assert.Equal(t, uint16(0), r.Reg)
	r.SetField("vertical_blank", 1)
	assert.Equal(t, map[string]uint16{
		"unused":          0,
		"sprite_overflow": 0,
		"sprite_zero_hit": 0,
		"vertical_blank":  1,
	}, r.allFields())
	assert.Equal(t, uint16(0b10000000), r.Reg)

	r.SetField("unused", 31)
	assert.Equal(t, uint16(0b10011111), r.Reg)

	r.SetField("sprite_overflow", 1)
	assert.Equal(t, uint16(0b10111111), r.Reg)

	// Writing a field only disturbs that field's bits.
	r.SetField("unused", 2)
	assert.Equal(t, map[string]uint16{
		"unused":          2,
		"sprite_overflow": 1,
		"sprite_zero_hit": 0,
		"vertical_blank":  1,
	}, r.allFields())
	assert.Equal(t, uint16(0b10100010), r.Reg)
}

func Test16BitsRegister(t *testing.T) {
	r := createLoopyRegister()

	r.SetField("coarse_x", 31)
	assert.Equal(t, uint16(0b0000000000011111), r.Reg)

	r.SetField("coarse_y", 31)
	assert.Equal(t, uint16(0b0000001111111111), r.Reg)

	r.SetField("fine_y", 5)
	assert.Equal(t, uint16(0b0101001111111111), r.Reg)

	r.SetField("coarse_y", 9)
	assert.Equal(t, map[string]uint16{
		"coarse_x":    31,
		"coarse_y":    9,
		"nametable_x": 0,
		"nametable_y": 0,
		"fine_y":      5,
		"unused":      0,
	}, r.allFields())
	assert.Equal(t, uint16(0b0101000100111111), r.Reg)

	// Values wider than the field wrap at the field width.
	r.SetField("coarse_y", 32)
	assert.Equal(t, uint16(0), r.GetField("coarse_y"))
	assert.Equal(t, uint16(0b0101000000011111), r.Reg)
}

func TestSetRegRefreshesFields(t *testing.T) {
	r := createControlRegister()
	r.SetReg(0b10010011)

	assert.Equal(t, uint16(1), r.GetField("nametable_x"))
	assert.Equal(t, uint16(1), r.GetField("nametable_y"))
	assert.Equal(t, uint16(0), r.GetField("increment_mode"))
	assert.Equal(t, uint16(1), r.GetField("pattern_background"))
	assert.Equal(t, uint16(1), r.GetField("enable_nmi"))
}

func TestUnknownFieldIgnoredOnWrite(t *testing.T) {
	r := createMaskRegister()
	r.SetField("no_such_field", 1)
	assert.Equal(t, uint16(0), r.Reg)

	assert.Panics(t, func() { r.GetField("no_such_field") })
}
