package ppu

// Field names a bit range inside a hardware register.
type Field struct {
	Index uint16
	Size  uint16
}

// Register is a hardware register with named bit fields. The picture
// generator's control, mask, status and loopy address registers are all
// defined this way so the rendering code can manipulate fields by name.
type Register struct {
	fields map[string]Field
	values map[string]uint16
	Reg    uint16
}

// CreateRegister builds a Register from a field layout.
func CreateRegister(fields map[string]Field) Register {
	reg := Register{
		fields: fields,
		values: make(map[string]uint16),
	}
	for key := range fields {
		reg.values[key] = 0
	}
	return reg
}

func fieldMask(f Field) uint16 {
	return (^(0xFFFF << f.Size) & 0xFFFF) << f.Index
}

// SetField stores value into the named field, truncating it to the field's
// width the way a hardware latch would.
func (r *Register) SetField(key string, value uint16) {
	field, ok := r.fields[key]
	if !ok {
		return
	}
	mask := fieldMask(field)
	r.SetReg((r.Reg &^ mask) | (mask & (value << field.Index)))
}

// SetReg replaces the whole register value and refreshes the field cache.
func (r *Register) SetReg(value uint16) {
	r.Reg = value
	for key, field := range r.fields {
		r.values[key] = (r.Reg & fieldMask(field)) >> field.Index
	}
}

// GetField returns the named field's current value.
func (r *Register) GetField(key string) uint16 {
	value, ok := r.values[key]
	if !ok {
		panic("ppu: register field " + key + " not found")
	}
	return value
}

func (r *Register) allFields() map[string]uint16 {
	out := make(map[string]uint16, len(r.fields))
	for k := range r.fields {
		out[k] = r.GetField(k)
	}
	return out
}

func createStatusRegister() Register {
	return CreateRegister(map[string]Field{
		"unused":          {0, 5},
		"sprite_overflow": {5, 1},
		"sprite_zero_hit": {6, 1},
		"vertical_blank":  {7, 1},
	})
}

func createMaskRegister() Register {
	return CreateRegister(map[string]Field{
		"grayscale":              {0, 1},
		"render_background_left": {1, 1},
		"render_sprites_left":    {2, 1},
		"render_background":      {3, 1},
		"render_sprites":         {4, 1},
		"enhance_red":            {5, 1},
		"enhance_green":          {6, 1},
		"enhance_blue":           {7, 1},
	})
}

func createControlRegister() Register {
	return CreateRegister(map[string]Field{
		"nametable_x":        {0, 1},
		"nametable_y":        {1, 1},
		"increment_mode":     {2, 1},
		"pattern_sprite":     {3, 1},
		"pattern_background": {4, 1},
		"sprite_size":        {5, 1},
		"slave_mode":         {6, 1},
		"enable_nmi":         {7, 1},
	})
}

// createLoopyRegister lays out the internal VRAM address register: coarse
// scroll, nametable select and fine Y packed into 15 bits.
func createLoopyRegister() Register {
	return CreateRegister(map[string]Field{
		"coarse_x":    {0, 5},
		"coarse_y":    {5, 5},
		"nametable_x": {10, 1},
		"nametable_y": {11, 1},
		"fine_y":      {12, 3},
		"unused":      {15, 1},
	})
}
