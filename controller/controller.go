// Package controller emulates the standard joypad's serial shift register.
package controller

// Button indexes into the snapshot, in shift-out order.
const (
	ButtonA = iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

// Controller latches a snapshot of the eight buttons and shifts them out one
// bit per read, the way the hardware's 4021 shift register does.
type Controller struct {
	buttons [8]bool
	index   byte
	strobe  byte
}

func New() *Controller {
	return &Controller{}
}

// SetButtons replaces the live button snapshot. The backend calls this once
// per frame; the latch captures it while the strobe is high.
func (c *Controller) SetButtons(buttons [8]bool) {
	c.buttons = buttons
}

// Write drives the strobe line ($4016 bit 0). While the strobe is high the
// shift register continuously reloads, so the first read after dropping it
// always returns the A button.
func (c *Controller) Write(data byte) {
	c.strobe = data & 1
	if c.strobe == 1 {
		c.index = 0
	}
}

// Read shifts out one button state. After all eight buttons the register
// returns 1, which is what real pads feed the serial line; software uses it
// as an end marker, not an error.
func (c *Controller) Read() byte {
	if c.index >= 8 {
		return 1
	}

	value := byte(0)
	if c.buttons[c.index] {
		value = 1
	}
	if c.strobe == 0 {
		c.index++
	}
	return value
}
