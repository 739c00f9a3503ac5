package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strobed(c *Controller) *Controller {
	c.Write(1)
	c.Write(0)
	return c
}

func TestReadShiftsButtonsInOrder(t *testing.T) {
	c := New()
	c.SetButtons([8]bool{true, false, true, false, false, true, false, true}) // A, Select, Down, Right
	strobed(c)

	want := []byte{1, 0, 1, 0, 0, 1, 0, 1}
	for i, w := range want {
		assert.Equal(t, w, c.Read(), "bit %d", i)
	}
}

func TestReadPastEightReturnsSentinel(t *testing.T) {
	c := New()
	c.SetButtons([8]bool{})
	strobed(c)

	for i := 0; i < 8; i++ {
		assert.Equal(t, byte(0), c.Read())
	}
	// Drained register reads as 1 until the next strobe.
	assert.Equal(t, byte(1), c.Read())
	assert.Equal(t, byte(1), c.Read())
}

func TestStrobeHighKeepsReloading(t *testing.T) {
	c := New()
	c.SetButtons([8]bool{true}) // A held
	c.Write(1)

	// While the strobe is high every read re-latches bit 0.
	assert.Equal(t, byte(1), c.Read())
	assert.Equal(t, byte(1), c.Read())

	c.Write(0)
	assert.Equal(t, byte(1), c.Read()) // A
	assert.Equal(t, byte(0), c.Read()) // B
}

func TestRestrobeResetsIndex(t *testing.T) {
	c := New()
	c.SetButtons([8]bool{true, true})
	strobed(c)
	c.Read()
	c.Read()
	c.Read()

	strobed(c)
	assert.Equal(t, byte(1), c.Read(), "index must rewind to A")
}
