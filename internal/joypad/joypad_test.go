package joypad

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadWithNoSelectionReturnsAllReleased(t *testing.T) {
	j := New()
	assert.EqualValues(t, 0xCF, j.Read())
}

func TestSelectButtonsReflectsPressState(t *testing.T) {
	j := New()
	j.Write(0x10) // clear bit 5: select buttons
	j.Press(A)
	assert.EqualValues(t, 0xDE, j.Read())
}

func TestSelectDpadReflectsPressState(t *testing.T) {
	j := New()
	j.Write(0x20) // clear bit 4: select d-pad
	j.Press(Up)
	assert.EqualValues(t, 0xEB, j.Read())
}

func TestPressFiresInterruptOnlyOnTransition(t *testing.T) {
	j := New()
	count := 0
	j.InterruptHandler = func() { count++ }

	j.Press(A)
	j.Press(A) // already pressed, no new transition
	assert.Equal(t, 1, count)

	j.Release(A)
	j.Press(A)
	assert.Equal(t, 2, count)
}

func TestReleaseNeverFiresInterrupt(t *testing.T) {
	j := New()
	j.InterruptHandler = func() { t.Fatal("release must not raise the joypad interrupt") }
	j.Release(B)
}
