package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslateDefaultPalette(t *testing.T) {
	const bgp = 0xE4 // 11 10 01 00 -> index0=00,1=01,2=10,3=11
	assert.EqualValues(t, 0xFF, translate(bgp, 0))
	assert.EqualValues(t, 0xC0, translate(bgp, 1))
	assert.EqualValues(t, 0x60, translate(bgp, 2))
	assert.EqualValues(t, 0x00, translate(bgp, 3))
}

func TestTranslateInvertedPalette(t *testing.T) {
	const palette = 0x1B // 00 01 10 11 -> index0=11,1=10,2=01,3=00
	assert.EqualValues(t, 0x00, translate(palette, 0))
	assert.EqualValues(t, 0x60, translate(palette, 1))
	assert.EqualValues(t, 0xC0, translate(palette, 2))
	assert.EqualValues(t, 0xFF, translate(palette, 3))
}
