package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLowerXWinsPriority(t *testing.T) {
	var buf spritePriorityBuffer
	buf.clear()

	// sprite 0 at X=5 claims pixels 5-12
	for px := 0; px < 8; px++ {
		buf.tryClaim(5+px, 0, 5)
	}
	// sprite 1 at X=10 claims pixels 10-17, overlapping 10-12
	for px := 0; px < 8; px++ {
		buf.tryClaim(10+px, 1, 10)
	}

	assert.Equal(t, 0, buf.owner(10))
	assert.Equal(t, 0, buf.owner(12))
	assert.Equal(t, 1, buf.owner(13))
}

func TestEqualXLowerOAMIndexWins(t *testing.T) {
	var buf spritePriorityBuffer
	buf.clear()

	for px := 0; px < 8; px++ {
		buf.tryClaim(12+px, 3, 12)
	}
	for px := 0; px < 8; px++ {
		buf.tryClaim(12+px, 1, 12)
	}

	assert.Equal(t, 1, buf.owner(12))
}

func TestUnclaimedPixelHasNoOwner(t *testing.T) {
	var buf spritePriorityBuffer
	buf.clear()
	assert.Equal(t, -1, buf.owner(50))
}
