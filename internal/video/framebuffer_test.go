package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFrameBufferStartsWhite(t *testing.T) {
	fb := NewFrameBuffer()
	assert.EqualValues(t, 0xFF, fb.GetPixel(0, 0))
	assert.EqualValues(t, 0xFF, fb.GetPixel(159, 143))
}

func TestSetPixelRoundTrip(t *testing.T) {
	fb := NewFrameBuffer()
	fb.SetPixel(10, 20, 0x60)
	assert.EqualValues(t, 0x60, fb.GetPixel(10, 20))
}

func TestRGBExpandsGrayscaleTriplet(t *testing.T) {
	fb := NewFrameBuffer()
	fb.SetPixel(0, 0, 0x42)
	rgb := fb.RGB()
	assert.Len(t, rgb, FramebufferSize*3)
	assert.Equal(t, []byte{0x42, 0x42, 0x42}, rgb[:3])
}
