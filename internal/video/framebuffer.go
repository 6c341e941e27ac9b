package video

const (
	FramebufferWidth  = 160
	FramebufferHeight = 144
	FramebufferSize   = FramebufferWidth * FramebufferHeight
)

// FrameBuffer holds one rendered frame as a grayscale byte per pixel,
// using the four hardware shade levels in grayscaleLevels rather than
// the teacher's inverted RGBA GBColor palette.
type FrameBuffer struct {
	pixels [FramebufferSize]byte
}

// NewFrameBuffer returns a buffer cleared to white, matching the blank
// screen shown while the LCD is disabled.
func NewFrameBuffer() *FrameBuffer {
	fb := &FrameBuffer{}
	fb.Clear()
	return fb
}

func (fb *FrameBuffer) SetPixel(x, y int, shade byte) {
	fb.pixels[y*FramebufferWidth+x] = shade
}

func (fb *FrameBuffer) GetPixel(x, y int) byte {
	return fb.pixels[y*FramebufferWidth+x]
}

// Clear resets the whole buffer to white (0xFF).
func (fb *FrameBuffer) Clear() {
	for i := range fb.pixels {
		fb.pixels[i] = 0xFF
	}
}

// Grayscale returns the raw 160x144 grayscale byte plane.
func (fb *FrameBuffer) Grayscale() []byte {
	return fb.pixels[:]
}

// RGB expands the grayscale plane into a 160x144x3 buffer of flat RGB
// triplets, one per pixel, for the host window/snapshot contract.
func (fb *FrameBuffer) RGB() []byte {
	out := make([]byte, FramebufferSize*3)
	for i, shade := range fb.pixels {
		out[i*3] = shade
		out[i*3+1] = shade
		out[i*3+2] = shade
	}
	return out
}
