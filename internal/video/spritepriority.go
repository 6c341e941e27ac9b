package video

// spritePriorityBuffer resolves per-pixel sprite ownership for one
// scanline: the sprite with the lowest X wins a pixel, ties broken by
// the lower OAM index. Rather than sorting the scanline's sprites by
// (X, OAM index) before drawing, ownership is precomputed per pixel
// during OAM selection and consulted during drawing.
type spritePriorityBuffer struct {
	ownerIndex [FramebufferWidth]int
	ownerX     [FramebufferWidth]int
}

func (b *spritePriorityBuffer) clear() {
	for i := range b.ownerIndex {
		b.ownerIndex[i] = -1
		b.ownerX[i] = 0xFF
	}
}

// tryClaim assigns pixelX to spriteIndex if it has priority over the
// pixel's current owner, if any.
func (b *spritePriorityBuffer) tryClaim(pixelX, spriteIndex, spriteX int) {
	if pixelX < 0 || pixelX >= FramebufferWidth {
		return
	}

	owner := b.ownerIndex[pixelX]
	if owner == -1 || spriteX < b.ownerX[pixelX] || (spriteX == b.ownerX[pixelX] && spriteIndex < owner) {
		b.ownerIndex[pixelX] = spriteIndex
		b.ownerX[pixelX] = spriteX
	}
}

func (b *spritePriorityBuffer) owner(pixelX int) int {
	if pixelX < 0 || pixelX >= FramebufferWidth {
		return -1
	}
	return b.ownerIndex[pixelX]
}
