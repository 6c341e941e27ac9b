package video

// grayscaleLevels maps a 2-bit color index to its grayscale byte value,
// indices 0-3 mapping to white..black.
var grayscaleLevels = [4]byte{0xFF, 0xC0, 0x60, 0x00}

// translate resolves a 2-bit pixel value through a palette register
// (BGP/OBP0/OBP1) to a grayscale byte. Each palette byte packs four
// 2-bit shade indices, two bits per color.
func translate(palette byte, colorIndex byte) byte {
	shade := (palette >> (colorIndex * 2)) & 0x03
	return grayscaleLevels[shade]
}
