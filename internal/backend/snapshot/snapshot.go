// Package snapshot encodes a framebuffer as a PNG file, upscaled with
// a smoother filter than nearest-neighbor so still images hold up
// better than the live render.
package snapshot

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	"github.com/mrosa/dmgcore/internal/video"
)

// Scale is the upscale factor applied before encoding; the Game Boy's
// native 160x144 resolution is small enough that a raw 1:1 PNG reads
// poorly on modern displays.
const Scale = 3

// Save encodes fb as a Scale-times upscaled grayscale PNG at path,
// creating any missing parent directory.
func Save(fb *video.FrameBuffer, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("snapshot: creating directory: %w", err)
	}

	src := image.NewGray(image.Rect(0, 0, video.FramebufferWidth, video.FramebufferHeight))
	for y := 0; y < video.FramebufferHeight; y++ {
		for x := 0; x < video.FramebufferWidth; x++ {
			src.SetGray(x, y, color.Gray{Y: fb.GetPixel(x, y)})
		}
	}

	dst := image.NewGray(image.Rect(0, 0, video.FramebufferWidth*Scale, video.FramebufferHeight*Scale))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("snapshot: creating file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, dst); err != nil {
		return fmt.Errorf("snapshot: encoding png: %w", err)
	}
	return nil
}
