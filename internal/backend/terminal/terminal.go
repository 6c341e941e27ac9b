// Package terminal renders emulator frames to a tcell screen as
// half-block glyphs and translates keyboard events into joypad input.
package terminal

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/mrosa/dmgcore/internal/emulator"
	"github.com/mrosa/dmgcore/internal/joypad"
	"github.com/mrosa/dmgcore/internal/video"
)

// frameTime paces the render loop at the Game Boy's ~59.7Hz refresh.
const frameTime = time.Second / 60

// keymap associates a physical keystroke with the button it presses.
// Arrow keys drive the d-pad; 'a'/'s' are A/B, Enter is Start, and 'q'
// is Select, matching a conventional Game Boy terminal layout.
var keymap = map[tcell.Key]joypad.Key{
	tcell.KeyRight: joypad.Right,
	tcell.KeyLeft:  joypad.Left,
	tcell.KeyUp:    joypad.Up,
	tcell.KeyDown:  joypad.Down,
	tcell.KeyEnter: joypad.Start,
}

var runeKeymap = map[rune]joypad.Key{
	'a': joypad.A,
	's': joypad.B,
	'q': joypad.Select,
}

// Backend presents frames in the current terminal and reads keyboard
// input. Unlike a platform with real key-up events, a terminal only
// reports keystrokes, so each press is held for one frame and then
// released automatically.
type Backend struct {
	screen tcell.Screen
}

func (b *Backend) Run(e *emulator.Emulator) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: initializing screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal: initializing screen: %w", err)
	}
	b.screen = screen
	defer screen.Fini()

	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	screen.Clear()

	events := make(chan tcell.Event, 16)
	go screen.ChannelEvents(events, nil)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()

	pressed := make(map[joypad.Key]bool)

	for {
		select {
		case <-signals:
			return nil
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
					return nil
				}
				if key, ok := resolveKey(ev); ok {
					e.PressKey(key)
					pressed[key] = true
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		case <-ticker.C:
			e.RunFrame()
			for key := range pressed {
				e.ReleaseKey(key)
				delete(pressed, key)
			}
			if e.FrameReady() {
				b.render(e.ConsumeFrame())
				screen.Show()
			}
		}
	}
}

func resolveKey(ev *tcell.EventKey) (joypad.Key, bool) {
	if k, ok := keymap[ev.Key()]; ok {
		return k, true
	}
	if ev.Key() == tcell.KeyRune {
		if k, ok := runeKeymap[ev.Rune()]; ok {
			return k, true
		}
	}
	return 0, false
}

// render draws two pixel rows per terminal line using an upper-half
// block glyph: its foreground paints the top row, its background
// paints the bottom row, doubling vertical resolution.
func (b *Backend) render(fb *video.FrameBuffer) {
	for textRow := 0; textRow < video.FramebufferHeight/2; textRow++ {
		for x := 0; x < video.FramebufferWidth; x++ {
			top := gray(fb.GetPixel(x, textRow*2))
			bottom := gray(fb.GetPixel(x, textRow*2+1))
			style := tcell.StyleDefault.Foreground(top).Background(bottom)
			b.screen.SetContent(x, textRow, '▀', nil, style)
		}
	}
}

// gray maps a grayscale framebuffer byte directly to a tcell true
// color; terminals without true-color support degrade it to their
// nearest palette entry.
func gray(pixel byte) tcell.Color {
	return tcell.NewRGBColor(int32(pixel), int32(pixel), int32(pixel))
}
