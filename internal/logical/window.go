package logical

import (
	"errors"
	"image"
)

// ID identifies a logical window. Zero means "no window".
type ID uint32

var (
	// ErrNotFound is returned for identities the tree has never seen.
	ErrNotFound = errors.New("logical window not found")
	// ErrForeign is returned when the window belongs to another process and
	// only its persisted properties are readable.
	ErrForeign = errors.New("logical window belongs to another process")
)

// Window is a snapshot of a logical window's state.
type Window struct {
	ID         ID
	Parent     ID
	Owner      ID
	Style      uint32
	ExStyle    uint32
	ClassStyle uint32
	// Window is the frame-inclusive rectangle, Client the content rectangle.
	// Both are in the parent's client coordinates.
	Window    Rect
	Client    Rect
	Icon      *Icon
	IconSmall *Icon
}

// IsMinimized reports whether the window is currently iconic.
func (w Window) IsMinimized() bool {
	return w.Style&StyleMinimize != 0
}

// IsVisible reports whether the window carries the visible style bit.
func (w Window) IsVisible() bool {
	return w.Style&StyleVisible != 0
}

// Bitmap is a monochrome bitmap stored row-major.
type Bitmap struct {
	Width  int
	Height int
	Bits   []bool
}

// NewBitmap allocates a cleared bitmap.
func NewBitmap(width, height int) Bitmap {
	return Bitmap{Width: width, Height: height, Bits: make([]bool, width*height)}
}

// At returns the bit at x, y; out-of-range coordinates read as false.
func (b Bitmap) At(x, y int) bool {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return false
	}
	return b.Bits[y*b.Width+x]
}

// Set writes the bit at x, y.
func (b Bitmap) Set(x, y int, v bool) {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return
	}
	b.Bits[y*b.Width+x] = v
}

// Inverted returns a copy with every bit flipped.
func (b Bitmap) Inverted() Bitmap {
	out := Bitmap{Width: b.Width, Height: b.Height, Bits: make([]bool, len(b.Bits))}
	for i, v := range b.Bits {
		out.Bits[i] = !v
	}
	return out
}

// Icon is an application icon: a colour image plus an AND mask in which a set
// bit marks a transparent pixel.
type Icon struct {
	Color image.Image
	Mask  Bitmap
}

// IconFromImage derives the AND mask from the image's alpha channel.
func IconFromImage(img image.Image) *Icon {
	b := img.Bounds()
	mask := NewBitmap(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			_, _, _, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			mask.Set(x, y, a == 0)
		}
	}
	return &Icon{Color: img, Mask: mask}
}
