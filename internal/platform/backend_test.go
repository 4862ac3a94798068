package platform

import (
	"image"
	"image/color"
	"reflect"
	"testing"

	"github.com/1broseidon/peerwin/internal/logical"
	"github.com/BurntSushi/xgb/xproto"
)

func TestChanges_ValuesInBitOrder(t *testing.T) {
	ch := Changes{
		Mask:      xproto.ConfigWindowStackMode | xproto.ConfigWindowSibling | xproto.ConfigWindowHeight | xproto.ConfigWindowX,
		X:         -5,
		Height:    40,
		Sibling:   0x200001,
		StackMode: xproto.StackModeBelow,
	}
	want := []uint32{uint32(0xfffffffb), 40, 0x200001, uint32(xproto.StackModeBelow)}
	if got := ch.Values(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if !ch.SizeChanged() {
		t.Fatalf("expected height change to count as size change")
	}
	if (Changes{Mask: xproto.ConfigWindowX}).SizeChanged() {
		t.Fatalf("position-only change is not a size change")
	}
}

func TestAttributes_ValuesInBitOrder(t *testing.T) {
	attrs := Attributes{
		Mask: xproto.CwCursor | xproto.CwEventMask | xproto.CwSaveUnder | xproto.CwOverrideRedirect |
			xproto.CwBackingStore | xproto.CwWinGravity | xproto.CwBitGravity,
		BitGravity:       xproto.GravityBitForget,
		WinGravity:       xproto.GravityNorthWest,
		BackingStore:     xproto.BackingStoreNotUseful,
		OverrideRedirect: true,
		SaveUnder:        false,
		EventMask:        xproto.EventMaskExposure,
		Cursor:           "left_ptr",
	}
	want := []uint32{
		xproto.GravityBitForget, xproto.GravityNorthWest, xproto.BackingStoreNotUseful,
		1, 0, xproto.EventMaskExposure, 77,
	}
	if got := attrs.Values(77); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestPackBitmap(t *testing.T) {
	bm := logical.NewBitmap(10, 2)
	bm.Set(0, 0, true)
	bm.Set(9, 0, true)
	bm.Set(1, 1, true)

	tests := []struct {
		name     string
		pad      int
		lsbFirst bool
		want     []byte
	}{
		{name: "lsb pad 8", pad: 8, lsbFirst: true, want: []byte{0x01, 0x02, 0x02, 0x00}},
		{name: "msb pad 8", pad: 8, lsbFirst: false, want: []byte{0x80, 0x40, 0x40, 0x00}},
		{name: "lsb pad 32", pad: 32, lsbFirst: true, want: []byte{0x01, 0x02, 0, 0, 0x02, 0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PackBitmap(bm, tt.pad, tt.lsbFirst); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expected %x, got %x", tt.want, got)
			}
		})
	}
}

func TestScaleIcon_UpscalesMask(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.Set(x, y, color.NRGBA{G: 200, A: 255})
		}
	}
	mask := logical.NewBitmap(2, 2)
	mask.Set(1, 1, true)

	scaled, bits := ScaleIcon(&logical.Icon{Color: img, Mask: mask}, 4, 4)
	if scaled.Bounds().Dx() != 4 || bits.Width != 4 {
		t.Fatalf("expected 4x4 output, got %v / %dx%d", scaled.Bounds(), bits.Width, bits.Height)
	}
	if !bits.At(3, 3) || !bits.At(2, 2) {
		t.Fatalf("expected bottom-right quadrant masked, got %v", bits.Bits)
	}
	if bits.At(0, 0) {
		t.Fatalf("expected top-left quadrant opaque")
	}
	if c := scaled.NRGBAAt(0, 0); c.G < 198 || c.G > 202 || c.A == 0 {
		t.Fatalf("expected colour preserved, got %v", c)
	}
}
