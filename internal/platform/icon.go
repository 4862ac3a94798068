package platform

import (
	"image"
	"image/color"

	"github.com/1broseidon/peerwin/internal/logical"
	"golang.org/x/image/draw"
)

// ScaleIcon resamples an icon's colour image and mask to width x height.
func ScaleIcon(icon *logical.Icon, width, height int) (*image.NRGBA, logical.Bitmap) {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	if icon.Color != nil {
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), icon.Color, icon.Color.Bounds(), draw.Src, nil)
	}

	mask := logical.NewBitmap(width, height)
	if icon.Mask.Width == 0 || icon.Mask.Height == 0 {
		return dst, mask
	}
	src := image.NewGray(image.Rect(0, 0, icon.Mask.Width, icon.Mask.Height))
	for y := 0; y < icon.Mask.Height; y++ {
		for x := 0; x < icon.Mask.Width; x++ {
			if icon.Mask.At(x, y) {
				src.SetGray(x, y, color.Gray{Y: 0xff})
			}
		}
	}
	scaled := image.NewGray(image.Rect(0, 0, width, height))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), src, src.Bounds(), draw.Src, nil)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			mask.Set(x, y, scaled.GrayAt(x, y).Y >= 0x80)
		}
	}
	return dst, mask
}

// PackBitmap packs a bitmap into XY-format scanlines padded to scanlinePad
// bits. lsbFirst selects the server's bitmap bit order.
func PackBitmap(b logical.Bitmap, scanlinePad int, lsbFirst bool) []byte {
	if scanlinePad < 8 {
		scanlinePad = 8
	}
	stride := ((b.Width + scanlinePad - 1) / scanlinePad) * (scanlinePad / 8)
	out := make([]byte, stride*b.Height)
	for y := 0; y < b.Height; y++ {
		row := out[y*stride:]
		for x := 0; x < b.Width; x++ {
			if !b.At(x, y) {
				continue
			}
			bit := uint(x % 8)
			if !lsbFirst {
				bit = 7 - bit
			}
			row[x/8] |= 1 << bit
		}
	}
	return out
}
