package raster

import (
	"image"
	"os"

	"golang.org/x/image/draw"

	"github.com/matzehuels/svg2ico/pkg/errors"
)

// LoadRGBA decodes the bitmap at path and converts it to non-premultiplied
// RGBA, whatever the file's native channel layout (gray, paletted, 16-bit).
// The result's bounds start at the origin.
func LoadRGBA(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "open raster %s", path)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "decode raster %s", path)
	}
	return ToNRGBA(src), nil
}

// ToNRGBA returns src as *image.NRGBA anchored at the origin, copying only
// when the pixel format or bounds differ.
func ToNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	if n, ok := src.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
