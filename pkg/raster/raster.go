// Package raster turns SVG documents into PNG bitmaps.
//
// A [Rasterizer] renders an SVG file at its intrinsic size into a PNG file.
// Two backends are provided:
//
//   - [OKSVG]: pure Go, built on srwiley/oksvg and srwiley/rasterx. It needs
//     nothing installed and covers the subset of SVG typical for icons.
//   - [RSVG]: shells out to rsvg-convert from librsvg for full SVG support.
//     Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
//
// [LoadRGBA] reads a rendered bitmap back as four-channel non-premultiplied RGBA.
package raster

import (
	"context"
	"image"
	"image/png"
	"os"
	"sort"
	"strings"

	"github.com/matzehuels/svg2ico/pkg/errors"
)

// Backend names accepted by New.
const (
	BackendOKSVG = "oksvg"
	BackendRSVG  = "rsvg"
)

// Rasterizer renders the SVG at svgPath into a PNG file at rasterPath.
type Rasterizer interface {
	Rasterize(ctx context.Context, svgPath, rasterPath string) error
}

var backends = map[string]func(scale float64) Rasterizer{
	BackendOKSVG: func(scale float64) Rasterizer { return OKSVG{Scale: scale} },
	BackendRSVG:  func(scale float64) Rasterizer { return RSVG{Scale: scale} },
}

// New returns the named backend rendering at the given scale factor.
// An empty name selects the oksvg backend; a scale of 0 means 1.
func New(name string, scale float64) (Rasterizer, error) {
	if name == "" {
		name = BackendOKSVG
	}
	if scale < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid scale: %g (must be positive)", scale)
	}
	mk, ok := backends[strings.ToLower(name)]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid rasterizer: %s (must be one of %s)", name, strings.Join(Names(), ", "))
	}
	return mk(scale), nil
}

// Names returns the available backend names in sorted order.
func Names() []string {
	names := make([]string, 0, len(backends))
	for n := range backends {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// WritePNG encodes img as PNG at path, replacing any existing file.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func scaleOrDefault(s float64) float64 {
	if s == 0 {
		return 1
	}
	return s
}
