package raster

import (
	"context"
	"image"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/matzehuels/svg2ico/pkg/errors"
)

// OKSVG rasterizes with the pure-Go oksvg renderer.
type OKSVG struct {
	// Scale multiplies the intrinsic size. Zero means 1.
	Scale float64
}

// Rasterize implements Rasterizer.
func (o OKSVG) Rasterize(ctx context.Context, svgPath, rasterPath string) error {
	img, err := o.Render(ctx, svgPath)
	if err != nil {
		return err
	}
	if err := WritePNG(rasterPath, img); err != nil {
		return errors.Wrap(errors.ErrCodeRasterize, err, "write raster %s", rasterPath)
	}
	return nil
}

// Render draws the SVG at svgPath onto a transparent canvas sized to the
// document's width and height, converted to pixels at 96 DPI. The viewBox
// only decides the size when width and height are absent or relative.
func (o OKSVG) Render(ctx context.Context, svgPath string) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	icon, err := oksvg.ReadIcon(svgPath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRasterize, err, "read svg %s", svgPath)
	}
	doc, err := readDocument(svgPath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRasterize, err, "read svg %s", svgPath)
	}

	dw, dh := doc.size()
	scale := scaleOrDefault(o.Scale)
	w := int(math.Ceil(dw * scale))
	h := int(math.Ceil(dh * scale))
	if w <= 0 || h <= 0 {
		return nil, errors.New(errors.ErrCodeRasterize, "svg %s has no intrinsic size", svgPath)
	}
	if !doc.hasViewBox {
		// Without a viewBox, user units are pixels of the declared size.
		icon.ViewBox.X, icon.ViewBox.Y = 0, 0
		icon.ViewBox.W, icon.ViewBox.H = dw, dh
	}

	icon.SetTarget(0, 0, float64(w), float64(h))
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, rgba, rgba.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1.0)
	return rgba, nil
}
