package raster

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/matzehuels/svg2ico/pkg/errors"
)

const defaultRSVGBinary = "rsvg-convert"

// RSVG rasterizes by running rsvg-convert.
type RSVG struct {
	// Binary is the executable to run. Empty means rsvg-convert on PATH.
	Binary string
	// Scale is passed as the zoom factor. Zero means 1.
	Scale float64
}

// Available reports whether the rsvg-convert binary can be found.
func (r RSVG) Available() bool {
	_, err := exec.LookPath(r.binary())
	return err == nil
}

// Rasterize implements Rasterizer.
func (r RSVG) Rasterize(ctx context.Context, svgPath, rasterPath string) error {
	bin, err := exec.LookPath(r.binary())
	if err != nil {
		return errors.Wrap(errors.ErrCodeUnsupported, err, "the rsvg rasterizer requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin")
	}

	args := []string{"-f", "png", "-z", fmt.Sprintf("%.2f", scaleOrDefault(r.Scale)), "-o", rasterPath, svgPath}
	cmd := exec.CommandContext(ctx, bin, args...)

	var errBuf bytes.Buffer
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.Wrap(errors.ErrCodeRasterize, err, "rsvg-convert %s: %s", svgPath, bytes.TrimSpace(errBuf.Bytes()))
	}
	return nil
}

func (r RSVG) binary() string {
	if r.Binary != "" {
		return r.Binary
	}
	return defaultRSVGBinary
}
