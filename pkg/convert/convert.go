// Package convert turns an SVG file into a multi-resolution ICO icon.
//
// A [Converter] rasterizes the SVG to a temporary PNG, loads it as RGBA,
// encodes one square frame per requested size into the icon and removes
// the temporary PNG. The rasterizer and encoder are interfaces, so any
// backend from [raster] or [ico] (or a custom one) can be plugged in.
//
//	c := convert.NewDefault(logger)
//	out, err := c.Convert(ctx, "assets/logo.svg", convert.Options{})
//	// out == "assets/logo.ico"
package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/svg2ico/pkg/errors"
	"github.com/matzehuels/svg2ico/pkg/ico"
	"github.com/matzehuels/svg2ico/pkg/observability"
	"github.com/matzehuels/svg2ico/pkg/raster"
)

const (
	// IconExt is the extension given to derived output paths.
	IconExt = ".ico"

	// RasterExt is the extension of the temporary bitmap.
	RasterExt = ".png"

	// ErrorPrefix starts the message of every error returned by Convert.
	ErrorPrefix = "Error converting SVG to ICO"
)

var defaultSizes = []int{16, 32, 48, 64, 128, 256}

// DefaultSizes returns the icon sizes used when Options.Sizes is nil.
func DefaultSizes() []int {
	return append([]int(nil), defaultSizes...)
}

// Options configures a single conversion.
type Options struct {
	// Output is the icon path. Empty derives it from the source with OutputPath.
	Output string

	// Sizes lists the square frame sizes in order. Nil selects DefaultSizes;
	// a non-nil empty slice is rejected. Duplicates are kept.
	Sizes []int

	// TempDir holds the temporary raster. Empty means os.TempDir().
	TempDir string
}

// Converter converts SVG files to ICO files. It holds no per-call state and
// is safe for concurrent use.
type Converter struct {
	Rasterizer raster.Rasterizer
	Encoder    ico.Encoder
	Logger     *log.Logger
}

// New creates a converter. A nil logger falls back to log.Default().
func New(r raster.Rasterizer, e ico.Encoder, logger *log.Logger) *Converter {
	if logger == nil {
		logger = log.Default()
	}
	return &Converter{Rasterizer: r, Encoder: e, Logger: logger}
}

// NewDefault creates a converter backed by the pure-Go oksvg rasterizer and
// the Lanczos multi-size encoder.
func NewDefault(logger *log.Logger) *Converter {
	return New(raster.OKSVG{}, ico.NewEncoder(ico.Lanczos), logger)
}

// ConvertSvgToIco converts src with the default backends. An empty output
// derives the path from src; nil sizes selects DefaultSizes.
func ConvertSvgToIco(ctx context.Context, src, output string, sizes []int) (string, error) {
	return NewDefault(nil).Convert(ctx, src, Options{Output: output, Sizes: sizes})
}

// OutputPath replaces the extension of src with IconExt. Leading dots in the
// file name do not start an extension, so ".logo" becomes ".logo.ico".
func OutputPath(src string) string {
	return replaceExt(src, IconExt)
}

// Convert renders src into an icon and returns the icon's path.
//
// Every error is a *errors.Error with code CONVERSION_FAILED whose message
// starts with ErrorPrefix; the stage-specific cause stays reachable with
// errors.Is. The temporary raster is removed on every return path.
func (c *Converter) Convert(ctx context.Context, src string, opts Options) (string, error) {
	start := time.Now()
	observability.Conversion().OnConvertStart(ctx, src)

	out, err := c.convert(ctx, src, opts)
	if err != nil {
		err = errors.Wrap(errors.ErrCodeConversion, err, "%s", ErrorPrefix)
	}

	observability.Conversion().OnConvertComplete(ctx, src, out, time.Since(start), err)
	if err != nil {
		return "", err
	}

	c.logger().Info("converted", "src", src, "out", out, "duration", time.Since(start).Round(time.Millisecond))
	return out, nil
}

func (c *Converter) convert(ctx context.Context, src string, opts Options) (string, error) {
	if c.Rasterizer == nil || c.Encoder == nil {
		return "", errors.New(errors.ErrCodeInternal, "converter needs both a rasterizer and an encoder")
	}
	if src == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "source path cannot be empty")
	}
	sizes, err := resolveSizes(opts.Sizes)
	if err != nil {
		return "", err
	}
	out := opts.Output
	if out == "" {
		out = OutputPath(src)
	}

	tmp, release := tempRaster(opts.TempDir, src)
	defer release()

	logger := c.logger()
	hooks := observability.Conversion()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	stageStart := time.Now()
	err = c.Rasterizer.Rasterize(ctx, src, tmp)
	hooks.OnRasterize(ctx, backendName(c.Rasterizer), time.Since(stageStart), err)
	if err != nil {
		return "", err
	}
	logger.Debug("rasterized", "src", src, "path", tmp, "duration", time.Since(stageStart))

	if err := ctx.Err(); err != nil {
		return "", err
	}
	stageStart = time.Now()
	img, err := raster.LoadRGBA(tmp)
	if err != nil {
		hooks.OnDecode(ctx, 0, 0, time.Since(stageStart), err)
		return "", err
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	hooks.OnDecode(ctx, w, h, time.Since(stageStart), nil)
	logger.Debug("decoded", "path", tmp, "width", w, "height", h)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	stageStart = time.Now()
	err = c.Encoder.Encode(img, out, ico.Squares(sizes))
	hooks.OnEncode(ctx, len(sizes), time.Since(stageStart), err)
	if err != nil {
		return "", err
	}
	logger.Debug("encoded", "path", out, "sizes", formatSizes(sizes), "duration", time.Since(stageStart))

	return out, nil
}

func (c *Converter) logger() *log.Logger {
	if c.Logger == nil {
		return log.Default()
	}
	return c.Logger
}

// resolveSizes applies the default and rejects sizes no icon entry can hold
// before anything touches the filesystem.
func resolveSizes(sizes []int) ([]int, error) {
	if sizes == nil {
		return DefaultSizes(), nil
	}
	if len(sizes) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "size list cannot be empty")
	}
	for _, n := range sizes {
		if n < 1 || n > ico.MaxSize {
			return nil, errors.New(errors.ErrCodeInvalidInput, "invalid icon size %d (must be between 1 and %d)", n, ico.MaxSize)
		}
	}
	return sizes, nil
}

// tempRaster returns a fresh raster path for src inside dir and a function
// that removes whatever ends up at that path.
func tempRaster(dir, src string) (string, func()) {
	if dir == "" {
		dir = os.TempDir()
	}
	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	path := filepath.Join(dir, fmt.Sprintf("%s-%s%s", stem, uuid.NewString(), RasterExt))
	return path, func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warn("failed to remove temporary raster", "path", path, "err", err)
		}
	}
}

func replaceExt(path, ext string) string {
	base := filepath.Base(path)
	trimmed := strings.TrimLeft(base, ".")
	old := filepath.Ext(trimmed)
	return strings.TrimSuffix(path, old) + ext
}

func backendName(r raster.Rasterizer) string {
	switch r.(type) {
	case raster.OKSVG, *raster.OKSVG:
		return raster.BackendOKSVG
	case raster.RSVG, *raster.RSVG:
		return raster.BackendRSVG
	}
	return fmt.Sprintf("%T", r)
}

func formatSizes(sizes []int) string {
	parts := make([]string, len(sizes))
	for i, n := range sizes {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ",")
}
