package ico

import (
	"bytes"
	"fmt"
	"image"
	"math"
	"os"

	goico "github.com/sergeymakinen/go-ico"
	"golang.org/x/image/draw"

	"github.com/matzehuels/svg2ico/pkg/errors"
)

// MaxSize is the largest edge an ICO directory entry can describe.
const MaxSize = 256

// Size is the pixel dimension of one embedded icon frame.
type Size struct {
	Width, Height int
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Squares pairs every entry of sizes with itself. Order and duplicates are kept.
func Squares(sizes []int) []Size {
	out := make([]Size, len(sizes))
	for i, n := range sizes {
		out[i] = Size{Width: n, Height: n}
	}
	return out
}

// Encoder writes img to outPath as an icon holding one frame per size.
type Encoder interface {
	Encode(img image.Image, outPath string, sizes []Size) error
}

// MultiSizeEncoder is the default Encoder.
type MultiSizeEncoder struct {
	Resampler Resampler
}

// NewEncoder returns an encoder using r. A nil r falls back to Lanczos.
func NewEncoder(r Resampler) *MultiSizeEncoder {
	if r == nil {
		r = Lanczos
	}
	return &MultiSizeEncoder{Resampler: r}
}

// Encode implements Encoder. The whole container is built in memory first,
// so a failure never leaves a partial file at outPath.
func (e *MultiSizeEncoder) Encode(img image.Image, outPath string, sizes []Size) error {
	if len(sizes) == 0 {
		return errors.New(errors.ErrCodeEncode, "no icon sizes requested")
	}
	for _, s := range sizes {
		if s.Width != s.Height {
			return errors.New(errors.ErrCodeEncode, "unsupported icon size %s: only square sizes are supported", s)
		}
		if s.Width < 1 || s.Width > MaxSize {
			return errors.New(errors.ErrCodeEncode, "unsupported icon size %s: must be between 1 and %d", s, MaxSize)
		}
	}

	r := e.Resampler
	if r == nil {
		r = Lanczos
	}

	frames := make([]image.Image, len(sizes))
	for i, s := range sizes {
		frames[i] = fit(r, img, s.Width)
	}

	var buf bytes.Buffer
	if err := goico.EncodeAll(&buf, frames); err != nil {
		return errors.Wrap(errors.ErrCodeEncode, err, "encode icon")
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0644); err != nil {
		return errors.Wrap(errors.ErrCodeEncode, err, "write icon %s", outPath)
	}
	return nil
}

// fit scales src to fit inside a size x size square, keeping its aspect
// ratio, and centers it on a transparent canvas.
func fit(r Resampler, src image.Image, size int) *image.NRGBA {
	b := src.Bounds()
	srcW, srcH := b.Dx(), b.Dy()

	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	if srcW == 0 || srcH == 0 {
		return dst
	}

	scale := math.Min(float64(size)/float64(srcW), float64(size)/float64(srcH))
	w := max(1, int(math.Round(float64(srcW)*scale)))
	h := max(1, int(math.Round(float64(srcH)*scale)))

	scaled := r.Resample(src, w, h)
	offX := (size - w) / 2
	offY := (size - h) / 2
	draw.Draw(dst, image.Rect(offX, offY, offX+w, offY+h), scaled, scaled.Bounds().Min, draw.Src)
	return dst
}
