package ico

import (
	"image"
	"sort"
	"strings"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"

	"github.com/matzehuels/svg2ico/pkg/errors"
)

// Resampler scales src to exactly w x h pixels.
type Resampler interface {
	Resample(src image.Image, w, h int) image.Image
}

// kernelResampler resamples with one of the x/image/draw interpolators.
type kernelResampler struct {
	interp draw.Interpolator
}

func (k kernelResampler) Resample(src image.Image, w, h int) image.Image {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	k.interp.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// lanczosResampler resamples with nfnt/resize's Lanczos3 filter.
type lanczosResampler struct{}

func (lanczosResampler) Resample(src image.Image, w, h int) image.Image {
	return resize.Resize(uint(w), uint(h), src, resize.Lanczos3)
}

// Built-in resamplers.
var (
	Nearest    Resampler = kernelResampler{draw.NearestNeighbor}
	Bilinear   Resampler = kernelResampler{draw.BiLinear}
	CatmullRom Resampler = kernelResampler{draw.CatmullRom}
	Lanczos    Resampler = lanczosResampler{}
)

var resamplers = map[string]Resampler{
	"nearest":    Nearest,
	"bilinear":   Bilinear,
	"catmullrom": CatmullRom,
	"lanczos":    Lanczos,
}

// ResamplerByName looks up a built-in resampler. An empty name selects Lanczos.
func ResamplerByName(name string) (Resampler, error) {
	if name == "" {
		return Lanczos, nil
	}
	r, ok := resamplers[strings.ToLower(name)]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid resampler: %s (must be one of %s)", name, strings.Join(ResamplerNames(), ", "))
	}
	return r, nil
}

// ResamplerNames returns the built-in resampler names in sorted order.
func ResamplerNames() []string {
	names := make([]string, 0, len(resamplers))
	for n := range resamplers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
