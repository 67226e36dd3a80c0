package convert

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/svg2ico/pkg/errors"
	"github.com/matzehuels/svg2ico/pkg/ico"
	"github.com/matzehuels/svg2ico/pkg/observability"
	"github.com/matzehuels/svg2ico/pkg/raster"
)

const minimalSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="64" height="64" viewBox="0 0 64 64">
  <circle cx="32" cy="32" r="24" fill="#3366cc"/>
</svg>`

// fixture lays out <dir>/assets/logo.svg and a private temp dir.
type fixture struct {
	dir     string
	src     string
	tempDir string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	assets := filepath.Join(dir, "assets")
	tempDir := filepath.Join(dir, "tmp")
	for _, d := range []string{assets, tempDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatal(err)
		}
	}
	src := filepath.Join(assets, "logo.svg")
	if err := os.WriteFile(src, []byte(minimalSVG), 0644); err != nil {
		t.Fatal(err)
	}
	return fixture{dir: dir, src: src, tempDir: tempDir}
}

func (f fixture) assertTempClean(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(f.tempDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("temporary raster left behind: %v", entries[0].Name())
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(f.src), "logo.png")); !os.IsNotExist(err) {
		t.Error("no raster should be written next to the source")
	}
}

func quietConverter() *Converter {
	return NewDefault(log.New(&bytes.Buffer{}))
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"assets/logo.svg", "assets/logo.ico"},
		{"logo.svg", "logo.ico"},
		{"logo", "logo.ico"},
		{"logo.min.svg", "logo.min.ico"},
		{"a.b/logo", "a.b/logo.ico"},
		{".logo", ".logo.ico"},
		{".logo.svg", ".logo.ico"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if got := OutputPath(tt.src); got != tt.want {
				t.Errorf("OutputPath(%q) = %q, want %q", tt.src, got, tt.want)
			}
		})
	}
}

func TestDefaultSizesIsCopy(t *testing.T) {
	s := DefaultSizes()
	s[0] = 999
	if DefaultSizes()[0] != 16 {
		t.Error("DefaultSizes should return a fresh copy")
	}
}

func TestConvertDefaults(t *testing.T) {
	f := newFixture(t)

	out, err := quietConverter().Convert(context.Background(), f.src, Options{TempDir: f.tempDir})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	if want := filepath.Join(filepath.Dir(f.src), "logo.ico"); out != want {
		t.Errorf("out = %q, want %q", out, want)
	}
	if !strings.HasSuffix(out, IconExt) {
		t.Errorf("out = %q, want %s suffix", out, IconExt)
	}

	entries, err := ico.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := DefaultSizes()
	if len(entries) != len(want) {
		t.Fatalf("entries = %d, want %d", len(entries), len(want))
	}
	for i, n := range want {
		if entries[i].Width != n || entries[i].Height != n {
			t.Errorf("entry %d = %v, want %dx%d", i, entries[i].Size(), n, n)
		}
	}

	f.assertTempClean(t)
}

func TestConvertExplicitOutputAndSizes(t *testing.T) {
	f := newFixture(t)
	output := filepath.Join(f.dir, "favicon.ico")

	out, err := quietConverter().Convert(context.Background(), f.src, Options{
		Output:  output,
		Sizes:   []int{16, 32},
		TempDir: f.tempDir,
	})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if out != output {
		t.Errorf("out = %q, want %q", out, output)
	}

	entries, err := ico.ReadFile(output)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Size() != (ico.Size{Width: 16, Height: 16}) || entries[1].Size() != (ico.Size{Width: 32, Height: 32}) {
		t.Errorf("entries = %v, %v; want 16x16, 32x32", entries[0].Size(), entries[1].Size())
	}
	if _, err := os.Stat(OutputPath(f.src)); !os.IsNotExist(err) {
		t.Error("derived output should not be written when Output is set")
	}

	f.assertTempClean(t)
}

func TestConvertMissingSource(t *testing.T) {
	f := newFixture(t)
	src := filepath.Join(f.dir, "missing.svg")

	out, err := quietConverter().Convert(context.Background(), src, Options{TempDir: f.tempDir})
	if err == nil {
		t.Fatal("Convert should fail for a missing source")
	}
	if out != "" {
		t.Errorf("out = %q, want empty", out)
	}
	if !strings.Contains(err.Error(), ErrorPrefix+":") {
		t.Errorf("error %q should contain %q", err.Error(), ErrorPrefix+":")
	}
	if !errors.Is(err, errors.ErrCodeConversion) || !errors.Is(err, errors.ErrCodeRasterize) {
		t.Errorf("error codes: want CONVERSION_FAILED wrapping RASTERIZE_FAILED, got %v", err)
	}
	if _, statErr := os.Stat(OutputPath(src)); !os.IsNotExist(statErr) {
		t.Error("no output file should be created")
	}
	f.assertTempClean(t)
}

func TestConvertRejectsSizesEagerly(t *testing.T) {
	tests := []struct {
		name  string
		sizes []int
	}{
		{"empty", []int{}},
		{"zero", []int{16, 0}},
		{"negative", []int{-32}},
		{"too large", []int{16, 512}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			r := &fakeRasterizer{}
			c := New(r, &fakeEncoder{}, log.New(&bytes.Buffer{}))

			_, err := c.Convert(context.Background(), f.src, Options{Sizes: tt.sizes, TempDir: f.tempDir})
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Fatalf("error = %v, want INVALID_INPUT", err)
			}
			if !strings.HasPrefix(err.Error(), ErrorPrefix+": ") {
				t.Errorf("error %q should start with %q", err.Error(), ErrorPrefix)
			}
			if r.calls != 0 {
				t.Error("rasterizer should not run for an invalid size list")
			}
		})
	}
}

func TestConvertEmptySource(t *testing.T) {
	_, err := quietConverter().Convert(context.Background(), "", Options{})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestConvertPassesSizesThrough(t *testing.T) {
	f := newFixture(t)
	enc := &fakeEncoder{}
	c := New(&fakeRasterizer{}, enc, log.New(&bytes.Buffer{}))

	if _, err := c.Convert(context.Background(), f.src, Options{Sizes: []int{64, 16, 64}, TempDir: f.tempDir}); err != nil {
		t.Fatalf("Convert: %v", err)
	}

	want := []ico.Size{{Width: 64, Height: 64}, {Width: 16, Height: 16}, {Width: 64, Height: 64}}
	if len(enc.sizes) != len(want) {
		t.Fatalf("encoder got %v, want %v", enc.sizes, want)
	}
	for i := range want {
		if enc.sizes[i] != want[i] {
			t.Errorf("size %d = %v, want %v", i, enc.sizes[i], want[i])
		}
	}
	if _, ok := enc.img.(*image.NRGBA); !ok {
		t.Errorf("encoder got %T, want *image.NRGBA", enc.img)
	}
}

func TestConvertNormalizesGrayRaster(t *testing.T) {
	f := newFixture(t)
	enc := &fakeEncoder{}
	r := &fakeRasterizer{img: image.NewGray(image.Rect(0, 0, 5, 7))}
	c := New(r, enc, log.New(&bytes.Buffer{}))

	if _, err := c.Convert(context.Background(), f.src, Options{TempDir: f.tempDir}); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	n, ok := enc.img.(*image.NRGBA)
	if !ok {
		t.Fatalf("encoder got %T, want *image.NRGBA", enc.img)
	}
	if n.Bounds() != image.Rect(0, 0, 5, 7) {
		t.Errorf("bounds = %v, want 5x7", n.Bounds())
	}
}

func TestConvertRemovesTempOnEncodeFailure(t *testing.T) {
	f := newFixture(t)
	enc := &fakeEncoder{err: errors.New(errors.ErrCodeEncode, "disk full")}
	c := New(&fakeRasterizer{}, enc, log.New(&bytes.Buffer{}))

	_, err := c.Convert(context.Background(), f.src, Options{TempDir: f.tempDir})
	if !errors.Is(err, errors.ErrCodeEncode) {
		t.Fatalf("error = %v, want ENCODE_FAILED", err)
	}
	if want := ErrorPrefix + ": disk full"; err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
	f.assertTempClean(t)
}

func TestConvertRemovesTempOnDecodeFailure(t *testing.T) {
	f := newFixture(t)
	r := &fakeRasterizer{garbage: true}
	c := New(r, &fakeEncoder{}, log.New(&bytes.Buffer{}))

	_, err := c.Convert(context.Background(), f.src, Options{TempDir: f.tempDir})
	if !errors.Is(err, errors.ErrCodeDecode) {
		t.Fatalf("error = %v, want DECODE_FAILED", err)
	}
	f.assertTempClean(t)
}

func TestConvertUniqueTempPaths(t *testing.T) {
	f := newFixture(t)
	r := &fakeRasterizer{}
	c := New(r, &fakeEncoder{}, log.New(&bytes.Buffer{}))

	for i := 0; i < 2; i++ {
		if _, err := c.Convert(context.Background(), f.src, Options{TempDir: f.tempDir}); err != nil {
			t.Fatalf("Convert: %v", err)
		}
	}
	if len(r.paths) != 2 || r.paths[0] == r.paths[1] {
		t.Errorf("temporary paths = %v, want two distinct paths", r.paths)
	}
	for _, p := range r.paths {
		if filepath.Dir(p) != f.tempDir || filepath.Ext(p) != RasterExt {
			t.Errorf("temporary path %q should be a %s file in %s", p, RasterExt, f.tempDir)
		}
		if !strings.HasPrefix(filepath.Base(p), "logo-") {
			t.Errorf("temporary path %q should start with the source stem", p)
		}
	}
}

func TestConvertCancelled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &fakeRasterizer{}
	_, err := New(r, &fakeEncoder{}, log.New(&bytes.Buffer{})).Convert(ctx, f.src, Options{TempDir: f.tempDir})
	if err == nil || !strings.Contains(err.Error(), context.Canceled.Error()) {
		t.Fatalf("error = %v, want context canceled", err)
	}
	if r.calls != 0 {
		t.Error("rasterizer should not run after cancellation")
	}
}

func TestConvertMissingBackends(t *testing.T) {
	_, err := New(nil, nil, nil).Convert(context.Background(), "logo.svg", Options{})
	if !errors.Is(err, errors.ErrCodeInternal) {
		t.Errorf("error = %v, want INTERNAL_ERROR", err)
	}
}

func TestConvertSvgToIco(t *testing.T) {
	f := newFixture(t)
	output := filepath.Join(f.dir, "out.ico")

	out, err := ConvertSvgToIco(context.Background(), f.src, output, []int{48})
	if err != nil {
		t.Fatalf("ConvertSvgToIco: %v", err)
	}
	entries, err := ico.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(entries) != 1 || entries[0].Width != 48 {
		t.Errorf("entries = %+v, want one 48x48 entry", entries)
	}
}

func TestConvertReportsHooks(t *testing.T) {
	f := newFixture(t)
	hooks := &recordingHooks{}
	observability.SetConversionHooks(hooks)
	defer observability.Reset()

	c := New(&fakeRasterizer{}, &fakeEncoder{}, log.New(&bytes.Buffer{}))
	if _, err := c.Convert(context.Background(), f.src, Options{Sizes: []int{16, 32}, TempDir: f.tempDir}); err != nil {
		t.Fatalf("Convert: %v", err)
	}

	want := []string{"start", "rasterize", "decode", "encode", "complete"}
	if strings.Join(hooks.events, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", hooks.events, want)
	}
	if hooks.frames != 2 {
		t.Errorf("frames = %d, want 2", hooks.frames)
	}
}

func TestConvertLogs(t *testing.T) {
	f := newFixture(t)
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

	c := New(&fakeRasterizer{}, &fakeEncoder{}, logger)
	if _, err := c.Convert(context.Background(), f.src, Options{TempDir: f.tempDir}); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	for _, msg := range []string{"rasterized", "decoded", "encoded", "converted"} {
		if !strings.Contains(buf.String(), msg) {
			t.Errorf("log output missing %q:\n%s", msg, buf.String())
		}
	}
}

// fakeRasterizer writes img (a 4x4 NRGBA by default) as the raster.
type fakeRasterizer struct {
	img     image.Image
	garbage bool
	calls   int
	paths   []string
}

func (r *fakeRasterizer) Rasterize(_ context.Context, _, rasterPath string) error {
	r.calls++
	r.paths = append(r.paths, rasterPath)
	if r.garbage {
		return os.WriteFile(rasterPath, []byte("not a png"), 0644)
	}
	img := r.img
	if img == nil {
		n := image.NewNRGBA(image.Rect(0, 0, 4, 4))
		n.SetNRGBA(1, 1, color.NRGBA{R: 0xff, A: 0xff})
		img = n
	}
	return raster.WritePNG(rasterPath, img)
}

type fakeEncoder struct {
	err   error
	img   image.Image
	sizes []ico.Size
}

func (e *fakeEncoder) Encode(img image.Image, outPath string, sizes []ico.Size) error {
	e.img = img
	e.sizes = sizes
	return e.err
}

type recordingHooks struct {
	observability.NoopConversionHooks
	events []string
	frames int
}

func (h *recordingHooks) OnConvertStart(context.Context, string) {
	h.events = append(h.events, "start")
}

func (h *recordingHooks) OnConvertComplete(context.Context, string, string, time.Duration, error) {
	h.events = append(h.events, "complete")
}

func (h *recordingHooks) OnRasterize(context.Context, string, time.Duration, error) {
	h.events = append(h.events, "rasterize")
}

func (h *recordingHooks) OnDecode(context.Context, int, int, time.Duration, error) {
	h.events = append(h.events, "decode")
}

func (h *recordingHooks) OnEncode(_ context.Context, frames int, _ time.Duration, _ error) {
	h.events = append(h.events, "encode")
	h.frames = frames
}
