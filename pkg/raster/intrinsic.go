package raster

import (
	"encoding/xml"
	"io"
	"os"
	"strconv"
	"strings"
)

// cssPixelsPerInch is the resolution used to turn absolute units into pixels.
const cssPixelsPerInch = 96.0

// unitPixels maps SVG length units to CSS pixels. Font-relative units assume
// a 16px font.
var unitPixels = map[string]float64{
	"":   1,
	"px": 1,
	"in": cssPixelsPerInch,
	"cm": cssPixelsPerInch / 2.54,
	"mm": cssPixelsPerInch / 25.4,
	"pt": cssPixelsPerInch / 72,
	"pc": cssPixelsPerInch / 6,
	"em": 16,
	"ex": 8,
}

// viewBox is the user coordinate system declared on the root element.
type viewBox struct {
	x, y, w, h float64
}

// document holds the root <svg> attributes that decide the rendering size.
// A zero width or height means the attribute was absent, relative or invalid.
type document struct {
	width, height float64
	viewBox       viewBox
	hasViewBox    bool
}

// size resolves the intrinsic pixel size. Explicit width and height win; a
// single missing dimension follows the viewBox aspect ratio, and the viewBox
// itself is used when neither is given.
func (d document) size() (w, h float64) {
	w, h = d.width, d.height
	if !d.hasViewBox {
		return w, h
	}
	vb := d.viewBox
	switch {
	case w == 0 && h == 0:
		return vb.w, vb.h
	case w == 0 && vb.h > 0:
		return h * vb.w / vb.h, h
	case h == 0 && vb.w > 0:
		return w, w * vb.h / vb.w
	}
	return w, h
}

// readDocument scans the root element of the SVG at path.
func readDocument(path string) (document, error) {
	f, err := os.Open(path)
	if err != nil {
		return document{}, err
	}
	defer f.Close()
	return parseDocument(f)
}

func parseDocument(r io.Reader) (document, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false
	for {
		tok, err := dec.Token()
		if err != nil {
			return document{}, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		var doc document
		for _, attr := range start.Attr {
			switch attr.Name.Local {
			case "width":
				doc.width = parseLength(attr.Value)
			case "height":
				doc.height = parseLength(attr.Value)
			case "viewBox":
				doc.viewBox, doc.hasViewBox = parseViewBox(attr.Value)
			}
		}
		return doc, nil
	}
}

// parseLength converts an SVG length to pixels. Percentages and unknown
// units yield 0.
func parseLength(s string) float64 {
	s = strings.TrimSpace(s)
	i := len(s)
	for i > 0 && (s[i-1] >= 'a' && s[i-1] <= 'z' || s[i-1] == '%') {
		i--
	}
	mult, ok := unitPixels[s[i:]]
	if !ok {
		return 0
	}
	v, err := strconv.ParseFloat(s[:i], 64)
	if err != nil || v <= 0 {
		return 0
	}
	return v * mult
}

func parseViewBox(s string) (viewBox, bool) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) != 4 {
		return viewBox{}, false
	}
	var v [4]float64
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return viewBox{}, false
		}
		v[i] = n
	}
	if v[2] <= 0 || v[3] <= 0 {
		return viewBox{}, false
	}
	return viewBox{x: v[0], y: v[1], w: v[2], h: v[3]}, true
}
