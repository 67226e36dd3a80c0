// Package pkg provides the libraries behind svg2ico.
//
// # Overview
//
// svg2ico converts an SVG image into a multi-resolution ICO icon. The pkg
// directory is organized by conversion stage:
//
//  1. [raster] - SVG to PNG rasterization (oksvg, rsvg-convert)
//  2. [ico] - multi-size ICO encoding, resampling and directory reading
//  3. [convert] - the end-to-end conversion with a scoped temporary raster
//  4. [errors] - coded errors shared by all stages
//  5. [observability] - optional hooks for conversion events
//
// # Architecture
//
//	source.svg
//	     ↓
//	[raster] Rasterizer (temporary PNG)
//	     ↓
//	[raster] LoadRGBA (*image.NRGBA)
//	     ↓
//	[ico] Encoder (one frame per size)
//	     ↓
//	source.ico
//
// # Quick Start
//
//	import "github.com/matzehuels/svg2ico/pkg/convert"
//
//	out, err := convert.ConvertSvgToIco(ctx, "assets/logo.svg", "", nil)
//	// out == "assets/logo.ico", frames 16, 32, 48, 64, 128 and 256
package pkg
