// Package ico writes and inspects multi-resolution ICO icon containers.
//
// [MultiSizeEncoder] resamples one source image into a square frame per
// requested [Size] and writes them all into a single .ico file using
// sergeymakinen/go-ico. Resampling is pluggable through [Resampler]; the
// default is Lanczos3.
//
// [ReadDirectory] parses only the ICONDIR header and its entries, which is
// enough to list the resolutions a container embeds without decoding any
// pixel data.
//
// # Example
//
//	enc := ico.NewEncoder(ico.Lanczos)
//	err := enc.Encode(img, "logo.ico", ico.Squares([]int{16, 32, 48}))
package ico
