package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matzehuels/svg2ico/pkg/convert"
	"github.com/matzehuels/svg2ico/pkg/ico"
	"github.com/matzehuels/svg2ico/pkg/raster"
)

// convertOpts holds the command-line flags for the convert command.
type convertOpts struct {
	output     string  // icon path; empty derives <source>.ico
	sizes      []int   // square frame sizes; nil uses the defaults
	rasterizer string  // rasterizer backend: oksvg or rsvg
	resampler  string  // resampling filter for each frame
	scale      float64 // rasterization scale factor
	tempDir    string  // directory for the temporary raster
}

// convertCommand creates the convert command.
func (c *CLI) convertCommand() *cobra.Command {
	opts := convertOpts{
		rasterizer: raster.BackendOKSVG,
		resampler:  "lanczos",
		scale:      1,
	}

	cmd := &cobra.Command{
		Use:   "convert [file.svg]",
		Short: "Convert an SVG file to a multi-resolution ICO icon",
		Long: fmt.Sprintf(`Convert renders an SVG file and writes an ICO icon with one frame per size.

Without a file argument, %s in the current directory is converted.
The icon is written next to the source with an .ico extension unless --output is given.`, defaultSource),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := defaultSource
			if len(args) == 1 {
				src = args[0]
			}
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				c.printError("Error: %s", err)
				return reported(err)
			}
			opts.apply(cfg, cmd.Flags())
			return c.runConvert(cmd.Context(), src, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output icon path (default: source with .ico extension)")
	cmd.Flags().IntSliceVarP(&opts.sizes, "sizes", "s", nil, "icon sizes, comma-separated (default 16,32,48,64,128,256)")
	cmd.Flags().StringVar(&opts.rasterizer, "rasterizer", opts.rasterizer, "rasterizer backend: oksvg (default), rsvg")
	cmd.Flags().StringVar(&opts.resampler, "resampler", opts.resampler, "resampling filter: lanczos (default), catmullrom, bilinear, nearest")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "rasterization scale factor")
	cmd.Flags().StringVar(&opts.tempDir, "temp-dir", "", "directory for the temporary raster (default: system temp dir)")

	return cmd
}

// runConvert converts src and reports the result on the CLI's output.
func (c *CLI) runConvert(ctx context.Context, src string, opts convertOpts) error {
	logger := loggerFromContext(ctx)

	out, err := c.convert(ctx, src, opts)
	if err != nil {
		c.printError("Error: %s", err)
		return reported(err)
	}

	c.printSuccess("Successfully converted to: %s", out)
	if entries, err := ico.ReadFile(out); err == nil {
		for _, e := range entries {
			c.printDetail("%s · %d bytes", e.Size(), e.Bytes)
		}
	} else {
		logger.Debug("could not read back icon directory", "path", out, "err", err)
	}
	return nil
}

func (c *CLI) convert(ctx context.Context, src string, opts convertOpts) (string, error) {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	r, err := raster.New(opts.rasterizer, opts.scale)
	if err != nil {
		return "", err
	}
	resampler, err := ico.ResamplerByName(opts.resampler)
	if err != nil {
		return "", err
	}
	logger.Debug("converting", "src", src, "rasterizer", opts.rasterizer, "resampler", opts.resampler, "scale", opts.scale)

	conv := convert.New(r, ico.NewEncoder(resampler), logger)

	if c.interactive() {
		spinner := newSpinner(ctx, c.Err, fmt.Sprintf("Converting %s...", src))
		spinner.Start()
		defer spinner.Stop()
	}

	out, err := conv.Convert(ctx, src, convert.Options{
		Output:  opts.output,
		Sizes:   opts.sizes,
		TempDir: opts.tempDir,
	})
	if err != nil {
		return "", err
	}
	prog.done("Wrote " + out)
	return out, nil
}

// interactive reports whether the spinner has a terminal to draw on.
func (c *CLI) interactive() bool {
	f, ok := c.Err.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
