package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/speakerbox/pkg/enclosure"
	"github.com/matzehuels/speakerbox/pkg/pipeline"
)

// layoutOpts holds flags for the layout command.
type layoutOpts struct {
	dims     enclosure.Dimensions
	diameter float64

	formats  string
	output   string
	detailed bool
	noLabels bool
	yaml     bool
}

// layoutCommand creates the layout command for drawing a cut sheet from
// explicit box dimensions.
func (c *CLI) layoutCommand() *cobra.Command {
	opts := &layoutOpts{}

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Write a cut sheet for explicit box dimensions",
		Long: `Layout draws the front, side and top/bottom panels of a box whose outer
dimensions are already known. No acoustic calculation is performed.

Dimensions that are not given fall back to the [defaults] section of the
config file.`,
		Example: `  speakerbox layout --width 29 --height 46 --depth 18 --driver 16.5
  speakerbox layout -f svg -o preview`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), opts)
		},
	}

	cmd.Flags().Float64Var(&opts.dims.WidthCm, "width", 0, "box width in cm")
	cmd.Flags().Float64Var(&opts.dims.HeightCm, "height", 0, "box height in cm")
	cmd.Flags().Float64Var(&opts.dims.DepthCm, "depth", 0, "box depth in cm")
	cmd.Flags().Float64Var(&opts.diameter, "driver", 0, "driver cutout diameter in cm")
	c.addRenderFlags(cmd, &opts.formats, &opts.output, &opts.detailed, &opts.noLabels)
	cmd.Flags().BoolVar(&opts.yaml, "yaml", false, "print the cut list as YAML")

	return cmd
}

// runLayout applies defaults, lays out the panels and writes the artifacts.
func (c *CLI) runLayout(ctx context.Context, opts *layoutOpts) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	d := cfg.Defaults

	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return err
	}
	defer runner.Close()

	result, err := runner.ExecuteLayout(ctx, pipeline.Options{
		WidthCm:          orDefault(opts.dims.WidthCm, d.WidthCm),
		HeightCm:         orDefault(opts.dims.HeightCm, d.HeightCm),
		DepthCm:          orDefault(opts.dims.DepthCm, d.DepthCm),
		DriverDiameterCm: orDefault(opts.diameter, d.DriverDiameterCm),
		Formats:          parseFormats(opts.formats),
		Detailed:         opts.detailed,
		NoLabels:         opts.noLabels,
	})
	if err != nil {
		return err
	}

	files, err := writeArtifacts(opts.output, result.Artifacts)
	if err != nil {
		return err
	}

	if opts.yaml {
		return writeYAML(os.Stdout, newDesignReport(result, files))
	}
	if opts.output == "-" {
		return nil
	}

	printSuccess("Layout %s", result.Dimensions.String())
	printCutList(result.Layout)
	printWarnings(result.Warnings)
	for _, f := range files {
		printFile(f)
	}
	return nil
}

// orDefault treats an unset (zero) flag as blank.
func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
