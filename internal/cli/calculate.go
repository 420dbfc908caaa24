package cli

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/speakerbox/pkg/enclosure"
	"github.com/matzehuels/speakerbox/pkg/pipeline"
	"github.com/matzehuels/speakerbox/pkg/store"
)

// calculateOpts holds flags for the calculate command.
type calculateOpts struct {
	driver   enclosure.Driver
	topology string
	diameter float64

	formats  string
	output   string
	detailed bool
	noLabels bool

	save       string
	parsedText string

	yaml     bool
	noCache  bool
	refresh  bool
	noPrompt bool
}

func (c *CLI) calculateCommand() *cobra.Command {
	opts := &calculateOpts{}

	cmd := &cobra.Command{
		Use:     "calculate",
		Aliases: []string{"calc"},
		Short:   "Size an enclosure and write its cut sheet",
		Long: `Calculate sizes a sealed or ported enclosure from the driver's Thiele-Small
parameters, derives golden-ratio box dimensions, and writes the panel layout.

Missing parameters are prompted for when running in a terminal.`,
		Example: `  # Sealed box, writes speaker_box.dxf
  speakerbox calculate --fs 40 --qts 0.4 --vas 50

  # Ported box with a preview and an assembly diagram
  speakerbox calculate --fs 35 --qts 0.38 --vas 60 -t ported -f dxf,svg,assembly -o sub

  # Save the design for later
  speakerbox calculate --fs 40 --qts 0.4 --vas 50 --save "living room"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCalculate(cmd.Context(), opts)
		},
	}

	cmd.Flags().Float64Var(&opts.driver.Fs, "fs", 0, "free-air resonance frequency (Hz)")
	cmd.Flags().Float64Var(&opts.driver.Qts, "qts", 0, "total Q factor")
	cmd.Flags().Float64Var(&opts.driver.Vas, "vas", 0, "equivalent compliance volume (L)")
	cmd.Flags().StringVarP(&opts.topology, "type", "t", "", "enclosure type: sealed, ported (default from config)")
	cmd.Flags().Float64Var(&opts.diameter, "driver", 0, "driver cutout diameter in cm (default from config)")
	_ = cmd.RegisterFlagCompletionFunc("type", completeTopologies)
	c.addRenderFlags(cmd, &opts.formats, &opts.output, &opts.detailed, &opts.noLabels)
	cmd.Flags().StringVar(&opts.save, "save", "", "save the calculation under this name")
	cmd.Flags().StringVar(&opts.parsedText, "text", "", "datasheet text stored with --save")
	cmd.Flags().BoolVar(&opts.yaml, "yaml", false, "print the design as YAML")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if cached")
	cmd.Flags().BoolVar(&opts.noPrompt, "no-prompt", false, "never prompt for missing parameters")

	return cmd
}

// addRenderFlags registers the output flags shared by calculate, layout and saved.
func (c *CLI) addRenderFlags(cmd *cobra.Command, formats, output *string, detailed, noLabels *bool) {
	cmd.Flags().StringVarP(formats, "format", "f", pipeline.FormatDXF, "output formats: "+strings.Join(pipeline.ValidFormats, ", "))
	cmd.Flags().StringVarP(output, "output", "o", "", "output base path (default: speaker_box; - for stdout)")
	cmd.Flags().BoolVar(detailed, "detailed", false, "annotate sizes on previews and diagrams")
	cmd.Flags().BoolVar(noLabels, "no-labels", false, "omit panel labels")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
}

func (c *CLI) runCalculate(ctx context.Context, opts *calculateOpts) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}

	driver, err := c.completeDriver(opts.driver, &opts.topology, opts.noPrompt)
	if err != nil {
		return err
	}
	if opts.topology == "" {
		opts.topology = cfg.Defaults.Topology
	}
	if opts.diameter == 0 {
		opts.diameter = cfg.Defaults.DriverDiameterCm
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	result, err := runner.Execute(ctx, pipeline.Options{
		Fs:               driver.Fs,
		Qts:              driver.Qts,
		Vas:              driver.Vas,
		Topology:         opts.topology,
		DriverDiameterCm: opts.diameter,
		Formats:          parseFormats(opts.formats),
		Detailed:         opts.detailed,
		NoLabels:         opts.noLabels,
		Refresh:          opts.refresh,
	})
	if err != nil {
		return err
	}
	prog.done("Calculated design")

	files, err := writeArtifacts(opts.output, result.Artifacts)
	if err != nil {
		return err
	}

	var saved *store.Calculation
	if opts.save != "" {
		calc, err := c.saveDesign(ctx, opts.save, opts.parsedText, result)
		if err != nil {
			return err
		}
		saved = &calc
	}

	if opts.yaml {
		return writeYAML(os.Stdout, newDesignReport(result, files))
	}
	if opts.output == "-" {
		return nil
	}

	topo := result.Design.Topology.String()
	printSuccess("%s enclosure", strings.ToUpper(topo[:1])+topo[1:])
	printStats([]string{topo, enclosure.FormatTenth(result.Design.BoxVolumeLiters) + " L"}, result.CacheInfo.CalculateHit)
	printNewline()
	printDesign(result.Driver, *result.Design, result.Dimensions)
	printNewline()
	printCutList(result.Layout)
	printWarnings(result.Warnings)
	for _, f := range files {
		printFile(f)
	}
	if saved != nil {
		printSuccess("Saved as %s", StyleHighlight.Render(saved.Name))
		printDetail("id %s", saved.ID)
	} else {
		printNewline()
		printNextStep("Save it", "speakerbox calculate ... --save NAME")
	}
	return nil
}

// saveDesign persists a finished design to the configured store.
func (c *CLI) saveDesign(ctx context.Context, name, parsedText string, result *pipeline.Result) (store.Calculation, error) {
	st, err := c.openStore(ctx)
	if err != nil {
		return store.Calculation{}, err
	}
	defer st.Close()

	calc := store.NewCalculation(name, result.Driver, *result.Design, result.Dimensions)
	calc.ParsedText = parsedText
	return st.Save(ctx, calc)
}
