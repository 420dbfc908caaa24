package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/speakerbox/pkg/enclosure"
	"github.com/matzehuels/speakerbox/pkg/extract"
)

// extractOpts holds flags for the extract command.
type extractOpts struct {
	text    string
	apiKey  string
	refresh bool
	yaml    bool

	// --calculate chains into the calculate command.
	calculate bool
	calc      calculateOpts
}

// extractCommand creates the extract command, which reads Thiele-Small
// parameters out of free-form datasheet text.
func (c *CLI) extractCommand() *cobra.Command {
	opts := &extractOpts{}

	cmd := &cobra.Command{
		Use:   "extract [file|-]",
		Short: "Read driver parameters from datasheet text",
		Long: `Extract sends datasheet text to a language model and reports the fs, qts
and vas values it finds. Text comes from --text, a file, or stdin ("-").

The API key is read from --api-key, SPEAKERBOX_EXTRACT_API_KEY, or the
[extract] section of the config file.`,
		Example: `  speakerbox extract --text "Fs: 38 Hz, Qts 0.42, Vas 45 liters"
  pdftotext datasheet.pdf - | speakerbox extract - --calculate -t ported`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(opts.text, args)
			if err != nil {
				return err
			}
			return c.runExtract(cmd.Context(), text, opts)
		},
	}

	cmd.Flags().StringVar(&opts.text, "text", "", "datasheet text")
	cmd.Flags().StringVar(&opts.apiKey, "api-key", "", "OpenRouter API key")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ask the model even if the text was seen before")
	cmd.Flags().BoolVar(&opts.yaml, "yaml", false, "print the parameters as YAML")
	cmd.Flags().BoolVar(&opts.calculate, "calculate", false, "calculate an enclosure from the extracted parameters")
	cmd.Flags().StringVarP(&opts.calc.topology, "type", "t", "", "enclosure type for --calculate")
	cmd.Flags().StringVar(&opts.calc.save, "save", "", "save the calculation under this name (with --calculate)")
	c.addRenderFlags(cmd, &opts.calc.formats, &opts.calc.output, &opts.calc.detailed, &opts.calc.noLabels)

	return cmd
}

// readText returns the --text value, or the contents of the file argument.
func readText(text string, args []string) (string, error) {
	if text != "" || len(args) == 0 {
		return text, nil
	}
	if args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(data), nil
}

func (c *CLI) runExtract(ctx context.Context, text string, opts *extractOpts) error {
	client, ch, err := c.extractClient(ctx, opts.apiKey)
	if err != nil {
		return err
	}
	defer ch.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Asking %s...", client.Model()))
	quiet := opts.yaml || opts.calc.output == "-"
	if !quiet {
		spinner.Start()
	}

	var params extract.Params
	if opts.refresh {
		params, err = client.ExtractFresh(ctx, text)
	} else {
		params, err = client.Extract(ctx, text)
	}
	if !quiet {
		if err != nil {
			spinner.StopWithError("Extraction failed")
		} else {
			spinner.StopWithSuccess("Parameters extracted")
		}
	}
	if err != nil {
		return err
	}

	if opts.yaml && !opts.calculate {
		return writeYAML(os.Stdout, params)
	}
	if !quiet {
		printParams(params)
	}
	if !opts.calculate {
		return nil
	}

	opts.calc.driver = params.Merge(enclosure.Driver{})
	opts.calc.parsedText = strings.TrimSpace(text)
	opts.calc.yaml = opts.yaml
	opts.calc.refresh = opts.refresh
	if !quiet {
		printNewline()
	}
	return c.runCalculate(ctx, &opts.calc)
}

func printParams(p extract.Params) {
	show := func(name string, v *float64, unit string) {
		if v == nil {
			printKeyValue(name, StyleDim.Render("not found"))
			return
		}
		printKeyValue(name, fmt.Sprintf("%g%s", *v, unit))
	}
	show("fs", p.Fs, " Hz")
	show("qts", p.Qts, "")
	show("vas", p.Vas, " L")
}
