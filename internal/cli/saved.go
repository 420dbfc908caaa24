package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/speakerbox/pkg/enclosure"
	"github.com/matzehuels/speakerbox/pkg/errors"
	"github.com/matzehuels/speakerbox/pkg/store"
)

// exportOpts holds the render flags of saved show and saved pick.
type exportOpts struct {
	formats  string
	output   string
	detailed bool
	noLabels bool
	yaml     bool
}

// export reports whether the user asked for files to be written.
func (o *exportOpts) export(cmd *cobra.Command) bool {
	return cmd.Flags().Changed("format") || cmd.Flags().Changed("output")
}

// savedCommand creates the saved command group for stored calculations.
func (c *CLI) savedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "saved",
		Aliases: []string{"calculations"},
		Short:   "Manage saved calculations",
		Long: `Manage calculations stored with 'calculate --save'.

Saving under an existing name replaces the earlier calculation.`,
	}

	cmd.AddCommand(c.savedListCommand())
	cmd.AddCommand(c.savedShowCommand())
	cmd.AddCommand(c.savedPickCommand())
	cmd.AddCommand(c.savedDeleteCommand())

	return cmd
}

func (c *CLI) savedListCommand() *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved calculations, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			calcs, err := c.listCalculations(cmd.Context())
			if err != nil {
				return err
			}
			if asYAML {
				return writeYAML(os.Stdout, calcs)
			}
			if len(calcs) == 0 {
				printInfo("No saved calculations")
				printNextStep("Save one", "speakerbox calculate ... --save NAME")
				return nil
			}
			now := time.Now()
			rows := make([][]string, len(calcs))
			for i, calc := range calcs {
				rows[i] = calculationRow(shortID(calc.ID), calc, now)
			}
			fmt.Println(calculationTable(rows, nil).Render())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print as YAML")
	return cmd
}

func (c *CLI) savedShowCommand() *cobra.Command {
	opts := &exportOpts{}
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a saved calculation and optionally re-render it",
		Example: `  speakerbox saved show 3f2a...
  speakerbox saved show 3f2a... -f dxf,svg -o living-room`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			calc, err := c.findCalculation(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.showCalculation(cmd.Context(), calc, opts, opts.export(cmd))
		},
	}
	c.addRenderFlags(cmd, &opts.formats, &opts.output, &opts.detailed, &opts.noLabels)
	cmd.Flags().BoolVar(&opts.yaml, "yaml", false, "print as YAML")
	return cmd
}

func (c *CLI) savedPickCommand() *cobra.Command {
	opts := &exportOpts{}
	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Choose a saved calculation interactively and re-render it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !c.interactive() {
				return errors.New(errors.ErrCodeUnsupported, "pick needs a terminal; use 'saved list' and 'saved show'")
			}
			calcs, err := c.listCalculations(cmd.Context())
			if err != nil {
				return err
			}
			final, err := tea.NewProgram(NewCalculationListModel(calcs)).Run()
			if err != nil {
				return err
			}
			fm, ok := final.(CalculationListModel)
			if !ok || fm.Selected == nil {
				printDetail("No selection made")
				return nil
			}
			return c.showCalculation(cmd.Context(), *fm.Selected, opts, true)
		},
	}
	c.addRenderFlags(cmd, &opts.formats, &opts.output, &opts.detailed, &opts.noLabels)
	return cmd
}

func (c *CLI) savedDeleteCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a saved calculation",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			calc, err := c.findCalculation(ctx, args[0])
			if err != nil {
				return err
			}
			ok, err := c.confirm("Delete "+calc.Name+"?", yes)
			if err != nil || !ok {
				return err
			}

			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Delete(ctx, calc.ID); err != nil {
				return err
			}
			printSuccess("Deleted %s", calc.Name)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (c *CLI) listCalculations(ctx context.Context) ([]store.Calculation, error) {
	st, err := c.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return st.List(ctx)
}

// findCalculation resolves a full ID, a unique ID prefix, or a name.
func (c *CLI) findCalculation(ctx context.Context, ref string) (store.Calculation, error) {
	calcs, err := c.listCalculations(ctx)
	if err != nil {
		return store.Calculation{}, err
	}
	var matches []store.Calculation
	for _, calc := range calcs {
		switch {
		case calc.ID == ref, calc.Name == ref:
			return calc, nil
		case len(ref) >= 4 && len(calc.ID) > len(ref) && calc.ID[:len(ref)] == ref:
			matches = append(matches, calc)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return store.Calculation{}, errors.New(errors.ErrCodeNotFound, "calculation not found: %s", ref)
	}
	return store.Calculation{}, errors.New(errors.ErrCodeInvalidInput, "ambiguous id prefix %q matches %d calculations", ref, len(matches))
}

// showCalculation prints a saved calculation. With export set it is
// recalculated from its driver parameters and rendered again.
func (c *CLI) showCalculation(ctx context.Context, calc store.Calculation, opts *exportOpts, export bool) error {
	if !export {
		if opts.yaml {
			return writeYAML(os.Stdout, calc)
		}
		printSuccess("%s", StyleHighlight.Render(calc.Name))
		printDetail("id %s · saved %s", calc.ID, calc.CreatedAt.Local().Format(time.DateTime))
		printNewline()
		printKeyValue("Driver", calc.Driver().String())
		printKeyValue("Type", calc.Topology)
		printKeyValue("Volume", enclosure.FormatTenth(calc.VolumeLiters)+" L")
		printKeyValue("Box", calc.Dimensions().String())
		if calc.ParsedText != "" {
			printNewline()
			printDetail("%s", calc.ParsedText)
		}
		return nil
	}

	return c.runCalculate(ctx, &calculateOpts{
		driver:   calc.Driver(),
		topology: calc.Topology,
		formats:  opts.formats,
		output:   opts.output,
		detailed: opts.detailed,
		noLabels: opts.noLabels,
		yaml:     opts.yaml,
		noPrompt: true,
	})
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
