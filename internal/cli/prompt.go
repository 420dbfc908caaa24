package cli

import (
	stderrors "errors"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	"github.com/matzehuels/speakerbox/pkg/enclosure"
	"github.com/matzehuels/speakerbox/pkg/errors"
)

// isInteractive reports whether both stdin and stdout are terminals.
func isInteractive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}

// completeDriver fills in missing driver parameters. On a terminal the user
// is asked for each one; otherwise the first missing one is reported.
func (c *CLI) completeDriver(d enclosure.Driver, topology *string, noPrompt bool) (enclosure.Driver, error) {
	missing := d.Missing()
	if len(missing) == 0 && *topology != "" {
		return d, nil
	}
	if noPrompt || !c.interactive() {
		if len(missing) > 0 {
			return d, errors.New(errors.ErrCodeMissingInput, "missing parameter: %s (pass --%s)", missing[0], missing[0])
		}
		return d, nil
	}

	fields := map[string]*float64{"fs": &d.Fs, "qts": &d.Qts, "vas": &d.Vas}
	titles := map[string]string{
		"fs":  "Resonance frequency fs (Hz)",
		"qts": "Total Q factor qts",
		"vas": "Equivalent volume vas (L)",
	}
	raw := make(map[string]*string, len(missing))

	var inputs []huh.Field
	for _, name := range missing {
		s := new(string)
		raw[name] = s
		inputs = append(inputs, huh.NewInput().
			Title(titles[name]).
			Value(s).
			Validate(positiveNumber(name)))
	}
	if *topology == "" {
		*topology = string(enclosure.Sealed)
		inputs = append(inputs, huh.NewSelect[string]().
			Title("Enclosure type").
			Options(
				huh.NewOption("Sealed", string(enclosure.Sealed)),
				huh.NewOption("Ported", string(enclosure.Ported)),
			).
			Value(topology))
	}

	if err := huh.NewForm(huh.NewGroup(inputs...)).Run(); err != nil {
		if stderrors.Is(err, huh.ErrUserAborted) {
			return d, errors.New(errors.ErrCodeMissingInput, "cancelled")
		}
		return d, err
	}
	for name, s := range raw {
		v, _ := strconv.ParseFloat(strings.TrimSpace(*s), 64)
		*fields[name] = v
	}
	return d, nil
}

func positiveNumber(name string) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return errors.New(errors.ErrCodeInvalidInput, "%s must be a number", name)
		}
		return errors.ValidateParameter(name, v)
	}
}

// confirm asks a yes/no question. Without a terminal it answers yes only
// when assumeYes is set.
func (c *CLI) confirm(question string, assumeYes bool) (bool, error) {
	if assumeYes {
		return true, nil
	}
	if !c.interactive() {
		return false, errors.New(errors.ErrCodeInvalidInput, "%s (pass --yes to confirm)", question)
	}
	ok := false
	err := huh.NewConfirm().Title(question).Value(&ok).Run()
	if stderrors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}
