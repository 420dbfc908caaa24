package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/matzehuels/speakerbox/pkg/enclosure"
	"github.com/matzehuels/speakerbox/pkg/pipeline"
	"github.com/matzehuels/speakerbox/pkg/render/panel"
)

// basePath derives the base output path from -o. Known format extensions
// are stripped so "box.dxf" and "box" both yield "box".
func basePath(output string) string {
	if output == "" {
		return defaultOutputBase
	}
	for _, ext := range outputExtensions() {
		if strings.HasSuffix(output, ext) {
			return strings.TrimSuffix(output, ext)
		}
	}
	return output
}

// outputExtensions lists the format extensions longest first, so
// ".assembly.svg" is stripped whole rather than as ".svg".
func outputExtensions() []string {
	exts := make([]string, 0, len(pipeline.ValidFormats))
	for _, f := range pipeline.ValidFormats {
		exts = append(exts, pipeline.Extensions[f])
	}
	sort.SliceStable(exts, func(i, j int) bool { return len(exts[i]) > len(exts[j]) })
	return exts
}

// openOutput opens path for writing, or stdout for "-".
func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// writeArtifacts writes each rendered format to base+extension and returns
// the paths in format display order. With a single format and output "-"
// the artifact goes to stdout.
func writeArtifacts(output string, artifacts map[string][]byte) ([]string, error) {
	var paths []string
	for _, format := range pipeline.ValidFormats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}
		path := basePath(output) + pipeline.Extensions[format]
		if output == "-" && len(artifacts) == 1 {
			path = "-"
		}

		out, err := openOutput(path)
		if err != nil {
			return paths, err
		}
		_, werr := out.Write(data)
		if cerr := out.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			return paths, fmt.Errorf("write %s: %w", path, werr)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// designReport is the machine-readable summary printed by --yaml.
type designReport struct {
	Driver     *enclosure.Driver     `yaml:"driver,omitempty"`
	Result     *enclosure.Result     `yaml:"result,omitempty"`
	Dimensions enclosure.Dimensions `yaml:"dimensions"`
	CutList    []panel.Part          `yaml:"cut_list"`
	Warnings   []string              `yaml:"warnings,omitempty"`
	Files      []string              `yaml:"files,omitempty"`
}

func newDesignReport(res *pipeline.Result, files []string) designReport {
	r := designReport{
		Result:     res.Design,
		Dimensions: res.Dimensions,
		CutList:    res.Layout.CutList(),
		Warnings:   res.Warnings,
		Files:      files,
	}
	if res.Design != nil {
		d := res.Driver
		r.Driver = &d
	}
	return r
}

// writeYAML encodes v to w.
func writeYAML(w io.Writer, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
