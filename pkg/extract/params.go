package extract

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/speakerbox/pkg/enclosure"
	"github.com/matzehuels/speakerbox/pkg/errors"
)

// Params are the parameters found in a text. Nil means not found.
type Params struct {
	Fs  *float64 `json:"fs,omitempty" yaml:"fs,omitempty"`
	Qts *float64 `json:"qts,omitempty" yaml:"qts,omitempty"`
	Vas *float64 `json:"vas,omitempty" yaml:"vas,omitempty"`
}

// Empty reports whether no parameter was found.
func (p Params) Empty() bool {
	return p.Fs == nil && p.Qts == nil && p.Vas == nil
}

// Merge returns d with every found parameter overwritten.
func (p Params) Merge(d enclosure.Driver) enclosure.Driver {
	if p.Fs != nil {
		d.Fs = *p.Fs
	}
	if p.Qts != nil {
		d.Qts = *p.Qts
	}
	if p.Vas != nil {
		d.Vas = *p.Vas
	}
	return d
}

var objectPattern = regexp.MustCompile(`\{[^}]+\}`)

// ParseReply extracts parameters from a model reply.
//
// Values may be JSON numbers or numeric strings; a trailing unit such as
// "38 Hz" is ignored. Zero, negative and non-numeric values are treated as
// not found.
func ParseReply(content string) (Params, error) {
	match := objectPattern.FindString(strings.TrimSpace(content))
	if match == "" {
		return Params{}, errors.New(errors.ErrCodeInvalidInput, "no valid parameters found")
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(match), &raw); err != nil {
		return Params{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "no valid parameters found")
	}

	var p Params
	for k, v := range raw {
		n, ok := number(v)
		if !ok {
			continue
		}
		switch strings.ToLower(k) {
		case "fs":
			p.Fs = &n
		case "qts":
			p.Qts = &n
		case "vas":
			p.Vas = &n
		}
	}
	return p, nil
}

func number(v any) (float64, bool) {
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case string:
		fields := strings.Fields(x)
		if len(fields) == 0 {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.TrimRight(fields[0], "HzLl"), 64)
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if n <= 0 || math.IsInf(n, 0) || math.IsNaN(n) {
		return 0, false
	}
	return n, true
}
