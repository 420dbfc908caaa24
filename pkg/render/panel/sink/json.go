package sink

import (
	"encoding/json"

	"github.com/matzehuels/speakerbox/pkg/render/panel"
)

// JSONOption configures RenderJSON.
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	volume float64
	indent bool
}

// WithJSONVolume records the box volume in liters the layout was derived from.
func WithJSONVolume(liters float64) JSONOption { return func(r *jsonRenderer) { r.volume = liters } }

// WithJSONIndent pretty-prints the output.
func WithJSONIndent() JSONOption { return func(r *jsonRenderer) { r.indent = true } }

type jsonOutput struct {
	WidthCm          float64      `json:"width_cm"`
	HeightCm         float64      `json:"height_cm"`
	DepthCm          float64      `json:"depth_cm"`
	DriverDiameterCm float64      `json:"driver_diameter_cm"`
	DriverOffsetCm   float64      `json:"driver_offset_cm"` // from box center, for 3D previews
	VolumeLiters     float64      `json:"volume_liters,omitempty"`
	Bounds           jsonRect     `json:"bounds_mm"`
	Panels           []jsonPanel  `json:"panels"`
	CutList          []panel.Part `json:"cut_list"`
	TotalAreaCm2     float64      `json:"total_area_cm2"`
	CutoutFits       bool         `json:"cutout_fits"`
	Overlaps         [][2]string  `json:"overlaps,omitempty"`
}

type jsonRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type jsonPanel struct {
	Kind     string      `json:"kind"`
	Label    string      `json:"label"`
	Quantity int         `json:"quantity"`
	Rect     jsonRect    `json:"rect_mm"`
	Cutout   *jsonCircle `json:"cutout_mm,omitempty"`
}

type jsonCircle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

// RenderJSON exports the layout geometry and cut list for external tools.
func RenderJSON(l panel.Layout, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		WidthCm:          l.WidthCm,
		HeightCm:         l.HeightCm,
		DepthCm:          l.DepthCm,
		DriverDiameterCm: l.DriverDiameterCm,
		DriverOffsetCm:   panel.DriverOffsetCm(l.HeightCm),
		VolumeLiters:     r.volume,
		Bounds:           toJSONRect(l.Bounds()),
		CutList:          l.CutList(),
		TotalAreaCm2:     l.TotalAreaCm2(),
		CutoutFits:       l.CutoutFits(),
	}
	for _, p := range l.Panels {
		jp := jsonPanel{
			Kind:     string(p.Kind),
			Label:    p.Label(),
			Quantity: p.Quantity,
			Rect:     toJSONRect(p.Rect),
		}
		if c := p.Cutout; c != nil {
			jp.Cutout = &jsonCircle{X: c.Center.X, Y: c.Center.Y, Radius: c.Radius}
		}
		out.Panels = append(out.Panels, jp)
	}
	for _, o := range l.Overlaps() {
		out.Overlaps = append(out.Overlaps, [2]string{string(o[0]), string(o[1])})
	}

	if r.indent {
		return json.MarshalIndent(out, "", "  ")
	}
	return json.Marshal(out)
}

func toJSONRect(r panel.Rect) jsonRect {
	return jsonRect{X: r.Left, Y: r.Bottom, Width: r.Width(), Height: r.Height()}
}
