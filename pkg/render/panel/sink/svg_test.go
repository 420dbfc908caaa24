package sink

import (
	"encoding/json"
	"encoding/xml"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/matzehuels/speakerbox/pkg/render/panel"
)

func TestRenderSVG(t *testing.T) {
	l, err := panel.New(29, 46, 18, 12)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	svg := string(RenderSVG(l))

	if !strings.HasPrefix(svg, "<svg") {
		t.Error("output should start with <svg")
	}
	for _, id := range []string{`id="panel-front"`, `id="panel-side"`, `id="panel-top_bottom"`} {
		if !strings.Contains(svg, id) {
			t.Errorf("missing %s", id)
		}
	}
	if strings.Count(svg, "<circle") != 1 {
		t.Errorf("want one cutout circle, got %d", strings.Count(svg, "<circle"))
	}
	if !strings.Contains(svg, "Top/Bottom Panel ×2") {
		t.Error("missing top/bottom label")
	}

	// Must be well-formed XML.
	d := xml.NewDecoder(strings.NewReader(svg))
	for {
		_, err := d.Token()
		if err != nil {
			if err != io.EOF {
				t.Fatalf("invalid XML: %v", err)
			}
			break
		}
	}
}

func TestRenderSVGOptions(t *testing.T) {
	l, _ := panel.New(29, 46, 18, 12)

	bare := string(RenderSVG(l, WithoutSVGLabels()))
	if strings.Contains(bare, "<text") {
		t.Error("labels drawn with WithoutSVGLabels")
	}

	dims := string(RenderSVG(l, WithSVGDimensions()))
	if !strings.Contains(dims, "29 × 46 cm") {
		t.Error("missing front panel dimensions")
	}

	tight := string(RenderSVG(l, WithSVGMargin(0)))
	if !strings.Contains(tight, `viewBox="0 0 520.00 970.00"`) {
		t.Errorf("viewBox should match sheet bounds with zero margin: %s", tight[:120])
	}
}

func TestRenderJSON(t *testing.T) {
	l, err := panel.New(3, 4.8, 1.8, 12)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	data, err := RenderJSON(l, WithJSONVolume(23.5))
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}

	var out jsonOutput
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}
	if out.WidthCm != 3 || out.HeightCm != 4.8 || out.DepthCm != 1.8 {
		t.Errorf("dims = %v/%v/%v", out.WidthCm, out.HeightCm, out.DepthCm)
	}
	if out.VolumeLiters != 23.5 {
		t.Errorf("VolumeLiters = %v, want 23.5", out.VolumeLiters)
	}
	if len(out.Panels) != 3 {
		t.Fatalf("Panels count = %d, want 3", len(out.Panels))
	}
	if c := out.Panels[0].Cutout; c == nil || c.X != 15 || c.Y != 18.336 || c.Radius != 60 {
		t.Errorf("front cutout = %+v", c)
	}
	if out.Panels[1].Rect.Y != 98 {
		t.Errorf("side panel y = %v, want 98", out.Panels[1].Rect.Y)
	}
	if math.Abs(out.DriverOffsetCm-(4.8*0.382-2.4)) > 1e-12 {
		t.Errorf("DriverOffsetCm = %v", out.DriverOffsetCm)
	}
	if out.CutoutFits {
		t.Error("12cm driver should not fit a 3cm wide panel")
	}
	if len(out.CutList) != 3 {
		t.Errorf("CutList count = %d, want 3", len(out.CutList))
	}
}

func TestRenderJSONIndent(t *testing.T) {
	l, _ := panel.New(3, 4.8, 1.8, 1)
	data, err := RenderJSON(l, WithJSONIndent())
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}
	if !strings.Contains(string(data), "\n  \"width_cm\"") {
		t.Error("expected indented output")
	}
}
