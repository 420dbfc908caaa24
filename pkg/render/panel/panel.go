package panel

import (
	"fmt"
	"strconv"

	"github.com/matzehuels/speakerbox/pkg/enclosure"
	"github.com/matzehuels/speakerbox/pkg/errors"
)

// Host defaults used when a layout is requested before any calculation has run.
const (
	DefaultWidthCm          = 3.0
	DefaultHeightCm         = 4.8
	DefaultDepthCm          = 1.8
	DefaultDriverDiameterCm = 12.0
)

const (
	// MMPerCM converts the centimeter design domain to drawing millimeters.
	MMPerCM = 10.0

	// Gutter is the spacing in mm between panels on the sheet.
	Gutter = 50.0

	// DriverHeightRatio places the driver center this fraction of the
	// front panel height above the bottom edge.
	DriverHeightRatio = 0.382
)

// Kind identifies a panel group on the sheet.
type Kind string

const (
	KindFront     Kind = "front"
	KindSide      Kind = "side"
	KindTopBottom Kind = "top_bottom"
)

// Panel is one drawn rectangle on the cut sheet. Panels with Quantity 2 are
// drawn once and cut twice.
type Panel struct {
	Kind     Kind
	Name     string
	Quantity int

	// Nominal size in centimeters, as shown in the label.
	WidthCm, HeightCm float64

	// Rect is the drawn outline in millimeters.
	Rect Rect

	// Cutout is the driver hole, front panel only.
	Cutout *Circle
}

// Label returns the informational text that precedes the panel group,
// e.g. "Side Panel (1.8x4.8cm) - Cut 2".
func (p Panel) Label() string {
	s := fmt.Sprintf("%s (%sx%scm)", p.Name, FormatNumber(p.WidthCm), FormatNumber(p.HeightCm))
	if p.Quantity > 1 {
		s += fmt.Sprintf(" - Cut %d", p.Quantity)
	}
	return s
}

// Layout is the cut sheet for one box: a front panel with the driver
// cutout, a side panel pair and a top/bottom panel pair. Panels appear in
// drawing order.
type Layout struct {
	WidthCm          float64
	HeightCm         float64
	DepthCm          float64
	DriverDiameterCm float64

	Panels []Panel
}

// New lays out the panels for a box of the given outer dimensions.
//
// All inputs are centimeters; the geometry is in millimeters. Every input
// must be positive and finite, otherwise New returns NON_POSITIVE_GEOMETRY
// and no layout.
func New(widthCm, heightCm, depthCm, driverDiameterCm float64) (Layout, error) {
	for _, in := range []struct {
		name string
		v    float64
	}{
		{"width", widthCm},
		{"height", heightCm},
		{"depth", depthCm},
		{"driver diameter", driverDiameterCm},
	} {
		if err := errors.ValidateDimension(in.name, in.v); err != nil {
			return Layout{}, err
		}
	}

	w := widthCm * MMPerCM
	h := heightCm * MMPerCM
	d := depthCm * MMPerCM

	front := Panel{
		Kind:     KindFront,
		Name:     "Front Panel",
		Quantity: 1,
		WidthCm:  widthCm,
		HeightCm: heightCm,
		Rect:     Rect{Left: 0, Bottom: 0, Right: w, Top: h},
		Cutout: &Circle{
			Center: Point{X: w / 2, Y: h * DriverHeightRatio},
			Radius: (driverDiameterCm * MMPerCM) / 2,
		},
	}

	// Stacked above the front panel, one gutter apart.
	side := Panel{
		Kind:     KindSide,
		Name:     "Side Panel",
		Quantity: 2,
		WidthCm:  depthCm,
		HeightCm: heightCm,
		Rect:     Rect{Left: 0, Bottom: h + Gutter, Right: d, Top: h*2 + Gutter},
	}

	// Rotated a quarter turn: depth runs along x, width along y.
	topBottom := Panel{
		Kind:     KindTopBottom,
		Name:     "Top/Bottom Panel",
		Quantity: 2,
		WidthCm:  widthCm,
		HeightCm: depthCm,
		Rect:     Rect{Left: w + Gutter, Bottom: 0, Right: w + d + Gutter, Top: w},
	}

	return Layout{
		WidthCm:          widthCm,
		HeightCm:         heightCm,
		DepthCm:          depthCm,
		DriverDiameterCm: driverDiameterCm,
		Panels:           []Panel{front, side, topBottom},
	}, nil
}

// FromDimensions lays out the panels for calculated dimensions.
func FromDimensions(dims enclosure.Dimensions, driverDiameterCm float64) (Layout, error) {
	return New(dims.WidthCm, dims.HeightCm, dims.DepthCm, driverDiameterCm)
}

// Panel returns the panel of the given kind.
func (l Layout) Panel(k Kind) (Panel, bool) {
	for _, p := range l.Panels {
		if p.Kind == k {
			return p, true
		}
	}
	return Panel{}, false
}

// Bounds returns the smallest rectangle containing every panel outline and cutout.
func (l Layout) Bounds() Rect {
	var b Rect
	for i, p := range l.Panels {
		if i == 0 {
			b = p.Rect
		} else {
			b = b.Union(p.Rect)
		}
		if p.Cutout != nil {
			b = b.Union(p.Cutout.Bounds())
		}
	}
	return b
}

// Overlaps returns the pairs of panels whose outlines intersect with
// positive area. With golden-ratio dimensions the list is always empty;
// unusual hand-entered dimensions (depth beyond width plus the gutter and
// width beyond height plus the gutter) can make the side and top/bottom
// panels collide.
func (l Layout) Overlaps() [][2]Kind {
	var out [][2]Kind
	for i := range l.Panels {
		for j := i + 1; j < len(l.Panels); j++ {
			if l.Panels[i].Rect.Intersects(l.Panels[j].Rect) {
				out = append(out, [2]Kind{l.Panels[i].Kind, l.Panels[j].Kind})
			}
		}
	}
	return out
}

// CutoutFits reports whether the driver cutout lies inside the front panel.
func (l Layout) CutoutFits() bool {
	front, ok := l.Panel(KindFront)
	if !ok || front.Cutout == nil {
		return true
	}
	return front.Rect.Contains(front.Cutout.Bounds())
}

// DriverOffsetCm returns the vertical offset of the driver center from the
// middle of a front panel of the given height. A 3D preview centered on the
// box uses this to place the driver at the same golden-ratio point as the
// drawing.
func DriverOffsetCm(heightCm float64) float64 {
	return heightCm*DriverHeightRatio - heightCm/2
}

// FormatNumber renders v as the shortest decimal text that round-trips,
// the number format used throughout the drawing.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
