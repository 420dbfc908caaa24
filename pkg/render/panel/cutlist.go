package panel

// Part is one line of a cut list.
type Part struct {
	Name     string  `json:"name" yaml:"name"`
	WidthCm  float64 `json:"width_cm" yaml:"width_cm"`
	HeightCm float64 `json:"height_cm" yaml:"height_cm"`
	Quantity int     `json:"quantity" yaml:"quantity"`
}

// AreaCm2 returns the material area for all pieces of the part.
func (p Part) AreaCm2() float64 {
	return p.WidthCm * p.HeightCm * float64(p.Quantity)
}

// CutList returns the parts drawn on the sheet in drawing order. The back
// panel is not drawn and is therefore not listed.
func (l Layout) CutList() []Part {
	parts := make([]Part, 0, len(l.Panels))
	for _, p := range l.Panels {
		parts = append(parts, Part{
			Name:     p.Name,
			WidthCm:  p.WidthCm,
			HeightCm: p.HeightCm,
			Quantity: p.Quantity,
		})
	}
	return parts
}

// TotalAreaCm2 sums the material area of every drawn piece.
func (l Layout) TotalAreaCm2() float64 {
	var total float64
	for _, p := range l.CutList() {
		total += p.AreaCm2()
	}
	return total
}
