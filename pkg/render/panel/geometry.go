package panel

// Point is a position on the sheet in millimeters. Y grows upward.
type Point struct {
	X, Y float64
}

// Segment is a straight cut line.
type Segment struct {
	From, To Point
}

// Rect is an axis-aligned rectangle in millimeters.
type Rect struct {
	Left, Bottom, Right, Top float64
}

func (r Rect) Width() float64   { return r.Right - r.Left }
func (r Rect) Height() float64  { return r.Top - r.Bottom }
func (r Rect) CenterX() float64 { return (r.Left + r.Right) / 2 }
func (r Rect) CenterY() float64 { return (r.Bottom + r.Top) / 2 }

// Edges returns the outline as four segments traced counter-clockwise from
// the bottom-left corner: bottom, right, top, left.
func (r Rect) Edges() [4]Segment {
	bl := Point{r.Left, r.Bottom}
	br := Point{r.Right, r.Bottom}
	tr := Point{r.Right, r.Top}
	tl := Point{r.Left, r.Top}
	return [4]Segment{
		{From: bl, To: br},
		{From: br, To: tr},
		{From: tr, To: tl},
		{From: tl, To: bl},
	}
}

// Union returns the smallest rectangle containing r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		Left:   min(r.Left, o.Left),
		Bottom: min(r.Bottom, o.Bottom),
		Right:  max(r.Right, o.Right),
		Top:    max(r.Top, o.Top),
	}
}

// Intersects reports whether r and o share positive area. Touching edges do
// not count.
func (r Rect) Intersects(o Rect) bool {
	return r.Left < o.Right && o.Left < r.Right && r.Bottom < o.Top && o.Bottom < r.Top
}

// Contains reports whether o lies entirely within r.
func (r Rect) Contains(o Rect) bool {
	return o.Left >= r.Left && o.Right <= r.Right && o.Bottom >= r.Bottom && o.Top <= r.Top
}

// Circle is a round cutout.
type Circle struct {
	Center Point
	Radius float64
}

// Bounds returns the square circumscribing the circle.
func (c Circle) Bounds() Rect {
	return Rect{
		Left:   c.Center.X - c.Radius,
		Bottom: c.Center.Y - c.Radius,
		Right:  c.Center.X + c.Radius,
		Top:    c.Center.Y + c.Radius,
	}
}
