package carecircle

import "math"

// Geometry describes the canvas the circle is drawn on, in logical units.
type Geometry struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	CenterX float64 `json:"center_x"`
	CenterY float64 `json:"center_y"`
	Radius  float64 `json:"radius"`
}

// DefaultGeometry is a 600x600 canvas with a radius of 250 around (300,300).
var DefaultGeometry = Geometry{Width: 600, Height: 600, CenterX: 300, CenterY: 300, Radius: 250}

// NewGeometry centers a circle of the given radius on a width x height canvas.
func NewGeometry(width, height, radius float64) Geometry {
	return Geometry{Width: width, Height: height, CenterX: width / 2, CenterY: height / 2, Radius: radius}
}

// Point is a position on the canvas.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LayoutPoint pairs a provider with its computed position.
type LayoutPoint struct {
	Provider CareProvider `json:"provider"`
	Point
}

// PointAt returns the position of item i of n. Item 0 sits at 12 o'clock and the
// rest follow clockwise at equal angular spacing.
func PointAt(i, n int, g Geometry) Point {
	if n <= 0 {
		return Point{X: g.CenterX, Y: g.CenterY}
	}
	deg := float64(i)*360/float64(n) - 90
	rad := deg * math.Pi / 180
	return Point{
		X: g.CenterX + g.Radius*math.Cos(rad),
		Y: g.CenterY + g.Radius*math.Sin(rad),
	}
}

// RadialLayout places every provider on the circle in sequence order.
// Cards may overlap once the arc spacing is narrower than a card.
func RadialLayout(providers []CareProvider, g Geometry) []LayoutPoint {
	points := make([]LayoutPoint, 0, len(providers))
	for i, p := range providers {
		points = append(points, LayoutPoint{Provider: p, Point: PointAt(i, len(providers), g)})
	}
	return points
}
