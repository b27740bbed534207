package chart

import (
	"campusdash/models"
)

// Margin is the space kept around the plotting area for the axes, in pixels.
type Margin struct {
	Top, Right, Bottom, Left float64
}

var DefaultMargin = Margin{Top: 16, Right: 16, Bottom: 24, Left: 32}

const (
	// BandPadding is the inner and outer padding of the label axis, as a fraction of the step.
	BandPadding = 0.2
	// ValueTicks is the number of ticks asked of the value axis, the real count depends on the domain.
	ValueTicks = 5
)

type Bar struct {
	Label  string
	Value  float64
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Tick is one axis mark. Offset is measured along the axis from the start of the plotting area.
type Tick struct {
	Value  float64
	Label  string
	Offset float64
}

// Geometry is everything needed to draw a bar chart. Bar and tick coordinates are relative to the plotting area, which
// is translated by Margin inside a Width by Height frame.
type Geometry struct {
	Width      float64
	Height     float64
	PlotWidth  float64
	PlotHeight float64
	Margin     Margin
	Bars       []Bar
	XTicks     []Tick
	YTicks     []Tick
}

// Layout computes the bars and axes of points drawn into dims. It has no side effects and the same input always
// produces the same geometry.
func Layout(points []models.DataPoint, dims models.Dimensions) Geometry {
	m := DefaultMargin
	width := max(0, dims.Width)
	height := max(0, dims.Height)
	w := max(0, width-m.Left-m.Right)
	h := max(0, height-m.Top-m.Bottom)

	labels := make([]string, len(points))
	maxValue := 0.0
	for i, p := range points {
		labels[i] = p.Label
		maxValue = max(maxValue, p.Value)
	}

	x := NewBandScale(labels, 0, w, BandPadding)
	y := NewLinearScale(0, maxValue, h, 0)

	g := Geometry{
		Width:      width,
		Height:     height,
		PlotWidth:  w,
		PlotHeight: h,
		Margin:     m,
		Bars:       make([]Bar, 0, len(points)),
	}

	for _, p := range points {
		bx, _ := x.Position(p.Label)
		by := y.Scale(p.Value)
		g.Bars = append(g.Bars, Bar{
			Label:  p.Label,
			Value:  p.Value,
			X:      bx,
			Y:      by,
			Width:  x.Bandwidth(),
			Height: h - by,
		})
	}

	for _, label := range x.Domain() {
		bx, _ := x.Position(label)
		g.XTicks = append(g.XTicks, Tick{Label: label, Offset: bx + x.Bandwidth()/2})
	}

	for _, v := range y.Ticks(ValueTicks) {
		g.YTicks = append(g.YTicks, Tick{Value: v, Label: FormatTick(v), Offset: y.Scale(v)})
	}

	return g
}
