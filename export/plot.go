package export

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// PlotSize is the edge length of saved images
var PlotSize = 6 * vg.Inch

/*
SavePlot renders the field as a scatter of its DoF support points in the x-y plane, colored by value
on a blue to red map. The image format follows the file extension (png, svg, pdf, ...).
*/
func (f *Field) SavePlot(path string) (err error) {
	if len(f.Points) == 0 {
		return fmt.Errorf("field %q has no points to plot", f.Title)
	}
	xys := make(plotter.XYs, len(f.Points))
	for i, p := range f.Points {
		xys[i].X, xys[i].Y = p[0], p[1]
	}
	var s *plotter.Scatter
	if s, err = plotter.NewScatter(xys); err != nil {
		return
	}
	cm := moreland.SmoothBlueRed()
	min, max := f.Range()
	if max > min {
		cm.SetMin(min)
		cm.SetMax(max)
	} else {
		cm.SetMin(min - 1)
		cm.SetMax(max + 1)
	}
	s.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		c, e := cm.At(f.Values[i])
		if e != nil {
			c = color.Black
		}
		return draw.GlyphStyle{Color: c, Radius: vg.Points(2), Shape: draw.CircleGlyph{}}
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s  [%.4g, %.4g]", f.Title, min, max)
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.Add(s)
	return p.Save(PlotSize, PlotSize, path)
}
