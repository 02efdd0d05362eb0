package extent

import (
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ecospace/sdmgo/pkg/errors"
)

// Plot renders the AUC-vs-extent diagram for one species to path (format by
// file extension, e.g. .png or .pdf): observed points, the fitted curve when
// one exists, and a vertical marker at the chosen extent. Purely
// observational; it has no effect on selection.
func Plot(path string, extents, aucs []float64, sel Selection) error {
	if len(extents) != len(aucs) {
		return errors.NewDimensionError("extent plot", len(extents), len(aucs))
	}

	pts := make(plotter.XYs, 0, len(extents))
	minAUC, maxAUC := math.Inf(1), math.Inf(-1)
	for i := range extents {
		if math.IsNaN(extents[i]) || math.IsNaN(aucs[i]) {
			continue
		}
		pts = append(pts, plotter.XY{X: extents[i], Y: aucs[i]})
		minAUC = math.Min(minAUC, aucs[i])
		maxAUC = math.Max(maxAUC, aucs[i])
	}
	if len(pts) == 0 {
		return errors.NewValueError("extent plot", "no populated extents")
	}

	p := plot.New()
	p.Title.Text = "AUC vs background extent"
	p.X.Label.Text = "extent (km)"
	p.Y.Label.Text = "AUC"

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return errors.Wrap(err, "extent plot")
	}
	p.Add(scatter)
	p.Legend.Add("observed", scatter)

	if sel.Curve != nil {
		fitted := plotter.NewFunction(sel.Curve.Eval)
		p.Add(fitted)
		p.Legend.Add(sel.Curve.Name(), fitted)
	}

	marker, err := plotter.NewLine(plotter.XYs{
		{X: sel.Extent, Y: minAUC},
		{X: sel.Extent, Y: maxAUC},
	})
	if err != nil {
		return errors.Wrap(err, "extent plot")
	}
	marker.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	p.Add(marker)
	p.Legend.Add("selected extent", marker)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrap(err, "extent plot")
	}
	return nil
}
