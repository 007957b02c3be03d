package main

import (
	"image/color"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/YuminosukeSato/sparsebayes/pkg/errors"
	"github.com/YuminosukeSato/sparsebayes/rvm"
)

const (
	plotWidth  = 8 * vg.Inch
	plotHeight = 5 * vg.Inch
)

// plotRegression draws the training data, the true function, the
// predictive mean with a two standard deviation band and the relevance
// vectors.
func plotRegression(path string, X, y, Xt, yt mat.Matrix, mean, variance *mat.VecDense, fm *rvm.FittedModel) error {
	p := plot.New()
	p.Title.Text = "Relevance vector regression"
	p.X.Label.Text = "x"
	p.Y.Label.Text = "t"

	n, _ := Xt.Dims()
	upper, lower := make(plotter.XYs, n), make(plotter.XYs, n)
	for i := 0; i < n; i++ {
		sd := 2 * math.Sqrt(variance.AtVec(i))
		upper[i] = plotter.XY{X: Xt.At(i, 0), Y: mean.AtVec(i) + sd}
		lower[i] = plotter.XY{X: Xt.At(i, 0), Y: mean.AtVec(i) - sd}
	}

	truth, err := plotter.NewLine(columnXYs(Xt, yt))
	if err != nil {
		return errors.Wrap(err, "true function")
	}
	truth.LineStyle.Color = color.Gray{Y: 128}
	truth.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	pred, err := plotter.NewLine(vectorXYs(Xt, mean))
	if err != nil {
		return errors.Wrap(err, "predictive mean")
	}
	pred.LineStyle.Color = plotutil.Color(0)
	pred.LineStyle.Width = vg.Points(1.5)

	band := make([]*plotter.Line, 0, 2)
	for _, xys := range []plotter.XYs{upper, lower} {
		l, err := plotter.NewLine(xys)
		if err != nil {
			return errors.Wrap(err, "predictive band")
		}
		l.LineStyle.Color = plotutil.Color(0)
		l.LineStyle.Dashes = []vg.Length{vg.Points(1), vg.Points(2)}
		band = append(band, l)
	}

	train, err := plotter.NewScatter(columnXYs(X, y))
	if err != nil {
		return errors.Wrap(err, "training data")
	}
	train.GlyphStyle.Radius = vg.Points(1.5)
	train.GlyphStyle.Color = color.Black

	p.Add(plotter.NewGrid(), truth, pred, band[0], band[1], train)
	p.Legend.Add("sinc", truth)
	p.Legend.Add("mean", pred)
	p.Legend.Add("±2σ", band[0])
	p.Legend.Add("training data", train)

	if len(fm.RelevanceIndices) > 0 {
		rv := make(plotter.XYs, len(fm.RelevanceIndices))
		for r, idx := range fm.RelevanceIndices {
			rv[r] = plotter.XY{X: X.At(idx, 0), Y: y.At(idx, 0)}
		}
		s, err := plotter.NewScatter(rv)
		if err != nil {
			return errors.Wrap(err, "relevance vectors")
		}
		s.GlyphStyle.Shape = draw.RingGlyph{}
		s.GlyphStyle.Radius = vg.Points(5)
		s.GlyphStyle.Color = plotutil.Color(1)
		p.Add(s)
		p.Legend.Add("relevance vectors", s)
	}

	return errors.Wrapf(p.Save(plotWidth, plotHeight, path), "failed to save plot %s", path)
}

// plotClassification draws the test points of the first two features split
// by predicted class, with glyphs scaled by confidence, and the relevance
// vectors taken from the training inputs.
func plotClassification(path string, X, prob, train mat.Matrix, fm *rvm.FittedModel) error {
	n, d := X.Dims()
	if d < 2 {
		return errors.NewValidationError("plot", "classification plots need at least two features", d)
	}

	p := plot.New()
	p.Title.Text = "Relevance vector classification"
	p.X.Label.Text = "x0"
	p.Y.Label.Text = "x1"

	var pos, neg plotter.XYs
	var posConf, negConf []float64
	for i := 0; i < n; i++ {
		pt := plotter.XY{X: X.At(i, 0), Y: X.At(i, 1)}
		if pr := prob.At(i, 0); pr > 0.5 {
			pos, posConf = append(pos, pt), append(posConf, pr)
		} else {
			neg, negConf = append(neg, pt), append(negConf, 1-pr)
		}
	}

	p.Add(plotter.NewGrid())
	for k, group := range []struct {
		name string
		xys  plotter.XYs
		conf []float64
	}{
		{"predicted 1", pos, posConf},
		{"predicted 0", neg, negConf},
	} {
		if len(group.xys) == 0 {
			continue
		}
		s, err := plotter.NewScatter(group.xys)
		if err != nil {
			return errors.Wrap(err, group.name)
		}
		c, conf := plotutil.Color(k), group.conf
		s.GlyphStyleFunc = func(i int) draw.GlyphStyle {
			return draw.GlyphStyle{Color: c, Shape: draw.CircleGlyph{}, Radius: vg.Points(1 + 4*conf[i]*conf[i])}
		}
		p.Add(s)
		p.Legend.Add(group.name, s)
	}

	if len(fm.RelevanceIndices) > 0 {
		rv := make(plotter.XYs, len(fm.RelevanceIndices))
		for r, idx := range fm.RelevanceIndices {
			rv[r] = plotter.XY{X: train.At(idx, 0), Y: train.At(idx, 1)}
		}
		s, err := plotter.NewScatter(rv)
		if err != nil {
			return errors.Wrap(err, "relevance vectors")
		}
		s.GlyphStyle.Shape = draw.CrossGlyph{}
		s.GlyphStyle.Radius = vg.Points(5)
		s.GlyphStyle.Color = color.Black
		p.Add(s)
		p.Legend.Add("relevance vectors", s)
	}

	return errors.Wrapf(p.Save(plotWidth, plotHeight, path), "failed to save plot %s", path)
}

func columnXYs(X, y mat.Matrix) plotter.XYs {
	n, _ := X.Dims()
	xys := make(plotter.XYs, n)
	for i := range xys {
		xys[i] = plotter.XY{X: X.At(i, 0), Y: y.At(i, 0)}
	}
	return xys
}

func vectorXYs(X mat.Matrix, v *mat.VecDense) plotter.XYs {
	n, _ := X.Dims()
	xys := make(plotter.XYs, n)
	for i := range xys {
		xys[i] = plotter.XY{X: X.At(i, 0), Y: v.AtVec(i)}
	}
	return xys
}
