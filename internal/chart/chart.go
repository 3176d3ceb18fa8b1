package chart

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/volatiletech/null/v8"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"student-insights/internal/model"
)

// ErrNoChart is returned for results that have nothing to draw.
var ErrNoChart = errors.New("result has no chart form")

const (
	width  = 8 * vg.Inch
	height = 5 * vg.Inch
)

// Render draws the result as a PNG image.
func Render(w io.Writer, result model.Result) error {
	p, err := build(result)
	if err != nil {
		return err
	}
	p.Title.Text = result.Title
	p.Title.TextStyle.Font.Size = vg.Points(14)

	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

func build(result model.Result) (*plot.Plot, error) {
	switch d := result.Data.(type) {
	case model.Frequencies:
		labels, values := make([]string, len(d.Items)), make([]float64, len(d.Items))
		for i, it := range d.Items {
			labels[i] = it.Value
			if d.Normalized {
				values[i] = orZero(it.Percent)
			} else {
				values[i] = float64(it.Count)
			}
		}
		yLabel := "Students"
		if d.Normalized {
			yLabel = "Percent"
		}
		return bars(labels, values, string(d.Field), yLabel)

	case model.GroupMeans:
		labels, values := make([]string, len(d.Items)), make([]float64, len(d.Items))
		for i, it := range d.Items {
			labels[i], values[i] = it.Group, orZero(it.Mean)
		}
		return bars(labels, values, string(d.GroupField), "Mean "+string(d.ValueField))

	case model.GroupFrequencies:
		var series []string
		seen := make(map[string]bool)
		for _, g := range d.Groups {
			for _, it := range g.Items {
				if !seen[it.Value] {
					seen[it.Value] = true
					series = append(series, it.Value)
				}
			}
		}
		series = model.OrderValues(d.ValueField, series)
		groups := make([]string, len(d.Groups))
		for i, g := range d.Groups {
			groups[i] = g.Group
		}
		return groupedBars(groups, series, string(d.GroupField), "Percent", func(g, s int) float64 {
			for _, it := range d.Groups[g].Items {
				if it.Value == series[s] {
					return orZero(it.Percent)
				}
			}
			return 0
		})

	case model.Hierarchy:
		labels := make([]string, len(d.Root.Children))
		values := make([]float64, len(d.Root.Children))
		for i, c := range d.Root.Children {
			labels[i], values[i] = c.Label, float64(c.Value)
		}
		x := ""
		if len(d.Fields) > 0 {
			x = string(d.Fields[0])
		}
		return bars(labels, values, x, "Students")

	case model.AttendanceImpact:
		labels, values := make([]string, len(d.Bins)), make([]float64, len(d.Bins))
		for i, b := range d.Bins {
			labels[i], values[i] = b.Label, orZero(b.MeanFinal)
		}
		return bars(labels, values, "Attendance", "Mean "+string(model.FieldFinal))

	case model.EducationPerformance:
		labels, values := make([]string, len(d.Items)), make([]float64, len(d.Items))
		for i, it := range d.Items {
			labels[i], values[i] = it.Level, orZero(it.MeanTotal)
		}
		return bars(labels, values, string(model.FieldParentEducation), "Mean "+string(model.FieldTotal))

	case model.Scatter:
		return scatter(d)

	case model.Trend:
		p := plot.New()
		p.X.Label.Text = string(d.XField)
		p.Y.Label.Text = string(d.YField)
		p.Add(plotter.NewGrid())
		line, err := trendLine(d)
		if err != nil {
			return nil, err
		}
		line.Color = plotutil.Color(0)
		p.Add(line)
		label := "trend"
		if d.R.Valid {
			label = fmt.Sprintf("trend r=%.3f", d.R.Float64)
		}
		p.Legend.Add(label, line)
		return p, nil

	case model.ScoreComponents:
		return boxes(d)

	case model.Improvement:
		deltas := make(plotter.Values, len(d.Rows))
		for i, r := range d.Rows {
			deltas[i] = r.Delta
		}
		if len(deltas) == 0 {
			return nil, ErrNoChart
		}
		p := plot.New()
		h, err := plotter.NewHist(deltas, 20)
		if err != nil {
			return nil, err
		}
		p.Add(h)
		p.X.Label.Text = "Final - Midterm"
		p.Y.Label.Text = "Students"
		return p, nil

	case model.CrossTab:
		return crossTabHeat(d)

	case model.InternetAccess:
		ct := d.Shares
		return groupedBars(ct.Rows, ct.Cols, string(ct.RowField), "Percent", func(g, s int) float64 {
			if ct.Percent == nil {
				return float64(ct.Counts[g][s])
			}
			return orZero(ct.Percent[g][s])
		})

	case model.IndependenceTest:
		return crossTabHeat(d.Table)

	case model.CorrelationMatrix:
		names := make([]string, len(d.Fields))
		for i, f := range d.Fields {
			names[i] = string(f)
		}
		z := make([][]float64, len(d.Fields))
		for i := range d.Values {
			z[i] = make([]float64, len(d.Fields))
			for j, v := range d.Values[i] {
				z[i][j] = math.NaN()
				if v.Valid {
					z[i][j] = v.Float64
				}
			}
		}
		return heat(z, names, names, -1, 1)
	}
	return nil, ErrNoChart
}

func orZero(v null.Float64) float64 {
	if !v.Valid {
		return 0
	}
	return v.Float64
}

func bars(labels []string, values []float64, xLabel, yLabel string) (*plot.Plot, error) {
	if len(values) == 0 {
		return nil, ErrNoChart
	}
	p := plot.New()
	b, err := plotter.NewBarChart(plotter.Values(values), vg.Points(20))
	if err != nil {
		return nil, err
	}
	b.LineStyle.Width = vg.Length(0)
	b.Color = plotutil.Color(0)
	p.Add(b)
	p.NominalX(labels...)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.X.Tick.Label.XAlign = draw.XCenter
	return p, nil
}

func groupedBars(groups, series []string, xLabel, yLabel string, value func(g, s int) float64) (*plot.Plot, error) {
	if len(groups) == 0 || len(series) == 0 {
		return nil, ErrNoChart
	}
	p := plot.New()
	w := vg.Points(12)
	for s, name := range series {
		values := make(plotter.Values, len(groups))
		for g := range groups {
			values[g] = value(g, s)
		}
		b, err := plotter.NewBarChart(values, w)
		if err != nil {
			return nil, err
		}
		b.LineStyle.Width = vg.Length(0)
		b.Color = plotutil.Color(s)
		b.Offset = w * vg.Length(float64(s)-float64(len(series)-1)/2)
		p.Add(b)
		p.Legend.Add(name, b)
	}
	p.Legend.Top = true
	p.NominalX(groups...)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	return p, nil
}

func scatter(d model.Scatter) (*plot.Plot, error) {
	if len(d.Points) == 0 {
		return nil, ErrNoChart
	}
	p := plot.New()
	p.X.Label.Text = string(d.XField)
	p.Y.Label.Text = string(d.YField)
	p.Add(plotter.NewGrid())

	for i, grade := range d.Grades {
		var pts plotter.XYs
		for _, pt := range d.Points {
			if pt.Grade == grade {
				pts = append(pts, plotter.XY{X: pt.X, Y: pt.Y})
			}
		}
		if len(pts) == 0 {
			continue
		}
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, err
		}
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		s.GlyphStyle.Color = plotutil.Color(i)
		s.GlyphStyle.Radius = vg.Points(3)
		p.Add(s)
		p.Legend.Add(grade, s)
	}

	if tr := d.Trend; tr != nil {
		line, err := trendLine(*tr)
		if err != nil {
			return nil, err
		}
		line.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
		p.Add(line)
		p.Legend.Add("trend", line)
	}
	return p, nil
}

func trendLine(tr model.Trend) (*plotter.Line, error) {
	line, err := plotter.NewLine(plotter.XYs{
		{X: tr.Line[0].X, Y: tr.Line[0].Y},
		{X: tr.Line[1].X, Y: tr.Line[1].Y},
	})
	if err != nil {
		return nil, err
	}
	line.Width = vg.Points(2)
	return line, nil
}

func boxes(d model.ScoreComponents) (*plot.Plot, error) {
	p := plot.New()
	var names []string
	for _, c := range d.Components {
		if len(c.Values) == 0 {
			continue
		}
		b, err := plotter.NewBoxPlot(vg.Points(30), float64(len(names)), plotter.Values(c.Values))
		if err != nil {
			return nil, err
		}
		b.FillColor = plotutil.Color(len(names))
		p.Add(b)
		names = append(names, string(c.Component))
	}
	if len(names) == 0 {
		return nil, ErrNoChart
	}
	p.NominalX(names...)
	p.Y.Label.Text = "Score"
	return p, nil
}

func crossTabHeat(ct model.CrossTab) (*plot.Plot, error) {
	z := make([][]float64, len(ct.Rows))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range ct.Rows {
		z[i] = make([]float64, len(ct.Cols))
		for j := range ct.Cols {
			v := float64(ct.Counts[i][j])
			z[i][j] = v
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	return heat(z, ct.Cols, ct.Rows, lo, hi)
}

// grid adapts a row-major matrix to plotter.GridXYZ.
type grid struct {
	z [][]float64
}

func (g grid) Dims() (c, r int)   { return len(g.z[0]), len(g.z) }
func (g grid) Z(c, r int) float64 { return g.z[r][c] }
func (g grid) X(c int) float64    { return float64(c) }
func (g grid) Y(r int) float64    { return float64(r) }

func heat(z [][]float64, cols, rows []string, lo, hi float64) (*plot.Plot, error) {
	if len(rows) == 0 || len(cols) == 0 {
		return nil, ErrNoChart
	}
	if lo == hi {
		hi = lo + 1
	}
	p := plot.New()
	h := plotter.NewHeatMap(grid{z: z}, palette.Heat(12, 1))
	h.Min, h.Max = lo, hi
	h.NaN = plotutil.Color(6)
	p.Add(h)

	p.X.Tick.Marker = labelTicks(cols)
	p.Y.Tick.Marker = labelTicks(rows)
	return p, nil
}

func labelTicks(labels []string) plot.ConstantTicks {
	ticks := make(plot.ConstantTicks, len(labels))
	for i, l := range labels {
		ticks[i] = plot.Tick{Value: float64(i), Label: l}
	}
	return ticks
}
