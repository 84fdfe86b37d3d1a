package groups

import (
	"fmt"
	"io"
	"math"
	"sort"

	"tradestats/domain/core"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// PlotFormat selects the image encoding of PlotDistributions.
type PlotFormat string

const (
	PlotSVG PlotFormat = "svg"
	PlotPNG PlotFormat = "png"
)

// PlotOptions configures PlotDistributions. Zero values take the defaults of
// DefaultPlotOptions, except Density which is honoured as given.
type PlotOptions struct {
	LabelA  string
	LabelB  string
	XLabel  string
	Title   string
	Density bool
	Format  PlotFormat
	Width   int
	Height  int
}

// DefaultPlotOptions returns density-normalised 900x600 SVG options.
func DefaultPlotOptions() PlotOptions {
	return PlotOptions{
		LabelA:  DefaultLabelA,
		LabelB:  DefaultLabelB,
		XLabel:  "Value",
		Title:   "Distribution of Values by Category",
		Density: true,
		Format:  PlotSVG,
		Width:   900,
		Height:  600,
	}
}

func (o PlotOptions) withDefaults() PlotOptions {
	d := DefaultPlotOptions()
	if o.LabelA == "" {
		o.LabelA = d.LabelA
	}
	if o.LabelB == "" {
		o.LabelB = d.LabelB
	}
	if o.XLabel == "" {
		o.XLabel = d.XLabel
	}
	if o.Title == "" {
		o.Title = d.Title
	}
	if o.Format == "" {
		o.Format = d.Format
	}
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	return o
}

var (
	colorGroupA = drawing.Color{R: 0, G: 114, B: 206, A: 204}
	colorGroupB = drawing.Color{R: 204, G: 0, B: 0, A: 102}
	colorEdge   = drawing.Color{R: 255, G: 255, B: 255, A: 255}
)

// Histogram is one group's binned distribution. Heights[i] covers
// [Edges[i], Edges[i+1]).
type Histogram struct {
	Edges   []float64
	Heights []float64
}

// BinCount is floor(sqrt(nA+nB)), never less than one.
func BinCount(nA, nB int) int {
	bins := int(math.Sqrt(float64(nA + nB)))
	if bins < 1 {
		bins = 1
	}
	return bins
}

// Histograms bins both groups over shared edges spanning their combined range.
func (a *Analysis) Histograms(density bool) (Histogram, Histogram) {
	edges := binEdges(a.groupA, a.groupB, BinCount(len(a.groupA), len(a.groupB)))
	return histogram(a.groupA, edges, density), histogram(a.groupB, edges, density)
}

func binEdges(groupA, groupB []float64, bins int) []float64 {
	lo := math.Min(floats.Min(groupA), floats.Min(groupB))
	hi := math.Max(floats.Max(groupA), floats.Max(groupB))
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	edges := floats.Span(make([]float64, bins+1), lo, hi)
	// stat.Histogram treats the last divider as exclusive.
	edges[bins] = math.Nextafter(hi, math.Inf(1))
	return edges
}

func histogram(data, edges []float64, density bool) Histogram {
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)

	heights := stat.Histogram(nil, edges, sorted, nil)
	if density {
		n := float64(len(data))
		for i := range heights {
			heights[i] /= n * (edges[i+1] - edges[i])
		}
	}
	return Histogram{Edges: edges, Heights: heights}
}

// outline turns bins into the closed step polygon go-chart fills as bars.
func (h Histogram) outline() (xs, ys []float64) {
	xs = append(xs, h.Edges[0])
	ys = append(ys, 0)
	for i, height := range h.Heights {
		xs = append(xs, h.Edges[i], h.Edges[i+1])
		ys = append(ys, height, height)
	}
	xs = append(xs, h.Edges[len(h.Edges)-1])
	ys = append(ys, 0)
	return xs, ys
}

// PlotDistributions draws overlaid histograms of both groups to w, annotated
// with the p-value, primary statistic and effect size of the preferred result.
// w is the rendering surface; the caller owns it and must close it. The
// analysis itself is not modified.
func (a *Analysis) PlotDistributions(w io.Writer, opts PlotOptions) error {
	r, err := a.Result()
	if err != nil {
		return err
	}
	opts = opts.withDefaults()

	histA, histB := a.Histograms(opts.Density)
	xsA, ysA := histA.outline()
	xsB, ysB := histB.outline()

	top := math.Max(floats.Max(histA.Heights), floats.Max(histB.Heights))
	if top == 0 {
		top = 1
	}
	left := histA.Edges[0]

	yName := "Count"
	if opts.Density {
		yName = "Density"
	}

	graph := chart.Chart{
		Title:  opts.Title,
		Width:  opts.Width,
		Height: opts.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{Name: opts.XLabel},
		YAxis: chart.YAxis{
			Name:  yName,
			Range: &chart.ContinuousRange{Min: 0, Max: top * 1.25},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    opts.LabelA,
				Style:   chart.Style{StrokeColor: colorEdge, FillColor: colorGroupA, StrokeWidth: 1},
				XValues: xsA,
				YValues: ysA,
			},
			chart.ContinuousSeries{
				Name:    opts.LabelB,
				Style:   chart.Style{StrokeColor: colorEdge, FillColor: colorGroupB, StrokeWidth: 1},
				XValues: xsB,
				YValues: ysB,
			},
			chart.AnnotationSeries{
				Annotations: []chart.Value2{
					{XValue: left, YValue: top * 1.2, Label: fmt.Sprintf("p-value: %.3f", r.PValue())},
					{XValue: left, YValue: top * 1.1, Label: fmt.Sprintf("%s: %.3f", r.StatisticLabel(), r.Statistic())},
					{XValue: left, YValue: top * 1.0, Label: fmt.Sprintf("%s = %.3f", r.EffectSizeLabel(), r.EffectSize())},
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	switch opts.Format {
	case PlotSVG:
		err = graph.Render(chart.SVG, w)
	case PlotPNG:
		err = graph.Render(chart.PNG, w)
	default:
		return core.NewInvalidInputError("format", fmt.Sprintf("unsupported plot format %q", opts.Format))
	}
	if err != nil {
		return fmt.Errorf("render distribution plot: %w", err)
	}
	return nil
}
