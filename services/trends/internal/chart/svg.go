package chart

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"time"

	"github.com/aclements/go-gg/gg"
	"github.com/aclements/go-gg/table"
	svg "github.com/ajstarks/svgo"
)

var lineColor = color.RGBA{R: 70, G: 130, B: 180, A: 255}

// WriteSVG renders spec as a standalone SVG document. An empty spec
// produces a labelled blank frame.
func WriteSVG(w io.Writer, spec Spec, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid chart size %dx%d", width, height)
	}
	if spec.Empty() {
		return writeBlank(w, spec, width, height)
	}

	origin := time.Date(spec.XMin.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)

	xs := make([]float64, len(spec.Points))
	ys := make([]float64, len(spec.Points))
	tips := make([]string, len(spec.Points))
	for i, pt := range spec.Points {
		xs[i] = monthOffset(origin, pt.Date)
		ys[i] = pt.Value
		tips[i] = pt.Tooltip
	}
	tab := new(table.Builder).
		Add("month", xs).
		Add("value", ys).
		Add("tooltip", tips).
		Done()

	x := gg.NewLinearScaler().
		SetMin(monthOffset(origin, spec.XMin)).
		SetMax(monthOffset(origin, spec.XMax))
	x.SetFormatter(monthTickFormatter(origin))

	plot := gg.NewPlot(tab)
	plot.SetScale("x", x)
	plot.SetScale("y", gg.NewLinearScaler().SetMin(0).SetMax(spec.YMax))

	plot.Add(
		gg.Title(spec.Title),
		gg.AxisLabel("x", spec.XLabel),
		gg.AxisLabel("y", spec.YLabel),
		gg.LayerLines{X: "month", Y: "value", Color: plot.Const(lineColor)},
		gg.LayerPoints{X: "month", Y: "value", Color: plot.Const(lineColor)},
		gg.LayerTooltips{X: "month", Y: "value", Label: "tooltip"},
	)

	return plot.WriteSVG(w, width, height)
}

// monthOffset positions t as fractional months after origin.
func monthOffset(origin, t time.Time) float64 {
	months := (t.Year()-origin.Year())*12 + int(t.Month()) - 1
	days := time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	return float64(months) + float64(t.Day()-1)/float64(days)
}

// monthTickFormatter labels whole-month ticks with the month name, or the
// year for January. Ticks between months are left blank.
func monthTickFormatter(origin time.Time) func(float64) string {
	return func(x float64) string {
		n := math.Round(x)
		if math.Abs(x-n) > 1e-9 {
			return ""
		}
		t := origin.AddDate(0, int(n), 0)
		if t.Month() == time.January {
			return t.Format("2006")
		}
		return t.Format("Jan")
	}
}

func writeBlank(w io.Writer, spec Spec, width, height int) error {
	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, "fill:white;stroke:#ccc")
	if spec.Title != "" {
		canvas.Text(width/2, 24, spec.Title, "text-anchor:middle;font-family:sans-serif;font-size:14px")
	}
	canvas.Text(width/2, height/2, "No postings match the selection", "text-anchor:middle;font-family:sans-serif;fill:#888")
	canvas.Text(width/2, height-8, spec.XLabel, "text-anchor:middle;font-family:sans-serif;font-size:12px")
	canvas.End()
	return ew.err
}

// errWriter keeps the first write error so svgo's void methods can be
// checked once at the end.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}
