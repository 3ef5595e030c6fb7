package analysis

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/sells-group/cts-trends/internal/crime"
)

// TrendPoint is one year's deviation from each group's linear trend.
// Positive values mean more crime than the trend line predicts.
type TrendPoint struct {
	Year      int   `json:"year" yaml:"year"`
	Treatment Value `json:"cts_diff" yaml:"cts_diff"`
	Control   Value `json:"control_diff" yaml:"control_diff"`
}

// LinearFit is an ordinary-least-squares line value = Slope*year + Intercept.
type LinearFit struct {
	Slope     float64 `json:"slope" yaml:"slope"`
	Intercept float64 `json:"intercept" yaml:"intercept"`
}

// At evaluates the fitted line.
func (f LinearFit) At(x float64) float64 { return f.Slope*x + f.Intercept }

// FitLine fits an OLS line through (xs[i], ys[i]).
func FitLine(xs, ys []float64) LinearFit {
	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	return LinearFit{Slope: slope, Intercept: intercept}
}

// TrendResiduals fits a line through each group's yearly violent-crime totals
// and reports actual minus fitted for every year, one decimal.
func TrendResiduals(g Groups) []TrendPoint {
	years := crime.Years()
	xs := make([]float64, len(years))
	for i, y := range years {
		xs[i] = float64(y)
	}

	cts := residuals(xs, toFloats(crime.Series(g.Treatment, crime.ViolentTypes)))
	ctl := residuals(xs, toFloats(crime.Series(g.Control, crime.ViolentTypes)))

	out := make([]TrendPoint, len(years))
	for i, y := range years {
		out[i] = TrendPoint{
			Year:      y,
			Treatment: Value(round1(cts[i])),
			Control:   Value(round1(ctl[i])),
		}
	}
	return out
}

func residuals(xs, ys []float64) []float64 {
	fit := FitLine(xs, ys)
	fitted := make([]float64, len(xs))
	for i, x := range xs {
		fitted[i] = fit.At(x)
	}
	return floats.SubTo(make([]float64, len(ys)), ys, fitted)
}

func toFloats(in []int) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}
