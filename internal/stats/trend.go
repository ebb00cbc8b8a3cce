package stats

import (
	"math"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// Trend is an ordinary least squares line.
type Trend struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// LinearTrend fits values against their indices 0..n-1. With fewer than two values
// the slope is 0 and the intercept is the single value (or 0).
func LinearTrend(values []float64) Trend {
	pts := make([]XY, len(values))
	for i, v := range values {
		pts[i] = XY{X: float64(i), Y: v}
	}
	r := Fit(pts)
	return Trend{Slope: r.Slope, Intercept: r.Intercept}
}

// Regression is a fitted line with its coefficient of determination.
type Regression struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	R2        float64 `json:"r2"`
	N         int     `json:"n"`
}

func (r Regression) Predict(x float64) float64 {
	return r.Intercept + r.Slope*x
}

// Fit runs least squares over pts. Every division is guarded: a zero denominator
// yields slope 0, and constant data has R² 1.
func Fit(pts []XY) Regression {
	n := len(pts)
	if n == 0 {
		return Regression{}
	}
	if n < 2 {
		return Regression{Intercept: pts[0].Y, N: 1}
	}

	var sumX, sumY, sumXY, sumX2 float64
	for _, p := range pts {
		sumX += p.X
		sumY += p.Y
		sumXY += p.X * p.Y
		sumX2 += p.X * p.X
	}
	fn := float64(n)
	r := Regression{N: n}
	denom := fn*sumX2 - sumX*sumX
	if denom != 0 {
		r.Slope = (fn*sumXY - sumX*sumY) / denom
	}
	r.Intercept = (sumY - r.Slope*sumX) / fn

	mean := sumY / fn
	var ssTot, ssRes float64
	for _, p := range pts {
		ssTot += (p.Y - mean) * (p.Y - mean)
		d := p.Y - r.Predict(p.X)
		ssRes += d * d
	}
	if ssTot == 0 {
		r.R2 = 1
	} else {
		r.R2 = math.Max(0, 1-ssRes/ssTot)
	}
	return r
}

// ForecastPoint is one projected week.
type ForecastPoint struct {
	WeekOffset int     `json:"weekOffset"`
	Predicted  float64 `json:"predictedValue"`
}

// Forecast is a projection. When Insufficient is set Points is empty and Reason says why.
type Forecast struct {
	Points       []ForecastPoint `json:"points"`
	Trend        Trend           `json:"trend"`
	R2           float64         `json:"r2"`
	Insufficient bool            `json:"insufficient,omitempty"`
	Reason       string          `json:"reason,omitempty"`
}

// ForecastValues projects values weeksAhead steps past their end. Predictions are
// rounded and never negative.
func ForecastValues(values []float64, weeksAhead int) Forecast {
	if len(values) < 2 {
		return Forecast{Points: []ForecastPoint{}, Insufficient: true, Reason: "Not enough data"}
	}
	pts := make([]XY, len(values))
	for i, v := range values {
		pts[i] = XY{X: float64(i), Y: v}
	}
	reg := Fit(pts)
	f := Forecast{
		Points: make([]ForecastPoint, 0, max(weeksAhead, 0)),
		Trend:  Trend{Slope: reg.Slope, Intercept: reg.Intercept},
		R2:     reg.R2,
	}
	n := len(values)
	for i := 1; i <= weeksAhead; i++ {
		p := math.Max(0, reg.Predict(float64(n+i-1)))
		f.Points = append(f.Points, ForecastPoint{WeekOffset: i, Predicted: roundHalfUp(p)})
	}
	return f
}

// VolumeForecast projects the weekly volume series of the last weeks weeks.
func VolumeForecast(history []models.Session, weeksAhead, weeks int, now time.Time) Forecast {
	return ForecastValues(Values(WeeklyVolumeSeries(history, weeks, now)), weeksAhead)
}

// MaxWeeklyGain is the compounding weekly gain ceiling applied to progression forecasts.
const MaxWeeklyGain = 0.04

// WeekWeight is one projected working weight.
type WeekWeight struct {
	Week   int     `json:"week"`
	Weight float64 `json:"weight"`
}

type Progression struct {
	Weeks        []WeekWeight `json:"weeks"`
	R2           float64      `json:"r2"`
	Insufficient bool         `json:"insufficient,omitempty"`
	Reason       string       `json:"reason,omitempty"`
}

// ProgressionForecast projects working weight from per-session points. Each week's
// prediction is clamped at 0, rounded to the nearest 2.5, and then capped at
// lastWeight*(1+0.04*week).
func ProgressionForecast(points []XY, weeksAhead int) Progression {
	if len(points) < 2 {
		return Progression{Weeks: []WeekWeight{}, Insufficient: true, Reason: "Not enough data"}
	}
	reg := Fit(points)
	last := points[len(points)-1]
	out := Progression{Weeks: make([]WeekWeight, 0, max(weeksAhead, 0)), R2: reg.R2}
	for i := 1; i <= weeksAhead; i++ {
		p := math.Max(0, reg.Predict(last.X+float64(i)))
		p = roundTo(p, 2.5)
		// Cents rounding only strips float noise such as 112.00000000000001.
		ceiling := math.Round(last.Y*(1+MaxWeeklyGain*float64(i))*100) / 100
		out.Weeks = append(out.Weeks, WeekWeight{Week: i, Weight: math.Max(0, math.Min(p, ceiling))})
	}
	return out
}
