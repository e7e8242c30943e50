package forecast

import (
	"math"
	"time"
)

// observation is one aggregated (date, total sales volume) point.
type observation struct {
	date time.Time
	y    float64
}

// trendModel is a univariate forecaster: linear trend fit by least squares
// plus an additive day-of-week seasonal component from mean residuals.
// Interval bounds come from the residual standard deviation.
type trendModel struct {
	origin    time.Time
	intercept float64
	slope     float64
	seasonal  [7]float64
	sigma     float64
}

// fitTrendModel fits the trend and weekly seasonality to a series sorted by
// date. The series must be non-empty.
func fitTrendModel(series []observation) *trendModel {
	m := &trendModel{origin: series[0].date}

	n := float64(len(series))
	var sumX, sumY, sumXX, sumXY float64
	for _, obs := range series {
		x := m.dayIndex(obs.date)
		sumX += x
		sumY += obs.y
		sumXX += x * x
		sumXY += x * obs.y
	}

	denom := n*sumXX - sumX*sumX
	if denom != 0 {
		m.slope = (n*sumXY - sumX*sumY) / denom
	}
	m.intercept = (sumY - m.slope*sumX) / n

	// Weekly seasonality: mean detrended residual per weekday.
	var resSum, resCount [7]float64
	for _, obs := range series {
		dow := int(obs.date.Weekday())
		resSum[dow] += obs.y - (m.intercept + m.slope*m.dayIndex(obs.date))
		resCount[dow]++
	}
	for dow := range m.seasonal {
		if resCount[dow] > 0 {
			m.seasonal[dow] = resSum[dow] / resCount[dow]
		}
	}

	var ss float64
	for _, obs := range series {
		r := obs.y - m.point(obs.date)
		ss += r * r
	}
	m.sigma = math.Sqrt(ss / n)

	return m
}

func (m *trendModel) dayIndex(date time.Time) float64 {
	return date.Sub(m.origin).Hours() / 24
}

func (m *trendModel) point(date time.Time) float64 {
	return m.intercept + m.slope*m.dayIndex(date) + m.seasonal[int(date.Weekday())]
}

// predict returns the point estimate and its interval bounds for a date.
func (m *trendModel) predict(date time.Time) (yhat, lower, upper float64) {
	yhat = m.point(date)
	margin := 1.96 * m.sigma
	return yhat, yhat - margin, yhat + margin
}
