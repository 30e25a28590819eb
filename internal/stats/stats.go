// Package stats holds the numeric helpers shared by the generators.
package stats

import (
	"math"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	appErrors "github.com/unclebandit/creditsim/internal/errors"
)

// Standardize returns (x - mean) / std for every element, using the sample
// standard deviation of x itself. Columns with fewer than two values or zero
// variance have no z-score and are reported as an error.
func Standardize(column string, x []float64) ([]float64, error) {
	if len(x) < 2 {
		return nil, appErrors.NewUndefinedStatistic(column, "need at least two values to standardize")
	}
	mean, std := stat.MeanStdDev(x, nil)
	if std == 0 || math.IsNaN(std) || math.IsInf(std, 0) {
		return nil, appErrors.NewUndefinedStatistic(column, "zero variance")
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v - mean) / std
	}
	return out, nil
}

// StandardizeInts is Standardize for integer columns.
func StandardizeInts(column string, x []int) ([]float64, error) {
	f := make([]float64, len(x))
	for i, v := range x {
		f[i] = float64(v)
	}
	return Standardize(column, f)
}

func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func Sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Round rounds half away from zero to the given number of decimal places.
func Round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// Mean of x; zero for an empty slice.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return stat.Mean(x, nil)
}
