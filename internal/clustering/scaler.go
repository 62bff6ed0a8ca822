// Package clustering partitions incidents by their temporal features using
// standardized k-means and reports partition quality.
package clustering

import "gonum.org/v1/gonum/stat"

// Scaler standardizes features to zero mean and unit variance. It is fit
// fresh on every analysis; nothing is persisted between calls.
type Scaler struct {
	Mean  []float64
	Scale []float64
}

// FitScaler computes per-feature mean and population standard deviation.
// A constant feature keeps a scale of 1 so transforming never divides by
// zero.
func FitScaler(points [][]float64) *Scaler {
	if len(points) == 0 {
		return &Scaler{}
	}
	dims := len(points[0])
	s := &Scaler{
		Mean:  make([]float64, dims),
		Scale: make([]float64, dims),
	}

	column := make([]float64, len(points))
	for d := 0; d < dims; d++ {
		for i, p := range points {
			column[i] = p[d]
		}
		s.Mean[d] = stat.Mean(column, nil)
		s.Scale[d] = stat.PopStdDev(column, nil)
		if s.Scale[d] == 0 {
			s.Scale[d] = 1
		}
	}
	return s
}

// Transform returns the z-scored copy of points.
func (s *Scaler) Transform(points [][]float64) [][]float64 {
	out := make([][]float64, len(points))
	for i, p := range points {
		row := make([]float64, len(p))
		for d, v := range p {
			row[d] = (v - s.Mean[d]) / s.Scale[d]
		}
		out[i] = row
	}
	return out
}

// InverseTransform maps a scaled point back to original feature units.
func (s *Scaler) InverseTransform(point []float64) []float64 {
	out := make([]float64, len(point))
	for d, v := range point {
		out[d] = v*s.Scale[d] + s.Mean[d]
	}
	return out
}
