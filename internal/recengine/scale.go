package recengine

// MinMaxScaler rescales a column to [0,1] using the column's own
// observed minimum and maximum. A constant column scales to all zeros;
// an empty column is a no-op.
type MinMaxScaler struct {
	Min    float64
	Max    float64
	fitted bool
}

// Fit records the observed range of values. Fitting on an empty column
// leaves the scaler unfitted, which makes Transform the identity.
func (s *MinMaxScaler) Fit(values []float64) {
	if len(values) == 0 {
		return
	}
	s.Min, s.Max = values[0], values[0]
	for _, v := range values[1:] {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.fitted = true
}

// Transform maps a value into [0,1] against the fitted range. Values in
// a constant column map to 0.
func (s *MinMaxScaler) Transform(v float64) float64 {
	if !s.fitted || s.Max == s.Min {
		if !s.fitted {
			return v
		}
		return 0
	}
	return (v - s.Min) / (s.Max - s.Min)
}

// Inverse maps a scaled value back into the original range, so 0 and 1
// reproduce the fitted min and max exactly.
func (s *MinMaxScaler) Inverse(v float64) float64 {
	if !s.fitted || s.Max == s.Min {
		if !s.fitted {
			return v
		}
		return s.Min
	}
	return s.Min + v*(s.Max-s.Min)
}

// FitTransform fits on the column and returns the scaled copy.
func (s *MinMaxScaler) FitTransform(values []float64) []float64 {
	s.Fit(values)
	if !s.fitted {
		return values
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = s.Transform(v)
	}
	return out
}
