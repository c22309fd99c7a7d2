package systems

import "math"

// clampFloat clamps a float32 value between min and max.
func clampFloat(v, minVal, maxVal float32) float32 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// wrapUnit wraps v into [0, 1).
func wrapUnit(v float64) float64 {
	return v - math.Floor(v)
}
