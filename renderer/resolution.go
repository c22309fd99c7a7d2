package renderer

import "math"

// Resolution sizes a field for a viewW×viewH view: the shorter side gets
// resolution texels and the longer side keeps the view's aspect.
func Resolution(viewW, viewH, resolution int) (w, h int) {
	if viewW <= 0 || viewH <= 0 {
		return resolution, resolution
	}
	aspect := float64(viewW) / float64(viewH)
	if aspect < 1 {
		aspect = 1 / aspect
	}
	lo := int(math.Round(float64(resolution)))
	hi := int(math.Round(float64(resolution) * aspect))
	if viewW > viewH {
		return hi, lo
	}
	return lo, hi
}
