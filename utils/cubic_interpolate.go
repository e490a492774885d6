// SPDX-License-Identifier: EPL-2.0

package utils

// CubicInterpolate evaluates the Catmull-Rom spline through four consecutive
// samples at x, the fractional position between y1 (x=0) and y2 (x=1).
func CubicInterpolate(y0, y1, y2, y3, x float32) float32 {
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2

	return ((a0*x+a1)*x+a2)*x + y1
}

// InterpolateFrame applies CubicInterpolate channel by channel to four
// consecutive interleaved frames, writing one frame to dst. Every slice must
// hold at least len(dst) samples.
func InterpolateFrame(dst, f0, f1, f2, f3 []float32, x float32) {
	f0, f1, f2, f3 = f0[:len(dst)], f1[:len(dst)], f2[:len(dst)], f3[:len(dst)]
	for c := range dst {
		dst[c] = CubicInterpolate(f0[c], f1[c], f2[c], f3[c], x)
	}
}
