// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// Float32ToInt16 quantizes a normalized sample to signed 16-bit PCM.
// x is clamped to [-1,1]; negative values scale by 32768 and the rest by
// 32767 so both ends of the range are reachable. NaN maps to silence.
func Float32ToInt16(x float32) int16 {
	switch {
	case x != x: // NaN
		return 0
	case x >= 1:
		return math.MaxInt16
	case x <= -1:
		return math.MinInt16
	case x < 0:
		return int16(math.Round(float64(x) * 32768))
	default:
		return int16(math.Round(float64(x) * 32767))
	}
}

// Int16ToFloat32 is the inverse of Float32ToInt16.
func Int16ToFloat32(v int16) float32 {
	if v < 0 {
		return float32(v) / 32768
	}
	return float32(v) / 32767
}
