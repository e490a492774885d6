// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestCubicInterpolate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		y0, y1, y2, y3 float32
		x              float32
		want           float32
		tolerance      float32
	}{
		{"start returns y1", 0, 1, 2, 3, 0, 1, 0},
		{"end returns y2", 0, 1, 2, 3, 1, 2, 0},
		{"linear midpoint", 0, 1, 2, 3, 0.5, 1.5, 1e-6},
		{"linear quarter", 1, 2, 3, 4, 0.25, 2.25, 1e-6},
		{"negative ramp", -1, -0.5, 0.5, 1, 0.5, 0, 1e-6},
		{"constant", 0.3, 0.3, 0.3, 0.3, 0.7, 0.3, 1e-6},
		{"waveform peak", 0.5, 0.9, 0.7, 0.3, 0.3, 0.85, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := CubicInterpolate(tt.y0, tt.y1, tt.y2, tt.y3, tt.x)
			if diff := float32(math.Abs(float64(got - tt.want))); diff > tt.tolerance {
				t.Errorf("CubicInterpolate() = %v, want %v (±%v)", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestCubicInterpolate_StaysNearSegment(t *testing.T) {
	t.Parallel()

	for x := float32(0); x <= 1; x += 0.1 {
		got := CubicInterpolate(1, 2, 3, 4, x)
		if got < 1.5 || got > 3.5 {
			t.Errorf("x=%v: %v outside [1.5, 3.5]", x, got)
		}
	}
}

func TestInterpolateFrame(t *testing.T) {
	t.Parallel()

	f0 := []float32{0, 1}
	f1 := []float32{1, 1}
	f2 := []float32{2, 1}
	f3 := []float32{3, 1}
	dst := make([]float32, 2)

	InterpolateFrame(dst, f0, f1, f2, f3, 0.5)

	if math.Abs(float64(dst[0]-1.5)) > 1e-6 || math.Abs(float64(dst[1]-1)) > 1e-6 {
		t.Errorf("InterpolateFrame() = %v, want [1.5 1]", dst)
	}
}

func TestInterpolateFrame_ZeroAllocs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping allocation test in short mode")
	}

	f := []float32{0.1, 0.2}
	dst := make([]float32, 2)
	allocs := testing.AllocsPerRun(1000, func() {
		InterpolateFrame(dst, f, f, f, f, 0.5)
	})

	if allocs > 0 {
		t.Errorf("InterpolateFrame allocated %v times, want 0", allocs)
	}
}

func BenchmarkInterpolateFrame(b *testing.B) {
	f0 := []float32{0.1, -0.1}
	f1 := []float32{0.5, -0.5}
	f2 := []float32{0.3, -0.3}
	f3 := []float32{-0.2, 0.2}
	dst := make([]float32, 2)

	b.ReportAllocs()
	b.ResetTimer()

	for i := range b.N {
		InterpolateFrame(dst, f0, f1, f2, f3, float32(i%100)/100)
	}
}
