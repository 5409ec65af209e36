package zernike_test

import (
	"math"
	"testing"

	"github.com/nasa-jpl/gopsf/zernike"
)

func TestAddIsElementwise(t *testing.T) {
	var a, b zernike.Vector
	for i := range a {
		a[i] = float64(i)
		b[i] = 2 * float64(i)
	}
	sum := a.Add(b)
	for i := range sum {
		if sum[i] != 3*float64(i) {
			t.Errorf("index %d: expected %g got %g", i, 3*float64(i), sum[i])
		}
	}
}

func TestScaleRoundTrip(t *testing.T) {
	var v zernike.Vector
	for i := range v {
		v[i] = 0.1 * float64(i)
	}
	w0, w1 := 1293.0, 1500.0
	back := v.Scale(w0 / w1).Scale(w1 / w0)
	for i := range v {
		if math.Abs(back[i]-v[i]) > 1e-12 {
			t.Errorf("index %d: round trip %g != original %g", i, back[i], v[i])
		}
	}
}

func TestZeroLowOrder(t *testing.T) {
	var v zernike.Vector
	for i := range v {
		v[i] = 1.0
	}
	out := v.ZeroLowOrder()
	for i := 0; i < 4; i++ {
		if out[i] != 0 {
			t.Errorf("index %d: expected 0 got %g", i, out[i])
		}
	}
	for i := 4; i < zernike.NumTerms; i++ {
		if out[i] != 1.0 {
			t.Errorf("index %d: expected 1 got %g", i, out[i])
		}
	}
	// input untouched
	if v[0] != 1.0 {
		t.Error("ZeroLowOrder mutated its receiver")
	}
}
