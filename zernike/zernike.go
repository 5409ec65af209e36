// Package zernike provides the fixed-length aberration coefficient vector
// used throughout the PSF model.  Coefficients follow the Noll ordering:
// index 0 is an unused placeholder (Zernike polynomials are 1-indexed),
// indices 1-3 are piston, tip, and tilt, and indices 4-22 run from defocus
// through the 22nd order term.  Units are waves at a reference wavelength.
package zernike

// NumTerms is the length of an aberration vector: one placeholder plus
// Zernike terms 1 through 22.
const NumTerms = 23

// Vector is an ordered set of Zernike coefficients.  The array type pins
// the length at NumTerms; a Vector is a value and may be freely copied.
type Vector [NumTerms]float64

// Add returns the elementwise sum v + w.
func (v Vector) Add(w Vector) Vector {
	var out Vector
	for i := range v {
		out[i] = v[i] + w[i]
	}
	return out
}

// Scale returns v with every coefficient multiplied by f.  Aberrations
// expressed in waves scale inversely with wavelength, so converting a vector
// from wavelength w0 to w1 is Scale(w0/w1).
func (v Vector) Scale(f float64) Vector {
	var out Vector
	for i := range v {
		out[i] = v[i] * f
	}
	return out
}

// ZeroLowOrder returns v with indices 0 through 3 set to zero.  Piston does
// not change the appearance of the PSF and tip/tilt only shift the centroid,
// so they are excluded from the optical model.
func (v Vector) ZeroLowOrder() Vector {
	out := v
	out[0], out[1], out[2], out[3] = 0, 0, 0, 0
	return out
}
