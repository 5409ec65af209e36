// Package render defines the rendering-parameter set handed through to the
// downstream drawing engine.  The PSF construction code treats it as opaque
// except for the deprecated-option translation, which tightens the folding
// threshold.
package render

// Params tunes the downstream Fourier rendering of a PSF.  It deliberately
// contains only comparable scalar fields so that it can participate by value
// in aperture cache keys: two Params with equal fields are the same
// configuration.
type Params struct {
	// FoldingThreshold sets the maximum tolerated aliased flux folding
	// into the rendered image.  Smaller is more accurate and slower.
	FoldingThreshold float64

	// MinimumFFTSize and MaximumFFTSize bound the grid the renderer may
	// choose for Fourier transforms.
	MinimumFFTSize int
	MaximumFFTSize int
}

// Default returns the standard rendering parameters.
func Default() Params {
	return Params{
		FoldingThreshold: 5.0e-3,
		MinimumFFTSize:   128,
		MaximumFFTSize:   8192,
	}
}

// WithFoldingThreshold returns a copy of p with the folding threshold
// replaced.
func (p Params) WithFoldingThreshold(f float64) Params {
	p.FoldingThreshold = f
	return p
}
