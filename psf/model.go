package psf

import (
	"github.com/nasa-jpl/gopsf/pupil"
	"github.com/nasa-jpl/gopsf/render"
	"github.com/nasa-jpl/gopsf/zernike"
)

// PSF is the model handed to the rendering engine: the finalized aberration
// coefficients together with the aperture they apply to.  Concrete types
// are OpticalPSF (monochromatic) and ChromaticOpticalPSF.
type PSF interface {
	// Aberrations returns the Zernike coefficients, in waves at the
	// model's reference wavelength.
	Aberrations() zernike.Vector

	// Aperture returns the prepared pupil description.
	Aperture() *pupil.Aperture

	// Diameter returns the primary diameter in meters.
	Diameter() float64

	// Obscuration returns the linear obscuration fraction.
	Obscuration() float64
}

// OpticalPSF is a monochromatic PSF model at a single wavelength.  The
// aberrations are expressed in waves at Lam.
type OpticalPSF struct {
	Lam    float64 // nm
	Aberr  zernike.Vector
	Aper   *pupil.Aperture
	Diam   float64
	Obsc   float64
	Params render.Params
}

func (p *OpticalPSF) Aberrations() zernike.Vector { return p.Aberr }
func (p *OpticalPSF) Aperture() *pupil.Aperture   { return p.Aper }
func (p *OpticalPSF) Diameter() float64           { return p.Diam }
func (p *OpticalPSF) Obscuration() float64        { return p.Obsc }

// ChromaticOpticalPSF is a PSF model that varies continuously with
// wavelength.  The aberrations are expressed in waves at the reference
// wavelength Lam and scale as Lam/lambda when evaluated elsewhere.
type ChromaticOpticalPSF struct {
	Lam    float64 // reference wavelength, nm
	Aberr  zernike.Vector
	Aper   *pupil.Aperture
	Diam   float64
	Obsc   float64
	Params render.Params

	// Waves and Oversample describe an optional pre-interpolation grid;
	// a nil Waves means the renderer evaluates the model exactly at
	// every wavelength it needs.
	Waves      []float64
	Oversample float64
}

func (p *ChromaticOpticalPSF) Aberrations() zernike.Vector { return p.Aberr }
func (p *ChromaticOpticalPSF) Aperture() *pupil.Aperture   { return p.Aper }
func (p *ChromaticOpticalPSF) Diameter() float64           { return p.Diam }
func (p *ChromaticOpticalPSF) Obscuration() float64        { return p.Obsc }

// Interpolate returns a copy of p set up for pre-interpolated rendering on
// the given wavelength grid (nm).  The renderer oversamples its internal
// images by the given factor to keep interpolation artifacts down.
func (p *ChromaticOpticalPSF) Interpolate(waves []float64, oversample float64) *ChromaticOpticalPSF {
	q := *p
	q.Waves = waves
	q.Oversample = oversample
	return &q
}

// linspace returns n evenly spaced values from lo to hi inclusive.
func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}
