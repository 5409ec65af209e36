package psf

import (
	"github.com/nasa-jpl/gopsf/bandpass"
	"github.com/nasa-jpl/gopsf/instrument"
)

// Wavelength selects between a fully chromatic PSF and a monochromatic one.
// The zero value means unspecified: the PSF is chromatic and internally
// referenced to the fiducial calibration wavelength.  A fixed wavelength or
// a bandpass (standing in for its effective wavelength) yields a
// monochromatic PSF.
type Wavelength struct {
	kind int // 0 unspecified, 1 fixed, 2 bandpass
	nm   float64
	band bandpass.Bandpass
}

// FixedWavelength requests a monochromatic PSF at a wavelength in
// nanometers.
func FixedWavelength(nm float64) Wavelength {
	return Wavelength{kind: 1, nm: nm}
}

// BandpassWavelength requests a monochromatic PSF at the effective
// wavelength of a filter.
func BandpassWavelength(bp bandpass.Bandpass) Wavelength {
	return Wavelength{kind: 2, band: bp}
}

// Unspecified reports whether the request is for a chromatic PSF.
func (w Wavelength) Unspecified() bool { return w.kind == 0 }

// resolve returns the working wavelength in nm and whether the result
// should be monochromatic.  Chromatic requests work at the fiducial
// calibration wavelength.
func (w Wavelength) resolve() (nm float64, mono bool) {
	switch w.kind {
	case 1:
		return w.nm, true
	case 2:
		return w.band.EffectiveWavelength, true
	default:
		return instrument.FiducialWavelength, false
	}
}
