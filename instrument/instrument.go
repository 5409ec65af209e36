// Package instrument holds the fixed optical and focal-plane constants for
// the wide-field camera, along with the naming conventions for the
// calibration products shipped alongside the binaries.
//
// The values here come from the instrument design specification.  They are
// not configurable at runtime; a different telescope is a different package.
package instrument

import "fmt"

const (
	// NDetectors is the number of sensor chip assemblies in the focal plane.
	NDetectors = 18

	// NPix is the number of pixels along one edge of a (square) detector.
	NPix = 4096

	// PixelScale is the plate scale of the detectors, arcsec per pixel.
	PixelScale = 0.11

	// Diameter is the clear aperture of the primary mirror, meters.
	Diameter = 2.36

	// Obscuration is the linear fraction of the pupil blocked by the
	// secondary and its support structure.
	Obscuration = 0.32

	// PupilPlaneScale is the sampling of the pupil mask images, meters
	// per pixel.
	PupilPlaneScale = 0.00111175097

	// FiducialWavelength is the wavelength at which the Zernike
	// calibration tables are expressed, nanometers.  Aberrations in waves
	// scale as FiducialWavelength/lambda.
	FiducialWavelength = 1293.0
)

// Pupil mask categories.  The instrument carries two pupil configurations,
// one for the long-wavelength bands and one for the short-wavelength bands.
const (
	PupilLong  = "long"
	PupilShort = "short"
)

// Calibration product file names.  The Zernike tables are one whitespace
// delimited text file per detector; the pupil masks are FITS images
// (optionally gzipped).
const (
	zernikeFilePrefix = "wfc_zernike_field"
	zernikeFileSuffix = ".txt"

	PupilFileLongwave  = "pupil_mask_longwave.fits.gz"
	PupilFileShortwave = "pupil_mask_shortwave.fits.gz"
)

// ZernikeFile returns the file name of the Zernike field calibration table
// for one detector, e.g. "wfc_zernike_field_07.txt" for detector 7.  The
// detector number is not validated here.
func ZernikeFile(detector int) string {
	return fmt.Sprintf("%s_%02d%s", zernikeFilePrefix, detector, zernikeFileSuffix)
}

// PupilFile returns the pupil mask file name for a pupil plane category,
// PupilLong or PupilShort.  Anything other than PupilLong is treated as
// short, mirroring the default elsewhere in the module.
func PupilFile(plane string) string {
	if plane == PupilLong {
		return PupilFileLongwave
	}
	return PupilFileShortwave
}
