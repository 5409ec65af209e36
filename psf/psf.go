// Package psf builds optical PSF models for the wide-field camera.
//
// A Builder combines three ingredients for any detector position and
// wavelength configuration: the per-detector Zernike field calibration
// tables (interpolated to the requested position), the pupil mask for the
// wavelength regime (memoized, since preparing one is expensive), and the
// fixed instrument geometry.  The result is either a ChromaticOpticalPSF or
// a monochromatic OpticalPSF, consumable by the rendering engine.
package psf

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/nasa-jpl/gopsf/aberration"
	"github.com/nasa-jpl/gopsf/bandpass"
	"github.com/nasa-jpl/gopsf/instrument"
	"github.com/nasa-jpl/gopsf/pupil"
	"github.com/nasa-jpl/gopsf/render"
	"github.com/nasa-jpl/gopsf/zernike"
)

const (
	// DefaultPupilBin is the default pupil mask binning.  The full masks
	// are 4096 x 4096, far more detail than most rendering needs; 4x4
	// binning keeps the diffraction spikes intact and is much faster.
	DefaultPupilBin = 4

	// artifactThreshold is the intensity below which pupil mask pixels
	// are zeroed on load.  See pupil.Image.ZeroBelow.
	artifactThreshold = 0.5

	// interpOversample is the renderer oversampling factor used with
	// wavelength pre-interpolation grids.
	interpOversample = 1.5
)

// apertures is the process-wide aperture cache.  A typical run asks for one
// or a few distinct apertures across very many PSFs, so all Builders share
// one cache unless a test injects its own.
var apertures = &pupil.Cache{}

// Request describes one PSF to build.  The zero value of each optional
// field means "unset".
type Request struct {
	// Detector is the sensor chip number, 1 through
	// instrument.NDetectors.
	Detector int

	// Bandpass is a filter name used to pick the pupil mask and, when
	// NWaves is set, the wavelength interpolation range.  The literal
	// strings "long" and "short" select a pupil mask directly (no
	// interpolation possible).  Empty means short, provided NWaves is
	// also unset.
	Bandpass string

	// Position on the detector in pixels.  Nil means the detector
	// center.
	Position *aberration.Point

	// PupilBin is the pupil mask binning factor.  Zero means
	// DefaultPupilBin.
	PupilBin int

	// NWaves, when positive, pre-interpolates the chromatic model over
	// that many wavelengths spanning the bandpass.
	NWaves int

	// ExtraAberrations are added on top of the calibrated design, in
	// waves at the fiducial wavelength.
	ExtraAberrations *zernike.Vector

	// Wavelength selects a monochromatic PSF; the zero value keeps the
	// model chromatic.
	Wavelength Wavelength

	// Params overrides the default rendering parameters.
	Params *render.Params

	// Logger receives deprecation notices.  Nil means the process
	// logger.
	Logger *log.Logger

	// HighAccuracy and ApproximateStruts are deprecated.  They are
	// translated into PupilBin/Params settings; see GetPSF.
	HighAccuracy      *bool
	ApproximateStruts *bool
}

// Builder constructs PSF models from calibration data on disk.  It holds no
// mutable state beyond its caches and is safe for concurrent use.
type Builder struct {
	// DataDir holds the Zernike field calibration tables.
	DataDir string

	// PupilDir holds the pupil mask FITS files.  Empty means DataDir.
	PupilDir string

	// Apertures is the aperture cache to use.  Nil means the shared
	// process-wide cache.  Tests inject a fresh one.
	Apertures *pupil.Cache

	mu     sync.Mutex
	tables map[int]aberration.Table
}

// NewBuilder returns a Builder reading calibration data from dataDir and
// sharing the process-wide aperture cache.
func NewBuilder(dataDir string) *Builder {
	return &Builder{DataDir: dataDir}
}

// GetPSF validates req and builds the PSF model it describes.
//
// The deprecated HighAccuracy/ApproximateStruts flags are translated first,
// with a logged notice: both set selects PupilBin=4 with a 2e-3 folding
// threshold; HighAccuracy alone PupilBin=1 with the same threshold;
// ApproximateStruts alone PupilBin=8; either explicitly false PupilBin=4.
func (b *Builder) GetPSF(req Request) (PSF, error) {
	bin := req.PupilBin
	if bin == 0 {
		bin = DefaultPupilBin
	}
	params := render.Default()
	if req.Params != nil {
		params = *req.Params
	}

	// Deprecated option translation.  The combined-flag branch takes
	// precedence over either flag alone.
	switch {
	case req.HighAccuracy != nil && *req.HighAccuracy:
		if req.ApproximateStruts != nil && *req.ApproximateStruts {
			b.notice(req, "high_accuracy=true with approximate_struts=true is deprecated; using pupil_bin=4, folding_threshold=2e-3")
			params = params.WithFoldingThreshold(2.0e-3)
			bin = 4
		} else {
			b.notice(req, "high_accuracy=true is deprecated; using pupil_bin=1, folding_threshold=2e-3")
			params = params.WithFoldingThreshold(2.0e-3)
			bin = 1
		}
	case req.ApproximateStruts != nil && *req.ApproximateStruts:
		b.notice(req, "approximate_struts=true is deprecated; using pupil_bin=8")
		bin = 8
	case req.ApproximateStruts != nil || req.HighAccuracy != nil:
		// explicitly false rather than unset
		b.notice(req, "approximate_struts and high_accuracy are deprecated; using pupil_bin=4")
		bin = 4
	}
	if bin < 1 {
		return nil, fmt.Errorf("pupil bin factor %d, must be >= 1", bin)
	}

	if req.Detector < 1 || req.Detector > instrument.NDetectors {
		return nil, RangeError{What: "detector", Value: req.Detector, Min: 1, Max: instrument.NDetectors}
	}

	pos := aberration.Point{X: instrument.NPix / 2, Y: instrument.NPix / 2}
	if req.Position != nil {
		pos = *req.Position
	}

	// Pick the pupil mask category from the bandpass.
	var plane string
	switch {
	case bandpass.IsLongwave(req.Bandpass) || req.Bandpass == instrument.PupilLong:
		plane = instrument.PupilLong
	case bandpass.IsShortwave(req.Bandpass) || req.Bandpass == instrument.PupilShort:
		plane = instrument.PupilShort
	case req.Bandpass == "" && req.NWaves == 0:
		plane = instrument.PupilShort
	default:
		return nil, ValueError{What: "bandpass", Value: req.Bandpass,
			Msg: "not an instrument filter or 'long'/'short'", Valid: bandpass.Names()}
	}

	// A literal category has no spectral limits, so interpolation over
	// wavelength cannot be set up from it.
	if (req.Bandpass == instrument.PupilLong || req.Bandpass == instrument.PupilShort) && req.NWaves != 0 {
		return nil, ValueError{What: "bandpass", Value: req.Bandpass,
			Msg: "cannot combine a literal pupil category with wavelength interpolation", Valid: bandpass.Names()}
	}
	if req.NWaves < 0 {
		return nil, fmt.Errorf("n_waves %d, must be >= 0", req.NWaves)
	}
	if nm, mono := req.Wavelength.resolve(); mono && nm <= 0 {
		return nil, fmt.Errorf("wavelength %g nm, must be positive", nm)
	}

	return b.getSinglePSF(req, pos, plane, bin, params)
}

// getSinglePSF does the construction after validation: aperture via the
// cache, aberrations via table + interpolation, then model assembly.
func (b *Builder) getSinglePSF(req Request, pos aberration.Point, plane string, bin int, params render.Params) (PSF, error) {
	wave, mono := req.Wavelength.resolve()

	key := pupil.Key{Plane: plane, Bin: bin, Wavelength: wave, Params: params}
	aper, err := b.cache().GetOrBuild(key, func() (*pupil.Aperture, error) {
		return b.buildAperture(plane, bin, wave, params)
	})
	if err != nil {
		return nil, err
	}

	tbl, err := b.table(req.Detector)
	if err != nil {
		return nil, err
	}
	aberr, err := tbl.Interpolate(pos)
	if err != nil {
		return nil, err
	}
	if req.ExtraAberrations != nil {
		aberr = aberr.Add(*req.ExtraAberrations)
	}
	aberr = aberr.ZeroLowOrder()

	if mono {
		// waves scale inversely with wavelength
		aberr = aberr.Scale(instrument.FiducialWavelength / wave)
		return &OpticalPSF{
			Lam:    wave,
			Aberr:  aberr,
			Aper:   aper,
			Diam:   instrument.Diameter,
			Obsc:   instrument.Obscuration,
			Params: params,
		}, nil
	}

	cpsf := &ChromaticOpticalPSF{
		Lam:    instrument.FiducialWavelength,
		Aberr:  aberr,
		Aper:   aper,
		Diam:   instrument.Diameter,
		Obsc:   instrument.Obscuration,
		Params: params,
	}
	if req.NWaves > 0 {
		bp, err := bandpass.Get(req.Bandpass)
		if err != nil {
			return nil, err
		}
		waves := linspace(bp.BlueLimit, bp.RedLimit, req.NWaves)
		cpsf = cpsf.Interpolate(waves, interpOversample)
	}
	return cpsf, nil
}

// buildAperture is the expensive path behind the aperture cache: load the
// mask for the wavelength regime, clean it, bin it, and wrap it up.
func (b *Builder) buildAperture(plane string, bin int, wave float64, params render.Params) (*pupil.Aperture, error) {
	path := filepath.Join(b.pupilDir(), instrument.PupilFile(plane))
	im, err := pupil.Load(path, instrument.PupilPlaneScale)
	if err != nil {
		return nil, err
	}
	im.ZeroBelow(artifactThreshold)
	im, err = im.Bin(bin)
	if err != nil {
		return nil, err
	}
	return &pupil.Aperture{
		Wavelength:  wave,
		Diameter:    instrument.Diameter,
		Obscuration: instrument.Obscuration,
		Pupil:       im,
		Params:      params,
	}, nil
}

// table returns the calibration table for a detector, loading it at most
// once per Builder.  Tables are read-only after load.
func (b *Builder) table(detector int) (aberration.Table, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if tbl, ok := b.tables[detector]; ok {
		return tbl, nil
	}
	tbl, err := aberration.Load(b.DataDir, detector)
	if err != nil {
		return tbl, err
	}
	if b.tables == nil {
		b.tables = make(map[int]aberration.Table)
	}
	b.tables[detector] = tbl
	return tbl, nil
}

func (b *Builder) cache() *pupil.Cache {
	if b.Apertures != nil {
		return b.Apertures
	}
	return apertures
}

func (b *Builder) pupilDir() string {
	if b.PupilDir != "" {
		return b.PupilDir
	}
	return b.DataDir
}

// notice logs a non-fatal deprecation message.
func (b *Builder) notice(req Request, msg string) {
	if req.Logger != nil {
		req.Logger.Println(msg)
		return
	}
	log.Println(msg)
}
