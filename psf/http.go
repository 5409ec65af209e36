package psf

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/nasa-jpl/gopsf/aberration"
	"github.com/nasa-jpl/gopsf/bandpass"
	"github.com/nasa-jpl/gopsf/zernike"
)

// HTTPWrapper exposes a Builder over HTTP so pipeline clients in any
// language can request PSF models.
type HTTPWrapper struct {
	B *Builder
}

// NewHTTPWrapper returns an HTTP wrapper around a builder.
func NewHTTPWrapper(b *Builder) HTTPWrapper {
	return HTTPWrapper{B: b}
}

// psfRequest is the JSON shape of a PSF build request.  Wavelength and
// wavelengthBand are mutually exclusive; zero/empty means chromatic.
type psfRequest struct {
	Detector          int       `json:"detector"`
	Bandpass          string    `json:"bandpass"`
	X                 *float64  `json:"x"`
	Y                 *float64  `json:"y"`
	PupilBin          int       `json:"pupilBin"`
	NWaves            int       `json:"nWaves"`
	ExtraAberrations  []float64 `json:"extraAberrations"`
	Wavelength        float64   `json:"wavelength"`
	WavelengthBand    string    `json:"wavelengthBand"`
	HighAccuracy      *bool     `json:"highAccuracy"`
	ApproximateStruts *bool     `json:"approximateStruts"`
}

// psfResponse summarizes a built model for the client.  The pupil mask data
// itself stays server-side; clients get its geometry.
type psfResponse struct {
	Kind        string    `json:"kind"` // "optical" or "chromatic"
	Wavelength  float64   `json:"wavelength"`
	Aberrations []float64 `json:"aberrations"`
	Diameter    float64   `json:"diameter"`
	Obscuration float64   `json:"obscuration"`
	PupilNx     int       `json:"pupilNx"`
	PupilNy     int       `json:"pupilNy"`
	PupilScale  float64   `json:"pupilScale"`
	Waves       []float64 `json:"waves,omitempty"`
	Oversample  float64   `json:"oversample,omitempty"`
}

// BuildPSF builds a PSF model from a JSON request body and returns its
// summary as JSON.
func (h HTTPWrapper) BuildPSF(w http.ResponseWriter, r *http.Request) {
	var jreq psfRequest
	err := json.NewDecoder(r.Body).Decode(&jreq)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req := Request{
		Detector:          jreq.Detector,
		Bandpass:          jreq.Bandpass,
		PupilBin:          jreq.PupilBin,
		NWaves:            jreq.NWaves,
		HighAccuracy:      jreq.HighAccuracy,
		ApproximateStruts: jreq.ApproximateStruts,
	}
	if jreq.X != nil && jreq.Y != nil {
		req.Position = &aberration.Point{X: *jreq.X, Y: *jreq.Y}
	}
	if jreq.ExtraAberrations != nil {
		if len(jreq.ExtraAberrations) != zernike.NumTerms {
			http.Error(w, "extraAberrations must have exactly 23 entries", http.StatusBadRequest)
			return
		}
		var extra zernike.Vector
		copy(extra[:], jreq.ExtraAberrations)
		req.ExtraAberrations = &extra
	}
	switch {
	case jreq.Wavelength != 0 && jreq.WavelengthBand != "":
		http.Error(w, "wavelength and wavelengthBand are mutually exclusive", http.StatusBadRequest)
		return
	case jreq.Wavelength != 0:
		req.Wavelength = FixedWavelength(jreq.Wavelength)
	case jreq.WavelengthBand != "":
		bp, err := bandpass.Get(jreq.WavelengthBand)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.Wavelength = BandpassWavelength(bp)
	}

	model, err := h.B.GetPSF(req)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	resp := summarize(model)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GetBandpasses returns the filter definitions as JSON.
func (h HTTPWrapper) GetBandpasses(w http.ResponseWriter, r *http.Request) {
	out := make([]bandpass.Bandpass, 0)
	for _, name := range bandpass.Names() {
		bp, _ := bandpass.Get(name)
		out = append(out, bp)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(out); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GetAberrations interpolates the aberration vector for
// ?detector=N&x=&y= and returns it as JSON.  x and y default to the
// detector center.
func (h HTTPWrapper) GetAberrations(w http.ResponseWriter, r *http.Request) {
	detector, err := strconv.Atoi(r.URL.Query().Get("detector"))
	if err != nil {
		http.Error(w, "detector URL parameter missing or not an integer", http.StatusBadRequest)
		return
	}
	req := Request{Detector: detector}
	if xs, ys := r.URL.Query().Get("x"), r.URL.Query().Get("y"); xs != "" && ys != "" {
		x, errX := strconv.ParseFloat(xs, 64)
		y, errY := strconv.ParseFloat(ys, 64)
		if errX != nil || errY != nil {
			http.Error(w, "x and y URL parameters must be floats", http.StatusBadRequest)
			return
		}
		req.Position = &aberration.Point{X: x, Y: y}
	}
	model, err := h.B.GetPSF(req)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	ab := model.Aberrations()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ab[:]); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Bind attaches the wrapper's routes to a chi router.
func (h HTTPWrapper) Bind(r chi.Router) {
	r.Post("/psf", h.BuildPSF)
	r.Get("/bandpasses", h.GetBandpasses)
	r.Get("/aberrations", h.GetAberrations)
}

func summarize(model PSF) psfResponse {
	ab := model.Aberrations()
	resp := psfResponse{
		Aberrations: ab[:],
		Diameter:    model.Diameter(),
		Obscuration: model.Obscuration(),
	}
	if aper := model.Aperture(); aper != nil {
		resp.PupilNx = aper.Pupil.Nx
		resp.PupilNy = aper.Pupil.Ny
		resp.PupilScale = aper.Pupil.Scale
	}
	switch m := model.(type) {
	case *OpticalPSF:
		resp.Kind = "optical"
		resp.Wavelength = m.Lam
	case *ChromaticOpticalPSF:
		resp.Kind = "chromatic"
		resp.Wavelength = m.Lam
		resp.Waves = m.Waves
		resp.Oversample = m.Oversample
	}
	return resp
}

// statusFor maps builder errors onto HTTP statuses: bad requests for
// validation failures, 500 for I/O.
func statusFor(err error) int {
	var re RangeError
	var ve ValueError
	if errors.As(err, &re) || errors.As(err, &ve) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
