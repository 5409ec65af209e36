package psf_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"

	"github.com/nasa-jpl/gopsf/psf"
)

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()
	r := chi.NewRouter()
	psf.NewHTTPWrapper(newTestBuilder(t)).Bind(r)
	return r
}

func TestHTTPBuildPSF(t *testing.T) {
	r := newTestRouter(t)
	body := `{"detector": 7, "bandpass": "Y106"}`
	req := httptest.NewRequest(http.MethodPost, "/psf", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Kind        string    `json:"kind"`
		Wavelength  float64   `json:"wavelength"`
		Aberrations []float64 `json:"aberrations"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Kind != "chromatic" {
		t.Errorf("expected a chromatic model, got %q", resp.Kind)
	}
	if len(resp.Aberrations) != 23 {
		t.Errorf("expected 23 aberration terms, got %d", len(resp.Aberrations))
	}
}

func TestHTTPBuildPSFBadDetector(t *testing.T) {
	r := newTestRouter(t)
	body := `{"detector": 99}`
	req := httptest.NewRequest(http.MethodPost, "/psf", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestHTTPBuildPSFFixedWavelength(t *testing.T) {
	r := newTestRouter(t)
	body := `{"detector": 7, "bandpass": "Y106", "wavelength": 1500}`
	req := httptest.NewRequest(http.MethodPost, "/psf", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Kind       string  `json:"kind"`
		Wavelength float64 `json:"wavelength"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Kind != "optical" || resp.Wavelength != 1500 {
		t.Errorf("expected an optical model at 1500 nm, got %q at %g", resp.Kind, resp.Wavelength)
	}
}

func TestHTTPGetAberrations(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/aberrations?detector=7", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var ab []float64
	if err := json.NewDecoder(w.Body).Decode(&ab); err != nil {
		t.Fatal(err)
	}
	if len(ab) != 23 {
		t.Fatalf("expected 23 terms, got %d", len(ab))
	}
	for i := 0; i < 4; i++ {
		if ab[i] != 0 {
			t.Errorf("index %d should be zero, got %g", i, ab[i])
		}
	}
}

func TestHTTPGetBandpasses(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/bandpasses", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var bands []struct {
		Name string `json:"Name"`
	}
	if err := json.NewDecoder(w.Body).Decode(&bands); err != nil {
		t.Fatal(err)
	}
	if len(bands) != 6 {
		t.Errorf("expected 6 filters, got %d", len(bands))
	}
}
