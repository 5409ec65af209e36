package pupil_test

import (
	"compress/gzip"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/astrogo/fitsio"

	"github.com/nasa-jpl/gopsf/pupil"
	"github.com/nasa-jpl/gopsf/render"
)

// writeMask writes an n x n float32 FITS mask, gzipped if the name calls
// for it.
func writeMask(t *testing.T, fn string, n int, vals []float32) {
	t.Helper()
	f, err := os.Create(fn)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var gz *gzip.Writer
	w := f
	if filepath.Ext(fn) == ".gz" {
		gz = gzip.NewWriter(f)
		defer gz.Close()
	}
	var fits *fitsio.File
	if gz != nil {
		fits, err = fitsio.Create(gz)
	} else {
		fits, err = fitsio.Create(w)
	}
	if err != nil {
		t.Fatal(err)
	}
	defer fits.Close()
	hdu := fitsio.NewImage(-32, []int{n, n})
	defer hdu.Close()
	if err := hdu.Write(vals); err != nil {
		t.Fatal(err)
	}
	if err := fits.Write(hdu); err != nil {
		t.Fatal(err)
	}
}

func TestLoadThresholdBin(t *testing.T) {
	dir := t.TempDir()
	fn := filepath.Join(dir, "mask.fits")
	// 4x4: open pupil in the middle, 0.03 artifact around the edge
	vals := make([]float32, 16)
	for i := range vals {
		vals[i] = 0.03
	}
	vals[5], vals[6], vals[9], vals[10] = 1, 1, 1, 1
	writeMask(t, fn, 4, vals)

	im, err := pupil.Load(fn, 0.002)
	if err != nil {
		t.Fatal(err)
	}
	if im.Nx != 4 || im.Ny != 4 {
		t.Fatalf("expected 4x4, got %dx%d", im.Nx, im.Ny)
	}
	im.ZeroBelow(0.5)
	for i, v := range im.Data {
		if v != 0 && v != 1 {
			t.Errorf("pixel %d: expected 0 or 1 after thresholding, got %g", i, v)
		}
	}
	binned, err := im.Bin(2)
	if err != nil {
		t.Fatal(err)
	}
	if binned.Nx != 2 || binned.Ny != 2 {
		t.Fatalf("expected 2x2 after binning, got %dx%d", binned.Nx, binned.Ny)
	}
	if math.Abs(binned.Scale-0.004) > 1e-12 {
		t.Errorf("expected scale to coarsen to 0.004, got %g", binned.Scale)
	}
	// each 2x2 block held one open pixel
	for i, v := range binned.Data {
		if math.Abs(v-0.25) > 1e-12 {
			t.Errorf("binned pixel %d: expected 0.25, got %g", i, v)
		}
	}
}

func TestLoadGzip(t *testing.T) {
	dir := t.TempDir()
	fn := filepath.Join(dir, "mask.fits.gz")
	writeMask(t, fn, 2, []float32{1, 0, 0, 1})
	im, err := pupil.Load(fn, 0.002)
	if err != nil {
		t.Fatal(err)
	}
	if im.Nx != 2 || im.Ny != 2 {
		t.Fatalf("expected 2x2, got %dx%d", im.Nx, im.Ny)
	}
	if im.Data[0] != 1 || im.Data[1] != 0 {
		t.Errorf("unexpected data after gzip round trip: %v", im.Data)
	}
}

func TestBinRejectsBadFactors(t *testing.T) {
	im := &pupil.Image{Nx: 4, Ny: 4, Scale: 1, Data: make([]float64, 16)}
	if _, err := im.Bin(0); err == nil {
		t.Error("expected an error for bin factor 0")
	}
	if _, err := im.Bin(3); err == nil {
		t.Error("expected an error for a factor that does not divide the image")
	}
}

func TestCacheIdentityAndKeying(t *testing.T) {
	var (
		c      pupil.Cache
		builds int
	)
	build := func() (*pupil.Aperture, error) {
		builds++
		return &pupil.Aperture{}, nil
	}
	key := pupil.Key{Plane: "short", Bin: 4, Wavelength: 1293, Params: render.Default()}
	a1, err := c.GetOrBuild(key, build)
	if err != nil {
		t.Fatal(err)
	}
	a2, err := c.GetOrBuild(key, build)
	if err != nil {
		t.Fatal(err)
	}
	if a1 != a2 {
		t.Error("equal keys should yield the identical cached aperture")
	}
	if builds != 1 {
		t.Errorf("expected exactly 1 build, got %d", builds)
	}
	// changing any one field misses the cache
	for _, k := range []pupil.Key{
		{Plane: "long", Bin: 4, Wavelength: 1293, Params: render.Default()},
		{Plane: "short", Bin: 8, Wavelength: 1293, Params: render.Default()},
		{Plane: "short", Bin: 4, Wavelength: 1500, Params: render.Default()},
		{Plane: "short", Bin: 4, Wavelength: 1293, Params: render.Default().WithFoldingThreshold(2e-3)},
	} {
		a, err := c.GetOrBuild(k, build)
		if err != nil {
			t.Fatal(err)
		}
		if a == a1 {
			t.Errorf("key %+v should not share the cached aperture", k)
		}
	}
	if c.Len() != 5 {
		t.Errorf("expected 5 cached apertures, got %d", c.Len())
	}
}

func TestCacheBuildErrorNotCached(t *testing.T) {
	var c pupil.Cache
	boom := errors.New("boom")
	key := pupil.Key{Plane: "short", Bin: 1, Wavelength: 1293}
	_, err := c.GetOrBuild(key, func() (*pupil.Aperture, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected the build error back, got %v", err)
	}
	if c.Len() != 0 {
		t.Error("a failed build should not be cached")
	}
	ap, err := c.GetOrBuild(key, func() (*pupil.Aperture, error) { return &pupil.Aperture{}, nil })
	if err != nil || ap == nil {
		t.Fatalf("expected a successful rebuild, got %v %v", ap, err)
	}
}
