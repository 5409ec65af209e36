// Package pupil loads the instrument pupil mask images and turns them into
// aperture descriptions for the PSF renderer.  Because a full-resolution
// mask is 4096 x 4096 and expensive to prepare, the package also provides a
// process-wide cache of constructed apertures.
package pupil

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/astrogo/fitsio"
)

// Image is a pupil transmission mask: a 2-D array with a linear pixel
// scale.  Data is row-major, Data[y*Nx+x].
type Image struct {
	Nx    int
	Ny    int
	Scale float64 // meters per pixel
	Data  []float64
}

// Load reads a pupil mask from a FITS file.  Files ending in .gz are
// decompressed transparently.  The pixel scale is not stored in the mask
// headers, so the caller supplies it.
func Load(path string, scale float64) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pupil mask %s: %w", path, err)
	}
	defer f.Close()
	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("pupil mask %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}
	return read(r, scale, path)
}

func read(r io.Reader, scale float64, path string) (*Image, error) {
	fits, err := fitsio.Open(r)
	if err != nil {
		return nil, fmt.Errorf("pupil mask %s: %w", path, err)
	}
	defer fits.Close()
	hdu := fits.HDU(0)
	img, ok := hdu.(fitsio.Image)
	if !ok {
		return nil, fmt.Errorf("pupil mask %s: primary HDU is not an image", path)
	}
	hdr := img.Header()
	axes := hdr.Axes()
	if len(axes) != 2 {
		return nil, fmt.Errorf("pupil mask %s: got %d axes, want 2", path, len(axes))
	}
	nx, ny := axes[0], axes[1]
	data, err := readFloats(img, hdr.Bitpix(), nx*ny)
	if err != nil {
		return nil, fmt.Errorf("pupil mask %s: %w", path, err)
	}
	return &Image{Nx: nx, Ny: ny, Scale: scale, Data: data}, nil
}

// readFloats reads the image payload at its native bit depth and widens to
// float64.
func readFloats(img fitsio.Image, bitpix, n int) ([]float64, error) {
	out := make([]float64, n)
	switch bitpix {
	case 8:
		raw := make([]uint8, n)
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		for i, v := range raw {
			out[i] = float64(v)
		}
	case 16:
		raw := make([]int16, n)
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		for i, v := range raw {
			out[i] = float64(v)
		}
	case 32:
		raw := make([]int32, n)
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		for i, v := range raw {
			out[i] = float64(v)
		}
	case 64:
		raw := make([]int64, n)
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		for i, v := range raw {
			out[i] = float64(v)
		}
	case -32:
		raw := make([]float32, n)
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		for i, v := range raw {
			out[i] = float64(v)
		}
	case -64:
		if err := img.Read(&out); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported bitpix %d", bitpix)
	}
	return out, nil
}

// ZeroBelow sets every pixel with intensity below thresh to zero, in place.
// The as-delivered masks carry a faint square artifact around the pupil
// with amplitude ~0.03 which would otherwise read as open aperture; the
// loader removes everything below 0.5.
func (im *Image) ZeroBelow(thresh float64) {
	for i, v := range im.Data {
		if v < thresh {
			im.Data[i] = 0
		}
	}
}

// Bin reduces the image by an integer factor along both axes, averaging
// each n x n block, and coarsens the pixel scale to match.  n must be
// positive and divide both dimensions.
func (im *Image) Bin(n int) (*Image, error) {
	if n < 1 {
		return nil, fmt.Errorf("bin factor %d, must be >= 1", n)
	}
	if n == 1 {
		return im, nil
	}
	if im.Nx%n != 0 || im.Ny%n != 0 {
		return nil, fmt.Errorf("bin factor %d does not divide %d x %d image", n, im.Nx, im.Ny)
	}
	nx, ny := im.Nx/n, im.Ny/n
	out := &Image{Nx: nx, Ny: ny, Scale: im.Scale * float64(n), Data: make([]float64, nx*ny)}
	norm := 1.0 / float64(n*n)
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			var sum float64
			for dy := 0; dy < n; dy++ {
				row := (y*n + dy) * im.Nx
				for dx := 0; dx < n; dx++ {
					sum += im.Data[row+x*n+dx]
				}
			}
			out.Data[y*nx+x] = sum * norm
		}
	}
	return out, nil
}
