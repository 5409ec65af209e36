// Package aberration loads the per-detector Zernike field calibration
// tables and interpolates them to arbitrary positions on a detector.
//
// Each detector has one table with five reference field points: the four
// corners of the detector and its center.  The corner points feed a
// bilinear interpolation; the center value is generally within a few
// percent of the interpolated value there, so it is carried but not used.
package aberration

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nasa-jpl/gopsf/instrument"
	"github.com/nasa-jpl/gopsf/zernike"
)

// NSamples is the number of reference field points per detector.
const NSamples = 5

// Columns in a calibration table row: five leading metadata columns, of
// which columns 1 and 2 are the field offsets in arcsec relative to the
// detector center, followed by Zernike coefficients 1 through 22 in waves
// at the fiducial wavelength.
const (
	colFieldX   = 1
	colFieldY   = 2
	colZernike0 = 5
	minColumns  = colZernike0 + zernike.NumTerms - 1
)

// Point is a position on a detector in pixel coordinates, measured from the
// lower corner.
type Point struct {
	X float64
	Y float64
}

// Sample is one reference field point: where it sits on the detector and
// the aberrations measured there.
type Sample struct {
	Pos         Point
	Aberrations zernike.Vector
}

// Table holds the calibration samples for one detector.  It is read-only
// after Load and safe to share.
type Table struct {
	Detector int
	Samples  []Sample
}

// Load reads the Zernike field calibration table for one detector from dir.
// The field offsets in the file are converted from arcsec relative to the
// detector center into pixels relative to the lower corner.  The detector
// number is assumed to already be validated by the caller.
func Load(dir string, detector int) (Table, error) {
	t := Table{Detector: detector}
	fn := filepath.Join(dir, instrument.ZernikeFile(detector))
	f, err := os.Open(fn)
	if err != nil {
		return t, fmt.Errorf("aberration table for detector %d: %w", detector, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if len(fields) < minColumns {
			return t, fmt.Errorf("%s line %d: got %d columns, need at least %d", fn, line, len(fields), minColumns)
		}
		row := make([]float64, len(fields))
		for i, s := range fields {
			row[i], err = strconv.ParseFloat(s, 64)
			if err != nil {
				return t, fmt.Errorf("%s line %d column %d: %w", fn, line, i, err)
			}
		}
		var samp Sample
		samp.Pos.X = row[colFieldX]/instrument.PixelScale + instrument.NPix/2
		samp.Pos.Y = row[colFieldY]/instrument.PixelScale + instrument.NPix/2
		// index 0 of the vector stays zero; Zernikes are 1-indexed
		for i := 1; i < zernike.NumTerms; i++ {
			samp.Aberrations[i] = row[colZernike0+i-1]
		}
		t.Samples = append(t.Samples, samp)
	}
	if err := scanner.Err(); err != nil {
		return t, fmt.Errorf("reading %s: %w", fn, err)
	}
	if len(t.Samples) != NSamples {
		return t, fmt.Errorf("%s: got %d field samples, want %d", fn, len(t.Samples), NSamples)
	}
	return t, nil
}

// Interpolate computes the aberration vector at p by bilinear interpolation
// over the four extreme corner samples of the table.  Positions outside the
// corner rectangle extrapolate linearly.
//
// The reference samples must contain exactly one sample at each of the four
// (min/max x, min/max y) combinations; a degenerate or non-rectangular
// layout is an error rather than silent NaN propagation.
func (t Table) Interpolate(p Point) (zernike.Vector, error) {
	var out zernike.Vector
	if len(t.Samples) == 0 {
		return out, fmt.Errorf("detector %d: no field samples to interpolate", t.Detector)
	}
	minX, maxX := t.Samples[0].Pos.X, t.Samples[0].Pos.X
	minY, maxY := t.Samples[0].Pos.Y, t.Samples[0].Pos.Y
	for _, s := range t.Samples[1:] {
		if s.Pos.X < minX {
			minX = s.Pos.X
		}
		if s.Pos.X > maxX {
			maxX = s.Pos.X
		}
		if s.Pos.Y < minY {
			minY = s.Pos.Y
		}
		if s.Pos.Y > maxY {
			maxY = s.Pos.Y
		}
	}
	if maxX == minX || maxY == minY {
		return out, fmt.Errorf("detector %d: reference field points are degenerate (x span %g, y span %g)",
			t.Detector, maxX-minX, maxY-minY)
	}

	ll, err := t.corner(minX, minY)
	if err != nil {
		return out, err
	}
	lu, err := t.corner(minX, maxY)
	if err != nil {
		return out, err
	}
	ul, err := t.corner(maxX, minY)
	if err != nil {
		return out, err
	}
	uu, err := t.corner(maxX, maxY)
	if err != nil {
		return out, err
	}

	xFrac := (p.X - minX) / (maxX - minX)
	yFrac := (p.Y - minY) / (maxY - minY)
	for i := range out {
		out[i] = (1-xFrac)*(1-yFrac)*ll[i] +
			(1-xFrac)*yFrac*lu[i] +
			xFrac*(1-yFrac)*ul[i] +
			xFrac*yFrac*uu[i]
	}
	return out, nil
}

// corner finds the unique sample at (x, y).
func (t Table) corner(x, y float64) (zernike.Vector, error) {
	var (
		out   zernike.Vector
		found int
	)
	for _, s := range t.Samples {
		if s.Pos.X == x && s.Pos.Y == y {
			out = s.Aberrations
			found++
		}
	}
	if found != 1 {
		return out, fmt.Errorf("detector %d: %d field samples at corner (%g, %g), want exactly 1",
			t.Detector, found, x, y)
	}
	return out, nil
}
