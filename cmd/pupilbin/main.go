// Command pupilbin preprocesses a pupil mask: load, zero the sub-threshold
// imaging artifact, bin by an integer factor, and write the result to FITS.
// Useful for inspecting what the PSF builder will actually use at a given
// binning, and for precomputing masks for storage-constrained deployments.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/astrogo/fitsio"
	"github.com/theckman/yacspin"

	"github.com/nasa-jpl/gopsf/instrument"
	"github.com/nasa-jpl/gopsf/pupil"
)

func main() {
	var (
		plane  = flag.String("plane", instrument.PupilShort, "pupil mask category, long or short")
		bin    = flag.Int("bin", 4, "integer binning factor")
		dir    = flag.String("dir", "data", "directory holding the pupil mask FITS files")
		outfn  = flag.String("o", "pupil_binned.fits", "output FITS file")
		thresh = flag.Float64("threshold", 0.5, "zero mask pixels below this intensity")
	)
	flag.Parse()
	if *plane != instrument.PupilLong && *plane != instrument.PupilShort {
		log.Fatalf("plane %q not understood, must be %q or %q", *plane, instrument.PupilLong, instrument.PupilShort)
	}

	cfg := yacspin.Config{
		Frequency:       100 * time.Millisecond,
		CharSet:         yacspin.CharSets[59],
		Suffix:          " pupil mask",
		SuffixAutoColon: true,
		StopCharacter:   "done",
	}
	spinner, err := yacspin.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	spinner.Start()

	spinner.Message("loading")
	path := filepath.Join(*dir, instrument.PupilFile(*plane))
	im, err := pupil.Load(path, instrument.PupilPlaneScale)
	if err != nil {
		spinner.Stop()
		log.Fatal(err)
	}

	spinner.Message(fmt.Sprintf("binning %dx%d", *bin, *bin))
	im.ZeroBelow(*thresh)
	im, err = im.Bin(*bin)
	if err != nil {
		spinner.Stop()
		log.Fatal(err)
	}

	spinner.Message("writing " + *outfn)
	f, err := os.Create(*outfn)
	if err != nil {
		spinner.Stop()
		log.Fatal(err)
	}
	defer f.Close()
	err = writeFits(f, im)
	if err != nil {
		spinner.Stop()
		log.Fatal(err)
	}
	spinner.Stop()
}

// writeFits streams a pupil image to w as a float32 FITS file
func writeFits(w *os.File, im *pupil.Image) error {
	fits, err := fitsio.Create(w)
	if err != nil {
		return err
	}
	defer fits.Close()
	hdu := fitsio.NewImage(-32, []int{im.Nx, im.Ny})
	defer hdu.Close()
	err = hdu.Header().Append(
		fitsio.Card{Name: "PUPLSCAL", Value: im.Scale, Comment: "pupil plane scale, m/pix"},
	)
	if err != nil {
		return err
	}
	data := make([]float32, len(im.Data))
	for i, v := range im.Data {
		data[i] = float32(v)
	}
	err = hdu.Write(data)
	if err != nil {
		return err
	}
	return fits.Write(hdu)
}
