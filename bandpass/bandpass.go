// Package bandpass describes the wide-field camera filter set.  The PSF
// code needs only three things from a filter: which pupil mask applies to
// it, its effective wavelength, and its blue/red cutoffs for chromatic
// interpolation grids.  Full throughput curves live with the rendering
// engine, not here.
package bandpass

import (
	"fmt"
	"sort"
)

// Bandpass is one instrument filter.  Wavelengths are in nanometers.
type Bandpass struct {
	Name                string
	BlueLimit           float64
	RedLimit            float64
	EffectiveWavelength float64
}

// The filter set, with cutoffs and effective wavelengths from the
// instrument throughput tables.
var bands = map[string]Bandpass{
	"Z087": {Name: "Z087", BlueLimit: 760, RedLimit: 977, EffectiveWavelength: 869},
	"Y106": {Name: "Y106", BlueLimit: 927, RedLimit: 1192, EffectiveWavelength: 1060},
	"J129": {Name: "J129", BlueLimit: 1131, RedLimit: 1454, EffectiveWavelength: 1293},
	"W149": {Name: "W149", BlueLimit: 927, RedLimit: 2000, EffectiveWavelength: 1458},
	"H158": {Name: "H158", BlueLimit: 1380, RedLimit: 1774, EffectiveWavelength: 1577},
	"F184": {Name: "F184", BlueLimit: 1683, RedLimit: 2000, EffectiveWavelength: 1837},
}

// Longwave and Shortwave partition the filters by which pupil mask applies
// to them.
var (
	Longwave  = []string{"J129", "W149", "H158", "F184"}
	Shortwave = []string{"Z087", "Y106"}
)

// Names returns the sorted list of all filter names.
func Names() []string {
	out := make([]string, 0, len(bands))
	for k := range bands {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Get looks up a filter by name.
func Get(name string) (Bandpass, error) {
	bp, ok := bands[name]
	if !ok {
		return Bandpass{}, fmt.Errorf("bandpass %q is not an instrument filter, valid names are %v", name, Names())
	}
	return bp, nil
}

// IsLongwave reports whether name is one of the long-wavelength filters.
func IsLongwave(name string) bool {
	return contains(Longwave, name)
}

// IsShortwave reports whether name is one of the short-wavelength filters.
func IsShortwave(name string) bool {
	return contains(Shortwave, name)
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
