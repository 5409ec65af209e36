package pupil

import (
	"sync"

	"github.com/nasa-jpl/gopsf/render"
)

// Aperture is a fully prepared description of the telescope pupil for one
// wavelength and rendering configuration, ready to hand to the PSF
// renderer.  Apertures are immutable once constructed and safe to share.
type Aperture struct {
	// Wavelength the aperture was prepared for, nanometers.
	Wavelength float64

	// Diameter of the primary, meters.
	Diameter float64

	// Obscuration is the linear obscuration fraction.
	Obscuration float64

	// Pupil is the (thresholded, binned) transmission mask.
	Pupil *Image

	// Params is the rendering configuration the aperture was built with.
	Params render.Params
}

// Key identifies one distinct aperture construction.  All fields are
// comparable values, so two keys built from equal inputs are equal even if
// the rendering parameters came from different Params instances.
type Key struct {
	Plane      string // pupil mask category, "long" or "short"
	Bin        int
	Wavelength float64 // nm
	Params     render.Params
}

// Cache memoizes apertures by Key for the life of the process.  Entries are
// never evicted: the key space is bounded by the distinct configurations a
// run actually asks for, and rebuilding is far more expensive than holding
// the binned masks.
//
// The zero value is ready to use.  Cache is safe for concurrent use; the
// lock is held across builds so at most one build runs per key.
type Cache struct {
	mu        sync.Mutex
	apertures map[Key]*Aperture
}

// GetOrBuild returns the cached aperture for key, or invokes build, stores
// the result, and returns it.  A build error is returned to the caller and
// nothing is cached.
func (c *Cache) GetOrBuild(key Key, build func() (*Aperture, error)) (*Aperture, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ap, ok := c.apertures[key]; ok {
		return ap, nil
	}
	ap, err := build()
	if err != nil {
		return nil, err
	}
	if c.apertures == nil {
		c.apertures = make(map[Key]*Aperture)
	}
	c.apertures[key] = ap
	return ap, nil
}

// Len reports the number of cached apertures.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.apertures)
}
