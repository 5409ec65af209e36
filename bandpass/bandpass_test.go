package bandpass_test

import (
	"testing"

	"github.com/nasa-jpl/gopsf/bandpass"
)

func TestPartition(t *testing.T) {
	for _, name := range bandpass.Names() {
		long := bandpass.IsLongwave(name)
		short := bandpass.IsShortwave(name)
		if long == short {
			t.Errorf("%s: every filter belongs to exactly one pupil category (long=%v short=%v)", name, long, short)
		}
	}
}

func TestGetKnown(t *testing.T) {
	bp, err := bandpass.Get("J129")
	if err != nil {
		t.Fatal(err)
	}
	if bp.BlueLimit >= bp.EffectiveWavelength || bp.EffectiveWavelength >= bp.RedLimit {
		t.Errorf("J129 limits out of order: %g %g %g", bp.BlueLimit, bp.EffectiveWavelength, bp.RedLimit)
	}
}

func TestGetUnknown(t *testing.T) {
	_, err := bandpass.Get("K213")
	if err == nil {
		t.Fatal("expected an error for an unknown filter")
	}
}

func TestLiteralCategoriesAreNotFilters(t *testing.T) {
	if bandpass.IsLongwave("long") || bandpass.IsShortwave("short") {
		t.Error("the literal pupil categories are not filter names")
	}
}
