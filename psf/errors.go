package psf

import "fmt"

// RangeError reports a numeric request parameter outside its valid bounds.
type RangeError struct {
	What  string
	Value int
	Min   int
	Max   int
}

func (e RangeError) Error() string {
	return fmt.Sprintf("%s %d outside valid range [%d, %d]", e.What, e.Value, e.Min, e.Max)
}

// ValueError reports a request parameter whose value is not usable, along
// with the set of values that would have been accepted.
type ValueError struct {
	What  string
	Value string
	Msg   string
	Valid []string
}

func (e ValueError) Error() string {
	s := fmt.Sprintf("%s %q", e.What, e.Value)
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if len(e.Valid) > 0 {
		s += fmt.Sprintf(" (valid: %v)", e.Valid)
	}
	return s
}
