package kahawai

import (
	"fmt"
	"strconv"
	"strings"
)

// FPS represents a frame rate supported by the transport.
type FPS uint8

// Supported frame rates.
const (
	FPSUnsupported FPS = iota // Distinguished marker for rates outside the supported set.
	P23_98
	P24
	P25
	P29_97
	P30
	P50
	P60
	P119_88
)

// SupportedFPS lists every rate classification can produce.
var SupportedFPS = []FPS{P23_98, P24, P25, P29_97, P30, P50, P60, P119_88}

// Valid reports whether the rate belongs to the supported set.
func (f FPS) Valid() bool {
	for _, s := range SupportedFPS {
		if s == f {
			return true
		}
	}
	return false
}

// String returns the human-readable string representation of an FPS.
func (f FPS) String() string {
	switch f {
	case P23_98:
		return "23.98p"
	case P24:
		return "24p"
	case P25:
		return "25p"
	case P29_97:
		return "29.97p"
	case P30:
		return "30p"
	case P50:
		return "50p"
	case P60:
		return "60p"
	case P119_88:
		return "119.88p"
	default:
		return "UNSUPPORTED"
	}
}

// Rational returns the exact nominal frame rate.
func (f FPS) Rational() Rational {
	switch f {
	case P23_98:
		return Rational{Num: 24000, Den: 1001} //nolint:mnd
	case P24:
		return Rational{Num: 24, Den: 1} //nolint:mnd
	case P25:
		return Rational{Num: 25, Den: 1} //nolint:mnd
	case P29_97:
		return Rational{Num: 30000, Den: 1001} //nolint:mnd
	case P30:
		return Rational{Num: 30, Den: 1} //nolint:mnd
	case P50:
		return Rational{Num: 50, Den: 1} //nolint:mnd
	case P60:
		return Rational{Num: 60, Den: 1} //nolint:mnd
	case P119_88:
		return Rational{Num: 120000, Den: 1001} //nolint:mnd
	default:
		return Rational{}
	}
}

// Rational is a frame rate expressed as a fraction.
type Rational struct {
	Num int64
	Den int64
}

func (r Rational) String() string {
	if r.Den == 1 {
		return strconv.FormatInt(r.Num, 10)
	}
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// ParseRational parses "num/den" or a bare integer such as "25".
func ParseRational(s string) (r Rational, err error) {
	s = strings.TrimSpace(s)
	num, den, found := strings.Cut(s, "/")
	if r.Num, err = strconv.ParseInt(strings.TrimSpace(num), 10, 64); err != nil {
		return Rational{}, fmt.Errorf("invalid frame rate numerator %q: %w", s, err)
	}
	r.Den = 1
	if found {
		if r.Den, err = strconv.ParseInt(strings.TrimSpace(den), 10, 64); err != nil {
			return Rational{}, fmt.Errorf("invalid frame rate denominator %q: %w", s, err)
		}
	}
	return r, nil
}
