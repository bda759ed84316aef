// Package rate classifies frame rates into the set the transport can carry.
package rate

import (
	"math"
	"math/big"
	"strconv"

	"github.com/ugparu/kahawai"
	"github.com/ugparu/kahawai/utils"
)

// Band is a tolerance window of hundredths of fps mapped to a supported rate. Bounds are inclusive.
type Band struct {
	Target kahawai.FPS
	Lower  int64
	Upper  int64
}

// Contains reports whether hundredths lies inside the band.
func (b Band) Contains(hundredths int64) bool {
	return hundredths >= b.Lower && hundredths <= b.Upper
}

// bands must stay pairwise disjoint. Where nominal rates lie closer than the
// tolerance the window is split between them; 29.97p keeps its full window
// so drifting NTSC fractions are still recognized.
var bands = [...]Band{
	{kahawai.P23_98, 2398 - 100, 2398},
	{kahawai.P24, 2399, 2449},
	{kahawai.P25, 2450, 2500 + 100},
	{kahawai.P29_97, 2997 - 100, 2997 + 100},
	{kahawai.P30, 2997 + 101, 3000 + 100},
	{kahawai.P50, 5000 - 100, 5000 + 100},
	{kahawai.P60, 6000 - 100, 6000 + 100},
	{kahawai.P119_88, 11988 - 100, 11988 + 100},
}

// Bands returns a copy of the classification table in lookup order.
func Bands() []Band {
	out := make([]Band, len(bands))
	copy(out, bands[:])
	return out
}

var hundred = big.NewInt(100) //nolint:mnd

// exactHundredths returns floor(num*100/den) without overflow.
func exactHundredths(r kahawai.Rational) (*big.Int, error) {
	if r.Den == 0 {
		return nil, &utils.InvalidArgumentError{
			Field:  "frame rate",
			Value:  r.String(),
			Reason: "zero denominator",
		}
	}
	num := new(big.Int).Mul(big.NewInt(r.Num), hundred)
	den := big.NewInt(r.Den)
	if den.Sign() < 0 {
		num.Neg(num)
		den.Neg(den)
	}
	// Euclidean division with a positive divisor is a floor.
	return num.Div(num, den), nil
}

// Hundredths returns floor(num*100/den). Results outside int64 are rejected.
func Hundredths(r kahawai.Rational) (int64, error) {
	h, err := exactHundredths(r)
	if err != nil {
		return 0, err
	}
	if !h.IsInt64() {
		return 0, &utils.InvalidArgumentError{
			Field:  "frame rate",
			Value:  r.String(),
			Reason: "out of range",
		}
	}
	return h.Int64(), nil
}

// Classify maps r onto a supported frame rate.
// It returns kahawai.FPSUnsupported with an UnsupportedRateError when no band matches.
func Classify(r kahawai.Rational) (kahawai.FPS, error) {
	exact, err := exactHundredths(r)
	if err != nil {
		return kahawai.FPSUnsupported, err
	}
	if !exact.IsInt64() {
		h := int64(math.MaxInt64)
		if exact.Sign() < 0 {
			h = math.MinInt64
		}
		return kahawai.FPSUnsupported, &utils.UnsupportedRateError{Rate: r, Hundredths: h}
	}
	h := exact.Int64()
	for _, b := range bands {
		if b.Contains(h) {
			return b.Target, nil
		}
	}
	return kahawai.FPSUnsupported, &utils.UnsupportedRateError{Rate: r, Hundredths: h}
}

func (b Band) String() string {
	return b.Target.String() + " [" + strconv.FormatInt(b.Lower, 10) + ", " + strconv.FormatInt(b.Upper, 10) + "]"
}
