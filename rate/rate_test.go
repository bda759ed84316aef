package rate

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ugparu/kahawai"
	"github.com/ugparu/kahawai/utils"
)

func TestBandsDisjoint(t *testing.T) {
	t.Parallel()

	bs := Bands()
	require.Len(t, bs, len(kahawai.SupportedFPS))
	for i, a := range bs {
		require.LessOrEqual(t, a.Lower, a.Upper, a.String())
		for _, b := range bs[i+1:] {
			overlap := a.Lower <= b.Upper && b.Lower <= a.Upper
			require.False(t, overlap, "%v overlaps %v", a, b)
		}
	}
}

func TestBandsCopy(t *testing.T) {
	t.Parallel()

	bs := Bands()
	bs[0].Target = kahawai.FPSUnsupported
	require.Equal(t, kahawai.P23_98, Bands()[0].Target)
}

func TestClassifyNominal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rate kahawai.Rational
		want kahawai.FPS
	}{
		{kahawai.Rational{Num: 24000, Den: 1001}, kahawai.P23_98},
		{kahawai.Rational{Num: 24, Den: 1}, kahawai.P24},
		{kahawai.Rational{Num: 25, Den: 1}, kahawai.P25},
		{kahawai.Rational{Num: 30000, Den: 1001}, kahawai.P29_97},
		{kahawai.Rational{Num: 2997, Den: 100}, kahawai.P29_97},
		{kahawai.Rational{Num: 30, Den: 1}, kahawai.P29_97},
		{kahawai.Rational{Num: 3099, Den: 100}, kahawai.P30},
		{kahawai.Rational{Num: 50, Den: 1}, kahawai.P50},
		{kahawai.Rational{Num: 100, Den: 2}, kahawai.P50},
		{kahawai.Rational{Num: 60, Den: 1}, kahawai.P60},
		{kahawai.Rational{Num: 60000, Den: 1001}, kahawai.P60},
		{kahawai.Rational{Num: 120000, Den: 1001}, kahawai.P119_88},
		{kahawai.Rational{Num: -25, Den: -1}, kahawai.P25},
	}
	for _, tt := range tests {
		got, err := Classify(tt.rate)
		require.NoError(t, err, tt.rate)
		require.Equal(t, tt.want, got, tt.rate)
	}
}

func TestClassifyBoundaries(t *testing.T) {
	t.Parallel()

	for _, b := range Bands() {
		for _, h := range []int64{b.Lower, b.Upper} {
			got, err := Classify(kahawai.Rational{Num: h, Den: 100})
			require.NoError(t, err)
			require.Equal(t, b.Target, got, "hundredths %d", h)
		}
	}

	got, err := Classify(kahawai.Rational{Num: 2897, Den: 100})
	require.NoError(t, err)
	require.Equal(t, kahawai.P29_97, got)
	got, err = Classify(kahawai.Rational{Num: 3097, Den: 100})
	require.NoError(t, err)
	require.Equal(t, kahawai.P29_97, got)
}

func TestClassifyNominalRationals(t *testing.T) {
	t.Parallel()

	for _, f := range kahawai.SupportedFPS {
		if f == kahawai.P30 {
			continue
		}
		got, err := Classify(f.Rational())
		require.NoError(t, err, f)
		require.Equal(t, f, got)
	}
}

func TestClassifyUnsupported(t *testing.T) {
	t.Parallel()

	for _, r := range []kahawai.Rational{
		{Num: 15, Den: 1},
		{Num: 2297, Den: 100},
		{Num: 2601, Den: 100},
		{Num: 2896, Den: 100},
		{Num: 3101, Den: 100},
		{Num: 48, Den: 1},
		{Num: 240, Den: 1},
		{Num: 0, Den: 1},
		{Num: -25, Den: 1},
		{Num: 30 + 1<<62, Den: 1},
		{Num: 25 + 1<<62, Den: 1},
		{Num: math.MaxInt64, Den: 1},
		{Num: math.MinInt64, Den: 1},
		{Num: math.MinInt64, Den: -1},
		{Num: 3000, Den: math.MinInt64},
	} {
		got, err := Classify(r)
		require.Equal(t, kahawai.FPSUnsupported, got, r)
		target := &utils.UnsupportedRateError{}
		require.ErrorAs(t, err, &target)
		require.Equal(t, r, target.Rate)
	}
}

func TestClassifyZeroDenominator(t *testing.T) {
	t.Parallel()

	got, err := Classify(kahawai.Rational{Num: 25, Den: 0})
	require.Equal(t, kahawai.FPSUnsupported, got)
	target := &utils.InvalidArgumentError{}
	require.ErrorAs(t, err, &target)
}

func TestHundredthsFloor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rate kahawai.Rational
		want int64
	}{
		{kahawai.Rational{Num: 30000, Den: 1001}, 2997},
		{kahawai.Rational{Num: 24000, Den: 1001}, 2397},
		{kahawai.Rational{Num: 120000, Den: 1001}, 11988},
		{kahawai.Rational{Num: 1, Den: 3}, 33},
		{kahawai.Rational{Num: -1, Den: 3}, -34},
		{kahawai.Rational{Num: 1, Den: -3}, -34},
		{kahawai.Rational{Num: math.MaxInt64 / 100, Den: 1}, math.MaxInt64 / 100 * 100},
		{kahawai.Rational{Num: math.MinInt64, Den: math.MinInt64}, 100},
		{kahawai.Rational{Num: math.MaxInt64, Den: math.MaxInt64}, 100},
		{kahawai.Rational{Num: 3000, Den: math.MinInt64}, -1},
	}
	for _, tt := range tests {
		got, err := Hundredths(tt.rate)
		require.NoError(t, err)
		require.Equal(t, tt.want, got, tt.rate)
	}
}

func TestHundredthsOutOfRange(t *testing.T) {
	t.Parallel()

	for _, r := range []kahawai.Rational{
		{Num: 30 + 1<<62, Den: 1},
		{Num: math.MaxInt64, Den: 1},
		{Num: math.MinInt64, Den: 1},
		{Num: math.MinInt64, Den: -1},
	} {
		_, err := Hundredths(r)
		target := &utils.InvalidArgumentError{}
		require.ErrorAs(t, err, &target, r)
	}
}

func TestClassifyConcurrent(t *testing.T) {
	t.Parallel()

	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				got, err := Classify(kahawai.Rational{Num: 30000, Den: 1001})
				if err != nil || got != kahawai.P29_97 {
					t.Errorf("got %v, %v", got, err)
					return
				}
			}
		}()
	}
	wg.Wait()
}
