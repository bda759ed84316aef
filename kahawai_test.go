package kahawai

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRational(t *testing.T) {
	t.Parallel()

	tests := map[string]Rational{
		"30000/1001":     {Num: 30000, Den: 1001},
		"25":             {Num: 25, Den: 1},
		" 60000 / 1001 ": {Num: 60000, Den: 1001},
		"25/0":           {Num: 25, Den: 0},
	}
	for in, want := range tests {
		got, err := ParseRational(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "abc", "30000/", "/1001", "29.97"} {
		_, err := ParseRational(in)
		require.Error(t, err, in)
	}
}

func TestRationalString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "30000/1001", Rational{Num: 30000, Den: 1001}.String())
	require.Equal(t, "25", Rational{Num: 25, Den: 1}.String())
}

func TestFPS(t *testing.T) {
	t.Parallel()

	require.False(t, FPSUnsupported.Valid())
	require.Equal(t, "UNSUPPORTED", FPSUnsupported.String())
	require.Equal(t, Rational{}, FPSUnsupported.Rational())

	seen := map[string]bool{}
	for _, f := range SupportedFPS {
		require.True(t, f.Valid(), f)
		require.NotEqual(t, Rational{}, f.Rational(), f)
		require.False(t, seen[f.String()], f)
		seen[f.String()] = true
	}
	require.Equal(t, "29.97p", P29_97.String())
	require.Equal(t, Rational{Num: 120000, Den: 1001}, P119_88.Rational())
}

func TestInitFlagString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "NONE", InitFlag(0).String())
	require.Equal(t, "BIND_NUMA|DEV_AUTO_START_STOP", (FlagBindNUMA | FlagDevAutoStartStop).String())
	require.Equal(t, "BIND_NUMA|0x100", (FlagBindNUMA | 1<<8).String())
	require.Equal(t, "DEBUG", LogLevelDebug.String())
}
