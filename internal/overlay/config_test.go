package overlay

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValid_AcceptsInRangeConfig(t *testing.T) {
	c := Config{Players: 5, Radius: 210, X: 50, Y: 50, TokenSize: 10}
	require.True(t, c.Valid())
}

func TestValid_RejectsAnySingleOutOfRangeField(t *testing.T) {
	base := Config{Players: 5, Radius: 210, X: 50, Y: 50, TokenSize: 10}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative players", func(c *Config) { c.Players = -1 }},
		{"radius below min", func(c *Config) { c.Radius = MinRadius - 1 }},
		{"radius above max", func(c *Config) { c.Radius = 450 }},
		{"token size below min", func(c *Config) { c.TokenSize = MinTokenSize - 1 }},
		{"token size above max", func(c *Config) { c.TokenSize = MaxTokenSize + 1 }},
		{"x negative", func(c *Config) { c.X = -1 }},
		{"x above window", func(c *Config) { c.X = WindowMax + 1 }},
		{"y negative", func(c *Config) { c.Y = -1 }},
		{"y above window", func(c *Config) { c.Y = WindowMax + 1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := base
			tc.mutate(&c)
			require.False(t, c.Valid())
		})
	}
}

func TestValid_BoundaryValues(t *testing.T) {
	c := Config{Players: 0, Radius: MinRadius, X: 0, Y: WindowMax, TokenSize: MaxTokenSize}
	require.True(t, c.Valid())

	c = Config{Players: 20, Radius: MaxRadius, X: WindowMax, Y: 0, TokenSize: MinTokenSize}
	require.True(t, c.Valid())
}

func TestParse_MalformedInput(t *testing.T) {
	for _, raw := range []string{
		"",
		"not json",
		"[1,2,3]",
		`{"players":"five","radius":210,"x":50,"y":50,"tokenSize":10}`,
	} {
		_, err := Parse([]byte(raw))
		require.ErrorIs(t, err, ErrMalformedConfig, "input %q", raw)
	}
}

func TestParse_MissingFieldIsMalformed(t *testing.T) {
	_, err := Parse([]byte(`{"players":5,"radius":210,"x":50,"y":50}`))
	require.ErrorIs(t, err, ErrMalformedConfig)
}

func TestParse_OutOfRange(t *testing.T) {
	_, err := Parse([]byte(`{"players":5,"radius":450,"x":50,"y":50,"tokenSize":10}`))
	require.ErrorIs(t, err, ErrConfigOutOfRange)
}

func TestParse_ToleratesUnknownFields(t *testing.T) {
	c, err := Parse([]byte(`{"players":5,"radius":210,"x":50,"y":50,"tokenSize":10,"theme":"dark"}`))
	require.NoError(t, err)
	require.Equal(t, Config{Players: 5, Radius: 210, X: 50, Y: 50, TokenSize: 10}, c)
}

func TestParse_RoundTripFromDefault(t *testing.T) {
	serialized, err := json.Marshal(Default())
	require.NoError(t, err)

	parsed, err := Parse(serialized)
	require.NoError(t, err)
	require.Equal(t, Default(), parsed)
	require.True(t, parsed.Valid())
}

func TestMerge_UnspecifiedFieldsRetainPriorValue(t *testing.T) {
	base := Default()
	x := 30
	merged := Merge(base, Partial{X: &x})

	require.Equal(t, 30, merged.X)
	require.Equal(t, base.Y, merged.Y)
	require.Equal(t, base.Players, merged.Players)
	require.Equal(t, base.Radius, merged.Radius)
	require.Equal(t, base.TokenSize, merged.TokenSize)
}

func TestMerge_ToleratesOutOfRangeIntermediateState(t *testing.T) {
	base := Default()
	radius := 9000
	merged := Merge(base, Partial{Radius: &radius})
	require.Equal(t, 9000, merged.Radius)
	require.False(t, merged.Valid())
}
