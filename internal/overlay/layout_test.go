package overlay

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLayout_ZeroPlayersYieldsNothing(t *testing.T) {
	c := Default()
	c.Players = 0
	require.Empty(t, Layout(c))
}

func TestLayout_PlacesOneTokenPerPlayer(t *testing.T) {
	c := Default()
	c.Players = 7
	tokens := Layout(c)
	require.Len(t, tokens, 7)
	for i, tok := range tokens {
		require.Equal(t, i, tok.Index)
		require.Equal(t, "clockToken clockToken-10", tok.Class)
	}
}

func TestLayout_FirstTokenSitsAtTwelveOClock(t *testing.T) {
	c := Default()
	c.Players = 12
	tokens := Layout(c)

	require.InDelta(t, 0, tokens[0].OffsetX, 1e-9)
	require.InDelta(t, -float64(c.Radius), tokens[0].OffsetY, 1e-9)
}

func TestLayout_TokensStayOnTheCircle(t *testing.T) {
	c := Default()
	c.Players = 9
	for _, tok := range Layout(c) {
		dist := math.Hypot(tok.OffsetX, tok.OffsetY)
		require.InDelta(t, float64(c.Radius), dist, 1e-9)
	}
}

func TestCenterStyle(t *testing.T) {
	c := Config{Players: 5, Radius: 210, X: 25, Y: 75, TokenSize: 10}
	top, left := c.CenterStyle()
	require.Equal(t, "75%", top)
	require.Equal(t, "25%", left)
}
