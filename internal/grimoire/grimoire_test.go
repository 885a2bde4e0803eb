package grimoire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEqual(t *testing.T) {
	a := Snapshot{Session: "s1", Players: []Player{{Role: "imp"}}}
	b := Snapshot{Session: "s1", Players: []Player{{Role: "imp"}}}
	require.True(t, Equal(a, b))

	b.Players[0].Role = "chef"
	require.False(t, Equal(a, b))

	require.True(t, Equal(Snapshot{}, Snapshot{}))
}

func TestEqual_OptionalFieldsParticipate(t *testing.T) {
	a := Snapshot{Session: "s1"}
	b := Snapshot{Session: "s1", Bluffs: []byte(`["imp"]`)}
	require.False(t, Equal(a, b))
}
