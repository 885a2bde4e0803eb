// Package grimoire holds the live game-state shapes relayed from the
// companion tool to viewers. The core treats them as opaque pass-through:
// nothing here is validated beyond being JSON.
package grimoire

import (
	"bytes"
	"encoding/json"
)

type Player struct {
	Role string `json:"role"`
	Name string `json:"name,omitempty"`
	ID   string `json:"id,omitempty"`
}

// Snapshot is the grimoire as the companion tool sees it.
type Snapshot struct {
	Session  string          `json:"session"`
	PlayerID string          `json:"playerId"`
	IsHost   bool            `json:"isHost"`
	Players  []Player        `json:"players"`
	Bluffs   json.RawMessage `json:"bluffs,omitempty"`
	Edition  json.RawMessage `json:"edition,omitempty"`
}

// Session is the activation record pushed alongside the grimoire. IsActive
// gates whether viewer overlays render at all.
type Session struct {
	Session  string `json:"session"`
	PlayerID string `json:"playerId"`
	IsActive bool   `json:"isActive"`
}

// Equal compares two snapshots by their canonical JSON encoding. The
// companion poller uses this for delta detection before pushing.
func Equal(a, b Snapshot) bool {
	aj, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bj, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(aj, bj)
}
