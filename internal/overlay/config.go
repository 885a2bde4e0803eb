package overlay

import (
	"encoding/json"
	"errors"
)

var ErrMalformedConfig = errors.New("malformed config")
var ErrConfigOutOfRange = errors.New("config out of range")

const (
	MinTokenSize = 8
	MaxTokenSize = 17

	MinRadius       = 100
	MaxRadius       = 400
	RadiusIncrement = 10

	// WindowMax bounds x/y, which are percentages of the viewport.
	WindowMax = 100

	MaxPlayers = 20
)

// Config is the persisted/broadcast overlay configuration. Field names
// match the wire format stored in the host configuration slot.
type Config struct {
	Players   int `json:"players"`
	Radius    int `json:"radius"`
	X         int `json:"x"`
	Y         int `json:"y"`
	TokenSize int `json:"tokenSize"`
}

func Default() Config {
	return Config{
		Players:   12,
		Radius:    210,
		X:         50,
		Y:         50,
		TokenSize: 10,
	}
}

// Valid reports whether every field sits inside its closed range. A config
// failing any single check is rejected wholesale; nothing is default-filled.
func (c Config) Valid() bool {
	if c.Players < 0 {
		return false
	}
	if c.Radius < MinRadius || c.Radius > MaxRadius {
		return false
	}
	if c.TokenSize < MinTokenSize || c.TokenSize > MaxTokenSize {
		return false
	}
	if c.X < 0 || c.X > WindowMax {
		return false
	}
	if c.Y < 0 || c.Y > WindowMax {
		return false
	}
	return true
}

// Parse decodes and validates a config received from an external source
// (the host configuration slot or a broadcast message). Missing or
// wrong-typed fields are a parse failure, out-of-range values a validation
// failure; callers keep their prior state on either.
func Parse(data []byte) (Config, error) {
	var candidate struct {
		Players   *int `json:"players"`
		Radius    *int `json:"radius"`
		X         *int `json:"x"`
		Y         *int `json:"y"`
		TokenSize *int `json:"tokenSize"`
	}
	if err := json.Unmarshal(data, &candidate); err != nil {
		return Config{}, ErrMalformedConfig
	}
	if candidate.Players == nil || candidate.Radius == nil || candidate.X == nil ||
		candidate.Y == nil || candidate.TokenSize == nil {
		return Config{}, ErrMalformedConfig
	}
	c := Config{
		Players:   *candidate.Players,
		Radius:    *candidate.Radius,
		X:         *candidate.X,
		Y:         *candidate.Y,
		TokenSize: *candidate.TokenSize,
	}
	if !c.Valid() {
		return Config{}, ErrConfigOutOfRange
	}
	return c, nil
}

// Partial carries an editor mutation; nil fields retain their prior value.
type Partial struct {
	Players   *int `json:"players,omitempty"`
	Radius    *int `json:"radius,omitempty"`
	X         *int `json:"x,omitempty"`
	Y         *int `json:"y,omitempty"`
	TokenSize *int `json:"tokenSize,omitempty"`
}

// Merge shallow-merges a partial into a base config. No validation happens
// here: out-of-range intermediate states (mid-drag) are tolerated until an
// explicit save.
func Merge(base Config, p Partial) Config {
	next := base
	if p.Players != nil {
		next.Players = *p.Players
	}
	if p.Radius != nil {
		next.Radius = *p.Radius
	}
	if p.X != nil {
		next.X = *p.X
	}
	if p.Y != nil {
		next.Y = *p.Y
	}
	if p.TokenSize != nil {
		next.TokenSize = *p.TokenSize
	}
	return next
}
