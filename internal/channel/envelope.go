package channel

import "encoding/json"

const (
	TypeConfig   = "config"
	TypeGrimoire = "grimoire"
)

// Envelope is the broadcast wire format delivered over the host pub/sub
// channel. Exactly one of Settings/Grimoire is populated depending on Type;
// consumers switch on Type and ignore unknown values without error.
type Envelope struct {
	Type     string          `json:"type"`
	Settings json.RawMessage `json:"settings,omitempty"`
	Grimoire json.RawMessage `json:"grimoire,omitempty"`
	IsActive *bool           `json:"isActive,omitempty"`
}

func ConfigEnvelope(settings json.RawMessage) Envelope {
	return Envelope{Type: TypeConfig, Settings: settings}
}

func GrimoireEnvelope(grim json.RawMessage, isActive bool) Envelope {
	return Envelope{Type: TypeGrimoire, Grimoire: grim, IsActive: &isActive}
}
