// Package store persists the backend's per-channel state: the caster's
// secret key and the most recent grimoire/session push.
package store

import (
	"context"
	"encoding/json"

	"github.com/botc-tools/overlay-ebs/internal/grimoire"
)

type Store interface {
	// PutSecretKey stores or replaces the caster key for a channel.
	PutSecretKey(ctx context.Context, channelID, key string) error
	// SecretKey returns the stored key; ok is false when none exists,
	// which is not an error.
	SecretKey(ctx context.Context, channelID string) (key string, ok bool, err error)
	// ChannelForKey resolves which channel a secret key authorizes.
	ChannelForKey(ctx context.Context, key string) (channelID string, ok bool, err error)

	// PutGrimoire replaces the channel's grimoire snapshot verbatim.
	PutGrimoire(ctx context.Context, channelID string, snapshot json.RawMessage) error
	Grimoire(ctx context.Context, channelID string) (snapshot json.RawMessage, ok bool, err error)

	PutSession(ctx context.Context, channelID string, sess grimoire.Session) error
	Session(ctx context.Context, channelID string) (sess grimoire.Session, ok bool, err error)
}
