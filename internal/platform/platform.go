// Package platform abstracts the host platform's extension runtime: the
// identity callbacks, the broadcaster configuration slot, and the pub/sub
// broadcast surface. The editor and sync router only see this interface,
// so they can be exercised without any host runtime present.
package platform

import "github.com/botc-tools/overlay-ebs/internal/channel"

type Auth struct {
	ChannelID string
	UserID    string
	Token     string
}

type Context struct {
	DisplayResolution string
}

type Adapter interface {
	// OnAuthorized registers a callback fired once identity is available.
	OnAuthorized(fn func(Auth))
	// OnContext registers a callback fired on context changes; changed
	// names the fields that differ from the previous context.
	OnContext(fn func(ctx Context, changed []string))
	// OnConfigChanged registers a callback for configuration slot updates.
	// The notification carries no payload: consumers re-fetch via
	// BroadcasterConfig.
	OnConfigChanged(fn func())
	// BroadcasterConfig returns the current content of the broadcaster
	// configuration slot, false if nothing was ever stored.
	BroadcasterConfig() (string, bool)
	// SetBroadcasterConfig replaces the slot content and notifies
	// OnConfigChanged consumers.
	SetBroadcasterConfig(content string)
	// Listen registers a broadcast consumer.
	Listen(fn func(channel.Envelope))
	// Send fans an envelope out to every broadcast consumer.
	Send(env channel.Envelope)
}
