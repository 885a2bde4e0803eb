// Package channel fans broadcast envelopes out to every viewer subscribed
// to a broadcaster's channel. It stands in for the host platform's pub/sub
// on the EBS side: the companion tool's pushes arrive over HTTP and leave
// here as envelopes on each subscriber's outbox.
package channel

import (
	"context"

	"go.uber.org/zap"
)

type Msg interface{ isHubMsg() }

type Subscribe struct {
	ChannelID string
	ClientID  string
	Outbox    chan Envelope
}

type Unsubscribe struct {
	ChannelID string
	ClientID  string
}

type Publish struct {
	ChannelID string
	Env       Envelope
}

// GetStats is test-only: reflect subscriber counts without data races.
type GetStats struct {
	ChannelID string
	Reply     chan Stats
}

type Shutdown struct{}

func (Subscribe) isHubMsg()   {}
func (Unsubscribe) isHubMsg() {}
func (Publish) isHubMsg()     {}
func (GetStats) isHubMsg()    {}
func (Shutdown) isHubMsg()    {}

type Stats struct {
	Subscribers int
}

type Hub struct {
	inbox    chan Msg
	channels map[string]map[string]chan Envelope
	ctx      context.Context
	cancel   context.CancelFunc
	log      *zap.Logger
}

func NewHub(parent context.Context, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:    make(chan Msg, 64),
		channels: make(map[string]map[string]chan Envelope),
		ctx:      ctx,
		cancel:   cancel,
		log:      log,
	}
	go h.loop()
	return h
}

// Expose the inbox so the HTTP/WS layers can send messages.
func (h *Hub) Inbox() chan<- Msg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case Subscribe:
				subs := h.channels[msg.ChannelID]
				if subs == nil {
					subs = make(map[string]chan Envelope)
					h.channels[msg.ChannelID] = subs
				}
				subs[msg.ClientID] = msg.Outbox

			case Unsubscribe:
				subs := h.channels[msg.ChannelID]
				// The slow-drop path closes as it deletes, so the outbox
				// may already be gone; only close what is still registered.
				if ch, ok := subs[msg.ClientID]; ok {
					close(ch)
					delete(subs, msg.ClientID)
				}
				if len(subs) == 0 {
					delete(h.channels, msg.ChannelID)
				}

			case Publish:
				h.broadcast(msg.ChannelID, msg.Env)

			case GetStats:
				msg.Reply <- Stats{Subscribers: len(h.channels[msg.ChannelID])}

			case Shutdown:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) broadcast(channelID string, env Envelope) {
	subs := h.channels[channelID]
	for id, ch := range subs {
		select {
		case ch <- env:
		default:
			// Subscriber is slow/full - drop them.
			h.log.Warn("dropping slow subscriber",
				zap.String("channel", channelID), zap.String("client", id))
			close(ch)
			delete(subs, id)
		}
	}
}

func (h *Hub) shutdown() {
	for _, subs := range h.channels {
		for id, ch := range subs {
			close(ch)
			delete(subs, id)
		}
	}
	clear(h.channels)
	h.cancel()
}
