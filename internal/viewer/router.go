// Package viewer reconciles a viewer's three inbound update sources - the
// durable configuration fetched at connect time, live broadcast envelopes,
// and the backend grimoire snapshot - into one coherent rendered state.
package viewer

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/botc-tools/overlay-ebs/internal/channel"
	"github.com/botc-tools/overlay-ebs/internal/ebs"
	"github.com/botc-tools/overlay-ebs/internal/overlay"
	"github.com/botc-tools/overlay-ebs/internal/platform"
)

// View is what a renderer positions tokens from. Visible is false until a
// grimoire source marks the overlay active.
type View struct {
	Config            overlay.Config
	Tokens            []overlay.Token
	Top               string
	Left              string
	Grimoire          json.RawMessage
	Visible           bool
	DisplayResolution string
}

type Router struct {
	mu         sync.Mutex
	config     overlay.Config
	grimoire   json.RawMessage
	visible    bool
	resolution string
	log        *zap.Logger
	onRender   func(View)
}

func NewRouter(log *zap.Logger) *Router {
	return &Router{config: overlay.Default(), log: log}
}

// OnRender registers a callback invoked after every applied update.
func (r *Router) OnRender(fn func(View)) {
	r.mu.Lock()
	r.onRender = fn
	r.mu.Unlock()
}

// Attach registers the router against the host platform surfaces: the
// durable config slot, the broadcast channel, and the backend grimoire
// fetch on authorization.
func (r *Router) Attach(adapter platform.Adapter, client *ebs.Client) {
	adapter.OnConfigChanged(func() {
		// Change notifications carry no payload; re-fetch the slot.
		if content, ok := adapter.BroadcasterConfig(); ok {
			r.HandleConfigChange(content)
		}
	})

	adapter.Listen(r.HandleMessage)

	adapter.OnAuthorized(func(auth platform.Auth) {
		state, err := client.FetchGrimoire(context.Background(), auth.ChannelID, auth.Token)
		if err != nil {
			// Defaults stay in place; nothing retries.
			r.log.Warn("grimoire fetch failed", zap.Error(err))
			return
		}
		r.applyGrimoire(state.Grimoire, state.IsActive)
	})

	adapter.OnContext(func(ctx platform.Context, changed []string) {
		for _, field := range changed {
			if field == "displayResolution" {
				r.setResolution(ctx.DisplayResolution)
			}
		}
	})
}

// HandleMessage applies one broadcast envelope. Envelopes are applied in
// arrival order; an envelope that fails validation is dropped and logged,
// leaving previously-applied state untouched.
func (r *Router) HandleMessage(env channel.Envelope) {
	switch env.Type {
	case channel.TypeConfig:
		r.applyConfig(env.Settings)
	case channel.TypeGrimoire:
		isActive := false
		if env.IsActive != nil {
			isActive = *env.IsActive
		}
		r.applyGrimoire(env.Grimoire, isActive)
	default:
		// Unknown types pass by without error.
	}
}

// HandleConfigChange applies the durable slot content re-fetched after a
// change notification.
func (r *Router) HandleConfigChange(raw string) {
	r.applyConfig([]byte(raw))
}

func (r *Router) applyConfig(data []byte) {
	config, err := overlay.Parse(data)
	if err != nil {
		r.log.Warn("rejected config", zap.Error(err))
		return
	}
	r.mu.Lock()
	r.config = config
	r.mu.Unlock()
	r.render()
}

func (r *Router) applyGrimoire(grim json.RawMessage, isActive bool) {
	r.mu.Lock()
	if grim != nil {
		r.grimoire = grim
	}
	r.visible = isActive
	r.mu.Unlock()
	r.render()
}

func (r *Router) setResolution(res string) {
	r.mu.Lock()
	r.resolution = res
	r.mu.Unlock()
	r.render()
}

func (r *Router) View() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view()
}

func (r *Router) view() View {
	top, left := r.config.CenterStyle()
	return View{
		Config:            r.config,
		Tokens:            overlay.Layout(r.config),
		Top:               top,
		Left:              left,
		Grimoire:          r.grimoire,
		Visible:           r.visible,
		DisplayResolution: r.resolution,
	}
}

func (r *Router) render() {
	r.mu.Lock()
	fn := r.onRender
	v := r.view()
	r.mu.Unlock()
	if fn != nil {
		fn(v)
	}
}
