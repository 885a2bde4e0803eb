package viewer

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/botc-tools/overlay-ebs/internal/channel"
	"github.com/botc-tools/overlay-ebs/internal/ebs"
	"github.com/botc-tools/overlay-ebs/internal/overlay"
	"github.com/botc-tools/overlay-ebs/internal/platform"
)

func boolPtr(b bool) *bool { return &b }

func TestRouter_ConfigBroadcastAppliesExactValues(t *testing.T) {
	r := NewRouter(zap.NewNop())

	r.HandleMessage(channel.Envelope{
		Type:     channel.TypeConfig,
		Settings: json.RawMessage(`{"players":5,"radius":210,"x":50,"y":50,"tokenSize":10}`),
	})

	v := r.View()
	require.Equal(t, overlay.Config{Players: 5, Radius: 210, X: 50, Y: 50, TokenSize: 10}, v.Config)
	require.Len(t, v.Tokens, 5)
	require.Equal(t, "50%", v.Top)
	require.Equal(t, "50%", v.Left)
}

func TestRouter_InvalidConfigLeavesStateUntouched(t *testing.T) {
	r := NewRouter(zap.NewNop())
	r.HandleMessage(channel.Envelope{
		Type:     channel.TypeConfig,
		Settings: json.RawMessage(`{"players":5,"radius":210,"x":50,"y":50,"tokenSize":10}`),
	})
	before, err := json.Marshal(r.View().Config)
	require.NoError(t, err)

	// Out of range, wrong type, malformed: none of these may shift state.
	r.HandleMessage(channel.Envelope{
		Type:     channel.TypeConfig,
		Settings: json.RawMessage(`{"players":5,"radius":450,"x":50,"y":50,"tokenSize":10}`),
	})
	r.HandleMessage(channel.Envelope{
		Type:     channel.TypeConfig,
		Settings: json.RawMessage(`{"players":"five"}`),
	})
	r.HandleMessage(channel.Envelope{
		Type:     channel.TypeConfig,
		Settings: json.RawMessage(`not json at all`),
	})

	after, err := json.Marshal(r.View().Config)
	require.NoError(t, err)
	require.Equal(t, string(before), string(after))
}

func TestRouter_InactiveGrimoireHidesOverlay(t *testing.T) {
	r := NewRouter(zap.NewNop())

	r.HandleMessage(channel.Envelope{
		Type:     channel.TypeGrimoire,
		Grimoire: json.RawMessage(`{"players":[{"role":"imp"}]}`),
		IsActive: boolPtr(false),
	})

	v := r.View()
	require.False(t, v.Visible, "overlay must stay hidden despite a valid grimoire payload")
	require.JSONEq(t, `{"players":[{"role":"imp"}]}`, string(v.Grimoire))
}

func TestRouter_ActiveGrimoireShowsOverlay(t *testing.T) {
	r := NewRouter(zap.NewNop())

	r.HandleMessage(channel.Envelope{
		Type:     channel.TypeGrimoire,
		Grimoire: json.RawMessage(`{"players":[]}`),
		IsActive: boolPtr(true),
	})
	require.True(t, r.View().Visible)

	// A later deactivation takes effect in arrival order.
	r.HandleMessage(channel.Envelope{Type: channel.TypeGrimoire, IsActive: boolPtr(false)})
	v := r.View()
	require.False(t, v.Visible)
	require.JSONEq(t, `{"players":[]}`, string(v.Grimoire), "nil payload keeps the prior grimoire")
}

func TestRouter_UnknownTypeIgnored(t *testing.T) {
	r := NewRouter(zap.NewNop())
	before := r.View()

	r.HandleMessage(channel.Envelope{Type: "telemetry"})

	require.Equal(t, before.Config, r.View().Config)
	require.Equal(t, before.Visible, r.View().Visible)
}

func TestRouter_ConfigChangeNotificationRefetch(t *testing.T) {
	r := NewRouter(zap.NewNop())

	r.HandleConfigChange(`{"players":8,"radius":300,"x":10,"y":90,"tokenSize":12}`)
	require.Equal(t, 8, r.View().Config.Players)

	// Malformed slot content keeps the prior state.
	r.HandleConfigChange(`{{{`)
	require.Equal(t, 8, r.View().Config.Players)
}

func TestRouter_BroadcastSupersedesDurableSnapshot(t *testing.T) {
	r := NewRouter(zap.NewNop())

	r.HandleConfigChange(`{"players":8,"radius":300,"x":10,"y":90,"tokenSize":12}`)
	r.HandleMessage(channel.Envelope{
		Type:     channel.TypeConfig,
		Settings: json.RawMessage(`{"players":6,"radius":150,"x":40,"y":60,"tokenSize":9}`),
	})

	require.Equal(t, overlay.Config{Players: 6, Radius: 150, X: 40, Y: 60, TokenSize: 9}, r.View().Config)
}

func TestRouter_AttachLoadsDurableConfigAndGrimoire(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		require.Equal(t, "/grimoire/chan-1", req.URL.Path)
		require.Equal(t, "Bearer jwt-token", req.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"isActive":true,"grimoire":{"players":[{"role":"chef"}]}}`))
	}))
	defer backend.Close()

	fake := platform.NewFake()
	fake.SetBroadcasterConfig(`{"players":7,"radius":250,"x":45,"y":55,"tokenSize":11}`)

	r := NewRouter(zap.NewNop())
	rendered := 0
	r.OnRender(func(View) { rendered++ })
	r.Attach(fake, ebs.NewClient(backend.URL, zap.NewNop()))

	// Registering after the slot was set misses the notification; the host
	// re-notifies on connect.
	fake.SetBroadcasterConfig(`{"players":7,"radius":250,"x":45,"y":55,"tokenSize":11}`)
	fake.Authorize(platform.Auth{ChannelID: "chan-1", Token: "jwt-token"})

	v := r.View()
	require.Equal(t, 7, v.Config.Players)
	require.True(t, v.Visible)
	require.JSONEq(t, `{"players":[{"role":"chef"}]}`, string(v.Grimoire))
	require.Positive(t, rendered)
}

func TestRouter_AttachGrimoireFetchFailureKeepsDefaults(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer backend.Close()

	fake := platform.NewFake()
	r := NewRouter(zap.NewNop())
	r.Attach(fake, ebs.NewClient(backend.URL, zap.NewNop()))

	fake.Authorize(platform.Auth{ChannelID: "chan-1", Token: "jwt-token"})

	v := r.View()
	require.Equal(t, overlay.Default(), v.Config)
	require.False(t, v.Visible)
	require.Nil(t, v.Grimoire)
}

func TestRouter_ContextChangeUpdatesResolution(t *testing.T) {
	fake := platform.NewFake()
	r := NewRouter(zap.NewNop())
	r.Attach(fake, ebs.NewClient("http://unused", zap.NewNop()))

	fake.PushContext(platform.Context{DisplayResolution: "845x480"}, []string{"displayResolution"})
	require.Equal(t, "845x480", r.View().DisplayResolution)

	fake.PushContext(platform.Context{DisplayResolution: "1920x1080"}, []string{"theme"})
	require.Equal(t, "845x480", r.View().DisplayResolution, "unrelated changes leave resolution alone")
}
