package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/botc-tools/overlay-ebs/internal/channel"
)

// helper: poll the hub until a channel reports the wanted subscriber count
func waitForSubscribers(t *testing.T, h *channel.Hub, channelID string, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		reply := make(chan channel.Stats, 1)
		h.Inbox() <- channel.GetStats{ChannelID: channelID, Reply: reply}
		select {
		case stats := <-reply:
			if stats.Subscribers == want {
				return
			}
		case <-time.After(100 * time.Millisecond):
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d subscriber(s) on %s", want, channelID)
}

func TestHandler_MissingChannel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := channel.NewHub(ctx, zap.NewNop())
	srv := httptest.NewServer(Handler(h, zap.NewNop()))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("want 400 without channel param, got %d", resp.StatusCode)
	}
}

func TestHandler_DeliversBroadcastsAndUnsubscribesOnClose(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := channel.NewHub(ctx, zap.NewNop())
	srv := httptest.NewServer(Handler(h, zap.NewNop()))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?channel=chan-1"
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}

	waitForSubscribers(t, h, "chan-1", 1)

	h.Inbox() <- channel.Publish{
		ChannelID: "chan-1",
		Env:       channel.GrimoireEnvelope([]byte(`{"players":[{"role":"imp"}]}`), true),
	}

	readCtx, cancelRead := context.WithTimeout(ctx, time.Second)
	defer cancelRead()
	_, data, err := conn.Read(readCtx)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	var env channel.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("bad frame: %v", err)
	}
	if env.Type != channel.TypeGrimoire {
		t.Fatalf("want type %q, got %q", channel.TypeGrimoire, env.Type)
	}
	if env.IsActive == nil || !*env.IsActive {
		t.Fatalf("activation flag lost in transit: %+v", env)
	}

	// A clean close must unwind the handler and its hub registration.
	conn.Close(websocket.StatusNormalClosure, "done")
	waitForSubscribers(t, h, "chan-1", 0)
}
