// Package ebs is the client side of the extension backend service contract:
// secret key fetch/save for the config editor, grimoire fetch for viewers,
// and grimoire/session pushes for the companion tool.
package ebs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/botc-tools/overlay-ebs/internal/grimoire"
)

const (
	casterResource   = "caster"
	grimoireResource = "grimoire"
	sessionResource  = "session"
)

type Client struct {
	baseURL string
	httpc   *http.Client
	log     *zap.Logger
}

func NewClient(baseURL string, log *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   http.DefaultClient,
		log:     log,
	}
}

// FetchSecretKey retrieves a previously stored key for a channel. Absence
// is a valid outcome, not an error: no key has been configured yet.
func (c *Client) FetchSecretKey(ctx context.Context, channelID, token string) (string, bool, error) {
	url := fmt.Sprintf("%s/%s/%s", c.baseURL, casterResource, channelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("fetch secret key: status %d", resp.StatusCode)
	}

	var body struct {
		SecretKey string `json:"secretKey"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", false, err
	}
	return body.SecretKey, body.SecretKey != "", nil
}

// SaveSecretKey persists a key fire-and-forget: the request runs on its own
// goroutine and failures are swallowed into the log.
func (c *Client) SaveSecretKey(channelID, token, key string) {
	body, _ := json.Marshal(struct {
		SecretKey string `json:"secretKey"`
		ChannelID string `json:"channelId"`
	}{SecretKey: key, ChannelID: channelID})

	url := fmt.Sprintf("%s/%s", c.baseURL, casterResource)
	go func() {
		req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			c.log.Warn("save secret key", zap.Error(err))
			return
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := c.httpc.Do(req)
		if err != nil {
			c.log.Warn("save secret key", zap.Error(err))
			return
		}
		resp.Body.Close()
	}()
}

// GrimoireState is the viewer-facing load-time response.
type GrimoireState struct {
	IsActive bool            `json:"isActive,omitempty"`
	Grimoire json.RawMessage `json:"grimoire,omitempty"`
}

// FetchGrimoire loads the current grimoire and activation flag for a
// channel. One request per trigger event, no retry: a failed response
// simply leaves the viewer's defaults in place.
func (c *Client) FetchGrimoire(ctx context.Context, channelID, token string) (GrimoireState, error) {
	url := fmt.Sprintf("%s/%s/%s", c.baseURL, grimoireResource, channelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return GrimoireState{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return GrimoireState{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return GrimoireState{}, fmt.Errorf("fetch grimoire: status %d", resp.StatusCode)
	}

	var state GrimoireState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return GrimoireState{}, err
	}
	return state, nil
}

// PushGrimoire sends a grimoire snapshot on the companion tool's behalf,
// authorized by the secret key path segment.
func (c *Client) PushGrimoire(ctx context.Context, secretKey string, snap grimoire.Snapshot) error {
	return c.post(ctx, fmt.Sprintf("%s/%s/%s", c.baseURL, grimoireResource, secretKey), snap)
}

// PushSession sends the session/activation record.
func (c *Client) PushSession(ctx context.Context, secretKey string, sess grimoire.Session) error {
	return c.post(ctx, fmt.Sprintf("%s/%s/%s", c.baseURL, sessionResource, secretKey), sess)
}

// Beacon is the page-unload path: best-effort session deactivation with no
// delivery confirmation.
func (c *Client) Beacon(secretKey string, sess grimoire.Session) {
	url := fmt.Sprintf("%s/%s/%s", c.baseURL, sessionResource, secretKey)
	go func() {
		if err := c.post(context.Background(), url, sess); err != nil {
			c.log.Warn("unload beacon", zap.Error(err))
		}
	}()
}

func (c *Client) post(ctx context.Context, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("post %s: status %d", url, resp.StatusCode)
	}
	return nil
}
