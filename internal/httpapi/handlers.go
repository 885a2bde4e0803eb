package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/botc-tools/overlay-ebs/internal/channel"
	"github.com/botc-tools/overlay-ebs/internal/grimoire"
	"github.com/botc-tools/overlay-ebs/internal/secret"
	"github.com/botc-tools/overlay-ebs/internal/store"
)

type API struct {
	store     store.Store
	hub       *channel.Hub
	jwtSecret []byte
	log       *zap.Logger
}

func New(st store.Store, hub *channel.Hub, jwtSecret []byte, log *zap.Logger) *API {
	return &API{store: st, hub: hub, jwtSecret: jwtSecret, log: log}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// getSecretKey returns the caster's stored key. No key yet is a normal
// outcome: the response is just an empty object.
func (a *API) getSecretKey(w http.ResponseWriter, r *http.Request) {
	channelID := chi.URLParam(r, "channelID")
	if claimsFrom(r.Context()).ChannelID != channelID {
		http.Error(w, "channel mismatch", http.StatusForbidden)
		return
	}

	key, ok, err := a.store.SecretKey(r.Context(), channelID)
	if err != nil {
		a.log.Error("secret key lookup failed", zap.Error(err))
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	body := struct {
		SecretKey string `json:"secretKey,omitempty"`
	}{}
	if ok {
		body.SecretKey = key
	}
	_ = json.NewEncoder(w).Encode(body)
}

func (a *API) saveSecretKey(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SecretKey string `json:"secretKey"`
		ChannelID string `json:"channelId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if claimsFrom(r.Context()).ChannelID != body.ChannelID {
		http.Error(w, "channel mismatch", http.StatusForbidden)
		return
	}
	if !secret.Valid(body.SecretKey) {
		http.Error(w, "malformed secret key", http.StatusBadRequest)
		return
	}

	if err := a.store.PutSecretKey(r.Context(), body.ChannelID, body.SecretKey); err != nil {
		a.log.Error("secret key store failed", zap.Error(err))
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// getGrimoire is the viewer's load-time fetch: the latest snapshot plus the
// activation gate.
func (a *API) getGrimoire(w http.ResponseWriter, r *http.Request) {
	channelID := chi.URLParam(r, "key")
	if claimsFrom(r.Context()).ChannelID != channelID {
		http.Error(w, "channel mismatch", http.StatusForbidden)
		return
	}

	snap, hasSnap, err := a.store.Grimoire(r.Context(), channelID)
	if err != nil {
		a.log.Error("grimoire lookup failed", zap.Error(err))
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}
	sess, _, err := a.store.Session(r.Context(), channelID)
	if err != nil {
		a.log.Error("session lookup failed", zap.Error(err))
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}

	body := struct {
		IsActive bool            `json:"isActive,omitempty"`
		Grimoire json.RawMessage `json:"grimoire,omitempty"`
	}{IsActive: sess.IsActive}
	if hasSnap {
		body.Grimoire = snap
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

// pushGrimoire takes a snapshot from the companion tool, authorized by the
// secret key path segment, stores it, and fans it out to the channel's
// viewers.
func (a *API) pushGrimoire(w http.ResponseWriter, r *http.Request) {
	channelID, ok := a.resolveKey(w, r, "key")
	if !ok {
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil || !json.Valid(payload) {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	if err := a.store.PutGrimoire(r.Context(), channelID, payload); err != nil {
		a.log.Error("grimoire store failed", zap.Error(err))
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}

	sess, _, err := a.store.Session(r.Context(), channelID)
	if err != nil {
		a.log.Error("session lookup failed", zap.Error(err))
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}

	a.hub.Inbox() <- channel.Publish{
		ChannelID: channelID,
		Env:       channel.GrimoireEnvelope(payload, sess.IsActive),
	}
	w.WriteHeader(http.StatusOK)
}

// pushSession records activation state and rebroadcasts the gate so
// overlays hide or show immediately.
func (a *API) pushSession(w http.ResponseWriter, r *http.Request) {
	channelID, ok := a.resolveKey(w, r, "secretKey")
	if !ok {
		return
	}

	var sess grimoire.Session
	if err := json.NewDecoder(r.Body).Decode(&sess); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	if err := a.store.PutSession(r.Context(), channelID, sess); err != nil {
		a.log.Error("session store failed", zap.Error(err))
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}

	snap, _, err := a.store.Grimoire(r.Context(), channelID)
	if err != nil {
		a.log.Error("grimoire lookup failed", zap.Error(err))
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}

	a.hub.Inbox() <- channel.Publish{
		ChannelID: channelID,
		Env:       channel.GrimoireEnvelope(snap, sess.IsActive),
	}
	w.WriteHeader(http.StatusOK)
}

func (a *API) resolveKey(w http.ResponseWriter, r *http.Request, param string) (string, bool) {
	key := chi.URLParam(r, param)
	channelID, ok, err := a.store.ChannelForKey(r.Context(), key)
	if err != nil {
		a.log.Error("key lookup failed", zap.Error(err))
		http.Error(w, "storage error", http.StatusInternalServerError)
		return "", false
	}
	if !ok {
		http.Error(w, "unknown secret key", http.StatusNotFound)
		return "", false
	}
	return channelID, true
}
