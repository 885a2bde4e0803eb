// Package companion is the relay agent running alongside the game tool: it
// samples the tool's grimoire storage on a fixed interval and pushes deltas
// to the backend under the broadcaster's secret key.
package companion

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/botc-tools/overlay-ebs/internal/ebs"
	"github.com/botc-tools/overlay-ebs/internal/grimoire"
)

const pollInterval = 5 * time.Second

// Source is wherever the game tool keeps its live state; reads are cheap
// and local.
type Source interface {
	Grimoire() (grimoire.Snapshot, error)
}

type Agent struct {
	mu        sync.Mutex
	source    Source
	client    *ebs.Client
	secretKey string
	interval  time.Duration
	last      grimoire.Snapshot
	active    bool
	stop      context.CancelFunc
	log       *zap.Logger
}

func NewAgent(source Source, client *ebs.Client, secretKey string, log *zap.Logger) *Agent {
	return &Agent{
		source:    source,
		client:    client,
		secretKey: secretKey,
		interval:  pollInterval,
		log:       log,
	}
}

// SetSecretKey replaces the key pasted in from the config page.
func (a *Agent) SetSecretKey(key string) {
	a.mu.Lock()
	a.secretKey = key
	a.mu.Unlock()
}

// Start activates the relay: it announces the session, samples once, and
// begins the polling loop. Starting an already-running agent is a no-op.
func (a *Agent) Start(ctx context.Context) {
	a.mu.Lock()
	if a.active {
		a.mu.Unlock()
		return
	}
	a.active = true
	loopCtx, cancel := context.WithCancel(ctx)
	a.stop = cancel
	a.mu.Unlock()

	a.pushSession(ctx, true)
	a.poll(ctx)
	go a.loop(loopCtx)
}

// Stop deactivates the relay and tears down the polling loop.
func (a *Agent) Stop(ctx context.Context) {
	a.mu.Lock()
	if !a.active {
		a.mu.Unlock()
		return
	}
	a.active = false
	stop := a.stop
	a.stop = nil
	a.mu.Unlock()

	stop()
	a.pushSession(ctx, false)
}

// Unload is the page-teardown path: best-effort deactivation with no
// delivery confirmation.
func (a *Agent) Unload() {
	a.mu.Lock()
	a.active = false
	stop := a.stop
	a.stop = nil
	key := a.secretKey
	last := a.last
	a.mu.Unlock()

	if stop != nil {
		stop()
	}
	a.client.Beacon(key, grimoire.Session{
		Session:  last.Session,
		PlayerID: last.PlayerID,
		IsActive: false,
	})
}

func (a *Agent) Active() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

func (a *Agent) loop(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.poll(ctx)
		}
	}
}

// poll samples the source and pushes only when the snapshot changed.
func (a *Agent) poll(ctx context.Context) {
	next, err := a.source.Grimoire()
	if err != nil {
		a.log.Warn("grimoire read failed", zap.Error(err))
		return
	}

	a.mu.Lock()
	changed := !grimoire.Equal(a.last, next)
	if changed {
		a.last = next
	}
	key := a.secretKey
	a.mu.Unlock()

	if !changed {
		return
	}
	if err := a.client.PushGrimoire(ctx, key, next); err != nil {
		a.log.Warn("grimoire push failed", zap.Error(err))
	}
}

func (a *Agent) pushSession(ctx context.Context, isActive bool) {
	a.mu.Lock()
	key := a.secretKey
	last := a.last
	a.mu.Unlock()

	sess := grimoire.Session{
		Session:  last.Session,
		PlayerID: last.PlayerID,
		IsActive: isActive,
	}
	if err := a.client.PushSession(ctx, key, sess); err != nil {
		a.log.Warn("session push failed", zap.Error(err))
	}
}
