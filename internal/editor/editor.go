// Package editor is the broadcaster-facing config session: it owns the
// writable draft of the overlay configuration, mutates it from UI actions,
// and on explicit save publishes it to the durable slot and the broadcast
// channel.
package editor

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/botc-tools/overlay-ebs/internal/channel"
	"github.com/botc-tools/overlay-ebs/internal/ebs"
	"github.com/botc-tools/overlay-ebs/internal/grimoire"
	"github.com/botc-tools/overlay-ebs/internal/overlay"
	"github.com/botc-tools/overlay-ebs/internal/platform"
	"github.com/botc-tools/overlay-ebs/internal/secret"
)

var ErrSecretMismatch = errors.New("displayed secret does not match generated value")
var ErrNoSecret = errors.New("no secret key to save")

// The config page uses a finer radius step than the overlay-side increment.
const radiusStep = 5

// Mock roles so the preview can show any number of tokens regardless of the
// live grimoire.
var previewRoles = []string{
	"washerwoman", "librarian", "investigator", "chef", "empath",
	"fortuneteller", "undertaker", "monk", "ravenkeeper", "virgin",
	"slayer", "soldier", "mayor", "butler", "drunk", "recluse",
	"saint", "imp", "baron", "spy",
}

type Session struct {
	mu         sync.Mutex
	draft      overlay.Config
	background []byte
	secretKey  string
	displayed  string
	channelID  string
	token      string

	adapter  platform.Adapter
	client   *ebs.Client
	log      *zap.Logger
	onRender func(overlay.Config)
	onSecret func(string)
}

func NewSession(adapter platform.Adapter, client *ebs.Client, log *zap.Logger) *Session {
	return &Session{
		draft:   overlay.Default(),
		adapter: adapter,
		client:  client,
		log:     log,
	}
}

// OnRender registers the re-render side effect fired on every draft update.
func (s *Session) OnRender(fn func(overlay.Config)) {
	s.mu.Lock()
	s.onRender = fn
	s.mu.Unlock()
}

// OnSecretDisplay registers the callback keeping the UI's displayed copy of
// the secret key in step with the internal value.
func (s *Session) OnSecretDisplay(fn func(string)) {
	s.mu.Lock()
	s.onSecret = fn
	s.mu.Unlock()
}

// Attach wires the session to the host: on authorization it records
// identity and fetches any previously stored secret key. Key absence is a
// normal outcome.
func (s *Session) Attach() {
	s.adapter.OnAuthorized(func(auth platform.Auth) {
		s.mu.Lock()
		s.channelID = auth.ChannelID
		s.token = auth.Token
		s.mu.Unlock()

		key, ok, err := s.client.FetchSecretKey(context.Background(), auth.ChannelID, auth.Token)
		if err != nil {
			s.log.Warn("secret key fetch failed", zap.Error(err))
			return
		}
		if ok {
			s.setSecret(key)
		}
	})
}

func (s *Session) Get() overlay.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Update shallow-merges a partial into the draft. No validation happens
// here: out-of-range intermediate states are tolerated until Save.
func (s *Session) Update(p overlay.Partial) {
	s.mu.Lock()
	s.draft = overlay.Merge(s.draft, p)
	draft := s.draft
	fn := s.onRender
	s.mu.Unlock()
	if fn != nil {
		fn(draft)
	}
}

func (s *Session) MoveUp()    { s.nudge(func(c *overlay.Config) { c.Y-- }) }
func (s *Session) MoveDown()  { s.nudge(func(c *overlay.Config) { c.Y++ }) }
func (s *Session) MoveLeft()  { s.nudge(func(c *overlay.Config) { c.X-- }) }
func (s *Session) MoveRight() { s.nudge(func(c *overlay.Config) { c.X++ }) }

func (s *Session) BiggerToken()  { s.nudge(func(c *overlay.Config) { c.TokenSize++ }) }
func (s *Session) SmallerToken() { s.nudge(func(c *overlay.Config) { c.TokenSize-- }) }

func (s *Session) ExpandRadius()   { s.nudge(func(c *overlay.Config) { c.Radius += radiusStep }) }
func (s *Session) ContractRadius() { s.nudge(func(c *overlay.Config) { c.Radius -= radiusStep }) }

// AddPlayer and RemovePlayer stay inside [0, MaxPlayers] no matter how
// often they are clicked.
func (s *Session) AddPlayer() {
	s.nudge(func(c *overlay.Config) {
		if c.Players < overlay.MaxPlayers {
			c.Players++
		}
	})
}

func (s *Session) RemovePlayer() {
	s.nudge(func(c *overlay.Config) {
		if c.Players > 0 {
			c.Players--
		}
	})
}

func (s *Session) nudge(mutate func(*overlay.Config)) {
	s.mu.Lock()
	mutate(&s.draft)
	draft := s.draft
	fn := s.onRender
	s.mu.Unlock()
	if fn != nil {
		fn(draft)
	}
}

// PreviewGrimoire returns a mock grimoire sized to the draft's player
// count, so the config page can render tokens without a live game.
func (s *Session) PreviewGrimoire() grimoire.Snapshot {
	s.mu.Lock()
	n := s.draft.Players
	s.mu.Unlock()
	if n < 0 {
		n = 0
	}
	if n > len(previewRoles) {
		n = len(previewRoles)
	}
	players := make([]grimoire.Player, n)
	for i := 0; i < n; i++ {
		players[i] = grimoire.Player{Role: previewRoles[i]}
	}
	return grimoire.Snapshot{Players: players}
}

// SetBackground stores an alignment background for this session only; it is
// never persisted or broadcast.
func (s *Session) SetBackground(data []byte) {
	s.mu.Lock()
	s.background = data
	s.mu.Unlock()
}

func (s *Session) Background() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.background
}

// Save validates the draft and, only if it passes, writes it to the durable
// configuration slot and fans it out on the broadcast channel. An invalid
// draft produces no store write and no broadcast.
func (s *Session) Save() error {
	s.mu.Lock()
	draft := s.draft
	s.mu.Unlock()

	if !draft.Valid() {
		s.log.Warn("refusing to save invalid config",
			zap.Int("players", draft.Players), zap.Int("radius", draft.Radius))
		return overlay.ErrConfigOutOfRange
	}

	serialized, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	s.adapter.SetBroadcasterConfig(string(serialized))
	s.adapter.Send(channel.ConfigEnvelope(serialized))
	return nil
}

// GenerateSecret mints a fresh key, makes it the internal value, and pushes
// it to the display.
func (s *Session) GenerateSecret() string {
	key := secret.Generate()
	s.setSecret(key)
	return key
}

// SecretKey returns the internal value, empty until generated or fetched.
func (s *Session) SecretKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.secretKey
}

// SetDisplayedSecret records what the UI input currently shows. Save keys
// off this copy: edits to the displayed value invalidate a pending save.
func (s *Session) SetDisplayedSecret(displayed string) {
	s.mu.Lock()
	s.displayed = displayed
	s.mu.Unlock()
}

// SaveSecret transmits the key to the backend, but only after re-checking
// that the displayed copy still matches the internal value. A mismatch
// rejects the save before any network call.
func (s *Session) SaveSecret() error {
	s.mu.Lock()
	key := s.secretKey
	displayed := s.displayed
	channelID := s.channelID
	token := s.token
	s.mu.Unlock()

	if key == "" {
		return ErrNoSecret
	}
	if displayed != key {
		return ErrSecretMismatch
	}
	s.client.SaveSecretKey(channelID, token, key)
	return nil
}

func (s *Session) setSecret(key string) {
	s.mu.Lock()
	s.secretKey = key
	s.displayed = key
	fn := s.onSecret
	s.mu.Unlock()
	if fn != nil {
		fn(key)
	}
}
