package platform

import (
	"sync"

	"github.com/botc-tools/overlay-ebs/internal/channel"
)

// Fake is an in-process Adapter. Callbacks run synchronously on the calling
// goroutine, matching the host runtime's single-threaded delivery.
type Fake struct {
	mu         sync.Mutex
	slot       string
	slotSet    bool
	auth       *Auth
	authFns    []func(Auth)
	contextFns []func(Context, []string)
	configFns  []func()
	listenFns  []func(channel.Envelope)
}

func NewFake() *Fake { return &Fake{} }

func (f *Fake) OnAuthorized(fn func(Auth)) {
	f.mu.Lock()
	f.authFns = append(f.authFns, fn)
	auth := f.auth
	f.mu.Unlock()
	if auth != nil {
		fn(*auth)
	}
}

func (f *Fake) OnContext(fn func(Context, []string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contextFns = append(f.contextFns, fn)
}

func (f *Fake) OnConfigChanged(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.configFns = append(f.configFns, fn)
}

func (f *Fake) BroadcasterConfig() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.slot, f.slotSet
}

func (f *Fake) SetBroadcasterConfig(content string) {
	f.mu.Lock()
	f.slot = content
	f.slotSet = true
	fns := append([]func(){}, f.configFns...)
	f.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (f *Fake) Listen(fn func(channel.Envelope)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listenFns = append(f.listenFns, fn)
}

func (f *Fake) Send(env channel.Envelope) {
	f.mu.Lock()
	fns := append([]func(channel.Envelope){}, f.listenFns...)
	f.mu.Unlock()
	for _, fn := range fns {
		fn(env)
	}
}

// Authorize simulates the host granting identity; late OnAuthorized
// registrations replay it.
func (f *Fake) Authorize(auth Auth) {
	f.mu.Lock()
	f.auth = &auth
	fns := append([]func(Auth){}, f.authFns...)
	f.mu.Unlock()
	for _, fn := range fns {
		fn(auth)
	}
}

// PushContext simulates a host context change.
func (f *Fake) PushContext(ctx Context, changed []string) {
	f.mu.Lock()
	fns := append([]func(Context, []string){}, f.contextFns...)
	f.mu.Unlock()
	for _, fn := range fns {
		fn(ctx, changed)
	}
}
