package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/botc-tools/overlay-ebs/internal/ws"
)

func (a *API) Routes() http.Handler {
	r := chi.NewRouter()

	// Extension frontends, authorized by the host platform's JWT. The
	// /grimoire segment is shared with the companion push below, so both
	// routes use the same param name: a channel ID on GET, a secret key
	// on POST.
	r.Group(func(r chi.Router) {
		r.Use(a.requireJWT)
		r.Get("/caster/{channelID}", a.getSecretKey)
		r.Post("/caster", a.saveSecretKey)
		r.Get("/grimoire/{key}", a.getGrimoire)
	})

	// Companion tool pushes, authorized by the secret key itself.
	r.Post("/grimoire/{key}", a.pushGrimoire)
	r.Post("/session/{secretKey}", a.pushSession)

	// Viewer broadcast feed.
	r.Get("/ws", ws.Handler(a.hub, a.log))

	r.Get("/healthz", Healthz)
	return r
}
