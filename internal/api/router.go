package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/metron/internal/account"
	"github.com/starford/metron/internal/conversionservice"
	"github.com/starford/metron/internal/sse"
)

// NewRouter creates a chi router with all API routes mounted.
// Catalog, conversion and calculator routes are public. When accounts is
// non-nil the auth and history routes are mounted behind RequireSession, and
// events, if non-nil, is mounted at GET /events in the same group.
func NewRouter(conv *conversionservice.Service, accounts *account.Service, events *sse.Broker) chi.Router {
	h := NewHandler(conv, accounts, events)

	r := chi.NewRouter()
	r.Use(Tracing())

	// Catalog.
	r.Get("/categories", h.ListCategories)
	r.Get("/categories/{category}/units", h.ListUnits)

	// Conversion.
	r.Get("/convert", h.ConvertQuery)
	r.Post("/convert", h.Convert)

	// Calculator.
	r.Post("/calculator", h.Calculate)

	if accounts == nil {
		return r
	}

	r.Post("/auth/signup", h.SignUp)
	r.Post("/auth/signin", h.SignIn)

	r.Group(func(r chi.Router) {
		r.Use(RequireSession(accounts))

		r.Post("/auth/signout", h.SignOut)
		r.Get("/auth/session", h.Session)

		r.Get("/history", h.ListHistory)
		r.Post("/history", h.SaveHistory)
		r.Delete("/history/{id}", h.DeleteHistory)

		if events != nil {
			r.Get("/events", h.Events)
		}
	})

	return r
}
