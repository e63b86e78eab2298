package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/smartbotics/automate-web/internal/handler/contact"
	"github.com/smartbotics/automate-web/internal/handler/widget"
	middlewarePkg "github.com/smartbotics/automate-web/internal/middleware"
	"github.com/smartbotics/automate-web/pkg/utils"
)

// Deps carries what the router needs to serve the site's back end.
type Deps struct {
	AllowedOrigins []string
	Contact        *contact.Handler
	Widget         *widget.WebSocketHandler
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(deps.AllowedOrigins))

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		if deps.Contact != nil {
			deps.Contact.RegisterRoutes(api)
		}
	})

	if deps.Widget != nil {
		deps.Widget.RegisterWebSocketRoutes(r)
	}

	return r
}
