package router

import (
	"net/http"

	"magasin-api/internal/handler"
	"magasin-api/internal/middleware"
	"magasin-api/internal/websocket"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler             *handler.Handler
	CatalogHandler      *handler.CatalogHandler
	CartHandler         *handler.CartHandler
	WorkflowHandler     *handler.WorkflowHandler
	InsightsHandler     *handler.InsightsHandler
	NotificationHandler *handler.NotificationHandler
	ExportHandler       *handler.ExportHandler
	Hub                 *websocket.Hub
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-Session-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
	}

	if cfg.Hub != nil {
		r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
			websocket.Handle(cfg.Hub, w, req)
		})
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Handler != nil {
			r.Get("/health", cfg.Handler.Health)
			r.Get("/ready", cfg.Handler.Ready)
		}

		if cfg.CatalogHandler != nil {
			r.Route("/equipements", func(r chi.Router) {
				r.Get("/", cfg.CatalogHandler.List)
				r.Post("/", cfg.CatalogHandler.Create)
				r.Get("/{id}", cfg.CatalogHandler.Get)
				r.Put("/{id}/stock", cfg.CatalogHandler.UpdateStock)
				r.Post("/{id}/retrait", cfg.CatalogHandler.Withdraw)

				if cfg.InsightsHandler != nil {
					r.Post("/{id}/favori", cfg.InsightsHandler.ToggleFavorite)
					r.Post("/{id}/maintenance", cfg.InsightsHandler.AddMaintenance)
					r.Post("/{id}/maintenance/planifier", cfg.InsightsHandler.ScheduleMaintenance)
					r.Get("/{id}/evaluations", cfg.InsightsHandler.Ratings)
					r.Post("/{id}/evaluations", cfg.InsightsHandler.AddRating)
				}
			})

			r.Route("/notes", func(r chi.Router) {
				r.Get("/", cfg.CatalogHandler.ListNotes)
				r.Post("/", cfg.CatalogHandler.CreateNote)
			})
		}

		if cfg.CartHandler != nil {
			r.Route("/panier", func(r chi.Router) {
				r.Get("/", cfg.CartHandler.Get)
				r.Post("/commande", cfg.CartHandler.PlaceOrder)
				r.Post("/{id}", cfg.CartHandler.Add)
				r.Put("/{id}", cfg.CartHandler.UpdateQuantity)
				r.Delete("/{id}", cfg.CartHandler.Remove)
			})
		}

		if cfg.WorkflowHandler != nil {
			r.Route("/demandes", func(r chi.Router) {
				r.Get("/", cfg.WorkflowHandler.ListRequests)
				r.Post("/generer", cfg.WorkflowHandler.GenerateRequest)
				r.Post("/{id}/approuver", cfg.WorkflowHandler.ApproveRequest)
				r.Post("/{id}/refuser", cfg.WorkflowHandler.RefuseRequest)
			})

			r.Route("/techniciens", func(r chi.Router) {
				r.Get("/", cfg.WorkflowHandler.ListTechniciens)
				r.Post("/actualiser", cfg.WorkflowHandler.RefreshTechniciens)
				r.Post("/{id}/proposition", cfg.WorkflowHandler.ProposeSelection)
				r.Get("/{id}/selection", cfg.WorkflowHandler.GetSelection)
				r.Post("/{id}/selection", cfg.WorkflowHandler.ValidateSelection)
				r.Post("/{id}/resolution", cfg.WorkflowHandler.ResolveSelection)
			})
		}

		if cfg.CatalogHandler != nil {
			r.Get("/stats/store", cfg.CatalogHandler.StoreStats)
		}

		if cfg.InsightsHandler != nil {
			r.Get("/alertes", cfg.InsightsHandler.Alerts)
			r.Post("/alertes/actualiser", cfg.InsightsHandler.RefreshAlerts)
			r.Get("/predictions", cfg.InsightsHandler.Predictions)
			r.Get("/stats", cfg.InsightsHandler.Stats)
			r.Get("/favoris", cfg.InsightsHandler.Favorites)
			r.Get("/maintenance", cfg.InsightsHandler.MaintenanceHistory)
		}

		if cfg.NotificationHandler != nil {
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", cfg.NotificationHandler.List)
				r.Post("/lues", cfg.NotificationHandler.MarkAllRead)
			})
		}

		if cfg.ExportHandler != nil {
			r.Get("/export/equipements", cfg.ExportHandler.Equipements)
		}
	})

	return r
}
