package handlers

import (
	"Chest/internal/config"
	"Chest/internal/middleware"
	"Chest/internal/service"
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Services содержит всё, что нужно хендлерам от слоя бизнес-логики.
type Services struct {
	Partners *service.PartnerService
	Profiles *service.ProfileService
	Events   *service.EventService
	Shares   *service.ShareService
	Accounts *service.AccountService
	Stats    *service.StatsService
	Ping     func(ctx context.Context) error
}

type Handler struct {
	Router chi.Router
	// Limiter публичных маршрутов; его окна чистит вызывающий через RunCleanup
	Limiter *middleware.RateLimiter
}

// NewHandler разводящий для хендлеров
func NewHandler(svc Services, logger *zap.SugaredLogger, cfg *config.Config) *Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.WithLogging)
	r.Use(chimw.Compress(5))
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	}
	r.Use(middleware.WithAuth(cfg.AuthSecret))

	// Handlers
	eventHandler := NewEventHandler(svc.Events, logger, cfg)
	partnerHandler := NewPartnerHandler(svc.Partners, logger, cfg)
	profileHandler := NewProfileHandler(svc.Profiles, logger, cfg)
	shareHandler := NewShareHandler(svc.Shares, logger, cfg)
	accountHandler := NewAccountHandler(svc.Accounts, svc.Stats, svc.Ping, logger, cfg)

	limiter := middleware.NewRateLimiter(cfg.ShareRateLimit, time.Minute)

	r.Get("/api/health", accountHandler.Health)

	r.Route("/api/events", func(r chi.Router) {
		r.Get("/", eventHandler.List)
		r.Post("/", eventHandler.Create)
		r.Get("/{id}", eventHandler.Get)
		r.Put("/{id}", eventHandler.Update)
		r.Delete("/{id}", eventHandler.Delete)
	})

	r.Route("/api/partners", func(r chi.Router) {
		r.Get("/", partnerHandler.List)
		r.Post("/", partnerHandler.Create)
		r.Get("/{id}", partnerHandler.Get)
		r.Put("/{id}", partnerHandler.Update)
		r.Delete("/{id}", partnerHandler.Delete)
	})

	r.Get("/api/profile", profileHandler.Get)
	r.Put("/api/profile", profileHandler.Update)
	r.Delete("/api/profile", profileHandler.Delete)

	r.Route("/api/shares", func(r chi.Router) {
		r.Get("/", shareHandler.List)
		r.Post("/", shareHandler.Create)
		r.Put("/{id}", shareHandler.Update)
		r.Delete("/{id}", shareHandler.Delete)
	})

	r.Delete("/api/account", accountHandler.Delete)
	r.Get("/api/stats", accountHandler.GlobalStats)

	// Public share routes
	r.Route("/api/public/shares/{token}", func(r chi.Router) {
		r.Use(middleware.RateLimit(limiter))
		r.Get("/", shareHandler.PublicGet)
		r.Get("/events", shareHandler.PublicEvents)
	})

	return &Handler{Router: r, Limiter: limiter}
}
