package app

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/milpress/provisioner/internal/auth"
	"github.com/milpress/provisioner/internal/handler"
	"github.com/milpress/provisioner/internal/infra"
	"github.com/milpress/provisioner/internal/provider"
	"github.com/milpress/provisioner/internal/repository"
	"github.com/milpress/provisioner/internal/service"
)

// RouterDeps holds all dependencies needed by NewRouter. Profiles and Logs
// default to the pgx-backed repositories when nil.
type RouterDeps struct {
	Pool     *pgxpool.Pool
	Config   *infra.Config
	Logger   *slog.Logger
	Resolver auth.CallerResolver
	Identity service.IdentityAPI
	Mailer   provider.Mailer
	Profiles repository.ProfileRepository
	Logs     repository.ActivityLogRepository
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	profiles := deps.Profiles
	if profiles == nil {
		profiles = repository.NewPgProfileRepository()
	}
	logs := deps.Logs
	if logs == nil {
		logs = repository.NewPgActivityLogRepository()
	}

	branding := service.MailBranding{
		AppName:  deps.Config.AppName,
		LoginURL: deps.Config.LoginURL(),
	}
	svc := service.NewProvisioningService(deps.Pool, profiles, logs, deps.Identity, deps.Mailer, branding, deps.Logger)
	adminHandler := handler.NewAdminUserHandler(svc)

	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(deps.Logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(deps.Logger))
	r.Use(handler.CORSWithOrigins(deps.Config.CORSAllowedOrigins))
	r.Use(handler.JSONContentType)

	// Health (no auth)
	r.Get("/health", handler.HealthHandler(deps.Pool))

	// Admin provisioning
	r.Route("/admin/users", func(r chi.Router) {
		r.Use(handler.RequireConfig(deps.Config))
		r.Use(auth.Authenticate(deps.Resolver))
		r.Post("/", adminHandler.ProvisionAdmin)
	})

	return r
}
