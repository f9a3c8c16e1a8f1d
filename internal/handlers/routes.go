package handlers

import (
	"context"
	"net/http"

	"github.com/learnhub/backend/internal/middleware"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users          UserStore
	Sessions       SessionManager
	Catalog        CatalogRenderer
	Uploads        VideoUploader
	Videos         VideoManager
	Emails         EmailService
	EmailReady     bool
	Checkout       CheckoutService
	Limiter        RateLimiter
	Metrics        http.Handler
	HealthCheck    func(ctx context.Context) error
	MaxUploadBytes int64
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux. Admin routes
// require an identity resolved by middleware.Identity further up the chain.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{Check: deps.HealthCheck}
	accounts := AuthHandler{Users: deps.Users, Sessions: deps.Sessions, Limiter: deps.Limiter}
	catalogue := CatalogHandler{Catalog: deps.Catalog}
	videos := VideoHandler{Uploads: deps.Uploads, Videos: deps.Videos, MaxUploadBytes: deps.MaxUploadBytes}
	mail := EmailHandler{Emails: deps.Emails, Configured: deps.EmailReady, Limiter: deps.Limiter}
	checkout := CheckoutHandler{Checkout: deps.Checkout, Limiter: deps.Limiter}

	admin := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireIdentity(h)
	}

	mux.HandleFunc("/healthz", health.Handle)
	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics)
	}

	mux.HandleFunc("POST /api/v1/auth/signup", accounts.SignUp)
	mux.HandleFunc("POST /api/v1/auth/login", accounts.Login)
	mux.HandleFunc("POST /api/v1/auth/refresh", accounts.Refresh)
	mux.HandleFunc("POST /api/v1/auth/logout", accounts.Logout)
	mux.HandleFunc("GET /api/v1/auth/me", accounts.Me)

	mux.HandleFunc("GET /api/videos", catalogue.List)
	mux.HandleFunc("GET /api/videos/{id}", catalogue.Watch)

	mux.Handle("POST /api/admin/videos", admin(videos.Upload))
	mux.Handle("GET /api/admin/videos", admin(videos.List))
	mux.Handle("PATCH /api/admin/videos/{id}", admin(videos.Update))
	mux.Handle("DELETE /api/admin/videos/{id}", admin(videos.Delete))

	mux.HandleFunc("GET /api/send-email", mail.Status)
	mux.HandleFunc("POST /api/send-email", mail.SendTest)
	mux.Handle("GET /api/admin/email-templates", admin(mail.ListTemplates))
	mux.Handle("POST /api/admin/email-templates", admin(mail.SaveTemplate))
	mux.Handle("POST /api/admin/email-templates/{id}/send", admin(mail.SendTemplate))

	mux.HandleFunc("GET /api/plans", checkout.Plans)
	mux.HandleFunc("POST /api/create-checkout-session", checkout.CreateSession)
}
