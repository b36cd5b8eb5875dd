package http

import (
	"net/http"

	"github.com/go-authix/internal/application/auth"
	"github.com/go-authix/internal/application/session"
	"github.com/go-authix/internal/application/token"
	"github.com/go-authix/internal/application/user"
	"github.com/go-authix/internal/application/verification"
	"github.com/go-authix/internal/config"
	"github.com/go-authix/internal/transport/http/handler"
	appmiddleware "github.com/go-authix/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo UserStore
	Cache    Cache
	Codec    TokenCodec
	Hasher   PasswordHasher
	Notifier CodeNotifier
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	sessions := session.NewAccounting(deps.Cache)
	issuer := token.NewIssuer(token.IssuerDeps{
		Codec:      deps.Codec,
		Cache:      deps.Cache,
		Sessions:   sessions,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	})
	ledger := verification.NewLedger(deps.Cache, cfg.VerifyCodeTTL)

	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo:        deps.UserRepo,
		Hasher:          deps.Hasher,
		Ledger:          ledger,
		Issuer:          issuer,
		Notifier:        deps.Notifier,
		DefaultTenantID: cfg.DefaultTenantID,
	})
	userSvc := user.NewService(user.ServiceDeps{
		UserRepo: deps.UserRepo,
		Sessions: sessions,
		Tokens:   issuer,
	})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc, cfg.ExposeVerifyCode)
	tokenH := handler.NewTokenHandler(issuer)
	userH := handler.NewUserHandler(userSvc)

	authMw := appmiddleware.Auth(issuer)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)

		r.Route("/auth", func(r chi.Router) {
			// ── Public routes (no auth) ──────────────────────────────────────
			r.Post("/register", authH.Register)
			r.Post("/login", authH.Login)
			r.Post("/send-code", authH.SendCode)
			r.Post("/verify-code", authH.VerifyCode)
			// The refresh token itself is the credential here.
			r.Get("/token/refresh", tokenH.Refresh)
			r.Post("/token/refresh", tokenH.Refresh)

			// ── Authenticated routes ─────────────────────────────────────────
			r.Group(func(r chi.Router) {
				r.Use(authMw)

				r.Post("/logout", tokenH.Logout)
				r.Get("/me", userH.Me)
				r.Delete("/me", userH.DeleteMe)
				r.Get("/online/count", userH.OnlineCount)
				r.Get("/online", userH.Online)
			})
		})
	})

	return r
}
