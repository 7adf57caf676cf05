package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/seulahhh/Fintech-project/internal/fintech/kv"
	"github.com/seulahhh/Fintech-project/internal/fintech/service"
	"github.com/seulahhh/Fintech-project/internal/fintech/store"
	"github.com/seulahhh/Fintech-project/pkg/httpx"
	"github.com/seulahhh/Fintech-project/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store
	kv    kv.Store

	Auth     *service.AuthFlow
	Otp      *service.OtpService
	Accounts *service.AccountService
	Users    *service.UserService
}

func NewRouter(
	buildVersion string,
	st store.Store,
	kvStore kv.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
		kv:           kvStore,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerOtp()
	r.registerSignup()
	r.registerAccounts()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{Auth: r.Auth}

	// Credential-bearing endpoints get the strict per-IP limit
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /auth/jwt/issue",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	// Logout authenticates like any other secured endpoint so the bearer
	// token it blacklists is the one the request arrived with.
	r.Mux.Handle("POST /auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			AuthnMiddleware(r.Auth),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerOtp() {
	h := &OtpHandler{Otp: r.Otp}

	// OTP endpoints carry codes, so they sit behind the strict limit on
	// top of the service's own attempt counter.
	r.Mux.Handle("POST /auth/otp/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /auth/otp/reset",
		httpx.Chain(http.HandlerFunc(h.HandleReset),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /auth/otp/verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerify),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSignup() {
	h := &RegisterHandler{Users: r.Users}

	r.Mux.Handle("POST /register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /register/verify-email",
		httpx.Chain(http.HandlerFunc(h.HandleVerifyEmail),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerAccounts() {
	h := &AccountsHandler{Accounts: r.Accounts}

	secured := func(handler http.HandlerFunc) http.Handler {
		return httpx.Chain(handler,
			AuthnMiddleware(r.Auth),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("POST /accounts", secured(h.HandleCreate))
	r.Mux.Handle("GET /accounts", secured(h.HandleList))
	r.Mux.Handle("GET /accounts/{id}", secured(h.HandleGet))
	r.Mux.Handle("DELETE /accounts/{id}", secured(h.HandleDelete))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.kv),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
