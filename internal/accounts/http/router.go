package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/kodefactor/accounts/api/accounts" // Swagger docs
	"github.com/kodefactor/accounts/internal/accounts/domain"
	"github.com/kodefactor/accounts/internal/accounts/metrics"
	"github.com/kodefactor/accounts/internal/accounts/service"
	"github.com/kodefactor/accounts/internal/accounts/store"
	"github.com/kodefactor/accounts/pkg/httpx"
	"github.com/kodefactor/accounts/pkg/jwtx"
	"github.com/kodefactor/accounts/pkg/slogx"
)

const (
	DefaultRoutePrefix    = "/api/auth"
	DefaultUploadMaxBytes = 5 << 20

	uploadsPath = "/uploads"
)

// RouterConfig holds the request-surface settings.
type RouterConfig struct {
	Prefix         string
	BuildVersion   string
	CORSOrigins    []string
	UploadMaxBytes int64
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	cfg       RouterConfig
	signer    jwtx.Signer
	verifier  jwtx.Verifier
	keys      *jwtx.KeySet // nil unless tokens are signed with EdDSA
	startTime time.Time
	logger    *slog.Logger
	store     store.Store
	metrics   *metrics.Metrics

	AuthService      *service.AuthService
	DirectoryService *service.DirectoryService

	// Uploads serves the local blob store. Nil when images live elsewhere.
	Uploads http.Handler
}

// route is one entry of the static route table. Auth routes verify the
// bearer token; Roles further restricts them, empty meaning any role.
type route struct {
	Method  string
	Path    string
	Handler http.Handler
	Auth    bool
	Roles   []domain.Role
}

func NewRouter(
	cfg RouterConfig,
	signer jwtx.Signer,
	verifier jwtx.Verifier,
	keys *jwtx.KeySet,
	st store.Store,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Router {
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultRoutePrefix
	}
	cfg.Prefix = "/" + strings.Trim(cfg.Prefix, "/")
	if cfg.UploadMaxBytes <= 0 {
		cfg.UploadMaxBytes = DefaultUploadMaxBytes
	}

	r := &Router{
		Mux:       http.NewServeMux(),
		cfg:       cfg,
		signer:    signer,
		verifier:  verifier,
		keys:      keys,
		startTime: time.Now(),
		logger:    logger,
		store:     st,
		metrics:   m,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Recover(),
		httpx.CORS(cfg.CORSOrigins),
	}

	return r
}

// routes is the account surface. Every access rule lives here.
func (r *Router) routes() []route {
	return []route{
		{Method: http.MethodPost, Path: "/signup", Handler: &SignupHandler{Auth: r.AuthService}},
		{Method: http.MethodPost, Path: "/login", Handler: &LoginHandler{Auth: r.AuthService}},
		{Method: http.MethodPost, Path: "/verify", Handler: &VerifyHandler{Auth: r.AuthService}},
		{Method: http.MethodPost, Path: "/resend-verification", Handler: &ResendVerificationHandler{Auth: r.AuthService}},
		{Method: http.MethodGet, Path: "/validate", Handler: &ValidateHandler{Auth: r.AuthService}},
		{
			Method:  http.MethodGet,
			Path:    "/allusers",
			Handler: &UsersHandler{Directory: r.DirectoryService},
			Auth:    true,
			Roles:   []domain.Role{domain.RoleAdmin},
		},
		{
			Method:  http.MethodGet,
			Path:    "/current-user",
			Handler: &CurrentUserHandler{Directory: r.DirectoryService},
			Auth:    true,
		},
		{
			Method:  http.MethodPost,
			Path:    "/upload-profile-image",
			Handler: &UploadProfileImageHandler{Directory: r.DirectoryService, MaxBytes: r.cfg.UploadMaxBytes},
			Auth:    true,
			Roles:   []domain.Role{domain.RoleUser, domain.RoleAdmin, domain.RoleBackendUser},
		},
	}
}

func (r *Router) ApplyRoutes() {
	for _, rt := range r.routes() {
		pattern := rt.Method + " " + r.cfg.Prefix + rt.Path
		r.Mux.Handle(pattern, r.secure(rt, pattern))
	}

	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

func (r *Router) secure(rt route, pattern string) http.Handler {
	mws := []httpx.Middleware{r.metrics.Middleware(pattern)}
	if rt.Auth {
		mws = append(mws, httpx.Authenticate(r.verifier))
		mws = append(mws, httpx.RequireRoles(domain.RoleNames(rt.Roles...)...))
	}
	return httpx.Chain(rt.Handler, mws...)
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Accounts Service API
//	@version		0.1.0
//	@description	Account registration with email verification, password login and JWT session validation.
//	@description
//	@description				Session tokens are HS256 by default. With EdDSA signing the public key is published at /.well-known/jwks.json.
//
//	@contact.name				Kodefactor
//	@contact.url				https://github.com/kodefactor/accounts
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.cfg.BuildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.cfg.BuildVersion, r.store, r.signer, r.keys))

	if r.keys != nil {
		r.Mux.Handle("GET /.well-known/jwks.json", JWKSHandler(r.keys))
	}
	if r.metrics != nil {
		r.Mux.Handle("GET /metrics", r.metrics.Handler())
	}
	if r.Uploads != nil {
		r.Mux.Handle("GET "+uploadsPath+"/", http.StripPrefix(uploadsPath, r.Uploads))
	}
}
