package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/evcenter-admin/gateway"
	"github.com/jrsteele09/evcenter-admin/internal/config"
	apperrors "github.com/jrsteele09/evcenter-admin/internal/errors"
	"github.com/jrsteele09/evcenter-admin/server/authflowrepo"
	"github.com/jrsteele09/evcenter-admin/sessions"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

type OidcConfig struct {
	OidcProvider *oidc.Provider
	OAuth2Config *oauth2.Config
	OidcVerifier *oidc.IDTokenVerifier
}

type Server struct {
	env        string // Environment (e.g., "DEV", "PROD")
	mux        *http.ServeMux
	routes     []string
	config     config.Config
	backend    *gateway.Client
	sessions   sessions.Repo
	authState  authflowrepo.Repo
	workspaces *workspaceRegistry
	limiter    *loginLimiter
	slotLocks  *slotLocks
	pages      []pageEntry
	templates  map[string]*template.Template

	oidcConfig *OidcConfig
	oidcLock   sync.Mutex
}

// New wires the dashboard. backend is the only path to the service-center API; sessionRepo holds
// one JSON session per browser slot.
func New(cfg config.Config, backend *gateway.Client, sessionRepo sessions.Repo, authStateRepo authflowrepo.Repo) (*Server, error) {
	if backend == nil {
		return nil, fmt.Errorf("[Server New] a gateway client is required")
	}
	if sessionRepo == nil {
		return nil, fmt.Errorf("[Server New] a session repository is required")
	}
	if authStateRepo == nil {
		authStateRepo = authflowrepo.NewInMemoryRepo()
	}

	s := &Server{
		env:        cfg.GetEnv(),
		mux:        http.NewServeMux(),
		config:     cfg,
		backend:    backend,
		sessions:   sessionRepo,
		authState:  authStateRepo,
		workspaces: newWorkspaceRegistry(cfg.GetSessionMaxAge()),
		limiter:    newLoginLimiter(cfg.GetLoginRatePerMinute()),
		slotLocks:  newSlotLocks(),
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse templates: %w", err)
	}
	s.templates = templates

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Debug().Msgf("[%s] %s", colourMethod(method), path)
}

// getOidcConfig discovers the identity provider on first use and caches the result.
func (s *Server) getOidcConfig(ctx context.Context) (*OidcConfig, error) {
	if !s.config.SSOEnabled() {
		return nil, apperrors.ErrSSODisabled
	}

	s.oidcLock.Lock()
	defer s.oidcLock.Unlock()
	if s.oidcConfig != nil {
		return s.oidcConfig, nil
	}

	provider, err := oidc.NewProvider(ctx, s.config.GetOIDCIssuer())
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	s.oidcConfig = &OidcConfig{
		OidcProvider: provider,
		OAuth2Config: &oauth2.Config{
			ClientID:     s.config.GetOIDCClientID(),
			ClientSecret: s.config.GetOIDCClientSecret(),
			Endpoint:     provider.Endpoint(),
			RedirectURL:  s.config.GetOIDCRedirectURL(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email", oidc.ScopeOfflineAccess},
		},
		OidcVerifier: provider.Verifier(&oidc.Config{
			ClientID: s.config.GetOIDCClientID(),
		}),
	}
	return s.oidcConfig, nil
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
