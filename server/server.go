package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/harubang/fengshui-site/backend"
	"github.com/harubang/fengshui-site/internal/config"
	"github.com/harubang/fengshui-site/server/oauthflow"
)

// OidcConfig bundles the provider, oauth2 client config and verifier for the
// external identity provider used for social sign-in.
type OidcConfig struct {
	OidcProvider *oidc.Provider
	OAuth2Config *oauth2.Config
	OidcVerifier *oidc.IDTokenVerifier
}

type Server struct {
	env        string // Environment (e.g., "DEV", "PROD")
	mux        *http.ServeMux
	routes     []string
	fileServer http.Handler
	config     config.Config
	backend    *backend.Factory
	flows      oauthflow.Repo

	oidcOnce sync.Once
	oidcCfg  OidcConfig
	oidcErr  error
}

func New(config config.Config, factory *backend.Factory) (*Server, error) {
	if factory == nil {
		return nil, fmt.Errorf("[Server New] backend factory is required")
	}

	s := &Server{
		mux:     http.NewServeMux(),
		config:  config,
		backend: factory,
		flows:   oauthflow.NewInMemoryRepo(),
	}
	s.env = config.GetEnv()
	s.fileServer = FileServerHandler()

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

// oauthEnabled reports whether social sign-in is configured. The OAuth routes
// respond 404 when it is not.
func (s *Server) oauthEnabled() bool {
	return s.config.GetOAuthClientID() != "" && s.config.GetOAuthClientSecret() != ""
}

// getOidcConfig lazily resolves the identity provider's discovery document.
// Resolution runs once; a failure is cached for the process lifetime.
func (s *Server) getOidcConfig(ctx context.Context) (OidcConfig, error) {
	s.oidcOnce.Do(func() {
		provider, err := oidc.NewProvider(ctx, s.config.GetOAuthIssuer())
		if err != nil {
			s.oidcErr = fmt.Errorf("failed to create OIDC provider: %w", err)
			return
		}

		s.oidcCfg = OidcConfig{
			OidcProvider: provider,
			OAuth2Config: &oauth2.Config{
				ClientID:     s.config.GetOAuthClientID(),
				ClientSecret: s.config.GetOAuthClientSecret(),
				Endpoint:     provider.Endpoint(),
				RedirectURL:  s.config.GetBaseURL() + RouteOAuthCallback,
				Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
			},
			OidcVerifier: provider.Verifier(&oidc.Config{
				ClientID: s.config.GetOAuthClientID(),
			}),
		}
	})
	return s.oidcCfg, s.oidcErr
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
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Printf("[%-19s] %s\n", displayMethod, path)
}

func logError(method, path, error string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	errorString := Red + error + ResetColor
	log.Printf("[%-19s] %s %s\n", displayMethod, path, errorString)
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
