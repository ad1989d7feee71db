package server

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/harubang/fengshui-site/server/oauthflow"
)

// generateCodeChallenge creates a PKCE code challenge from a verifier
func generateCodeChallenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

// OAuthBeginHandler starts the social sign-in flow: records the per-flow
// secrets and redirects to the identity provider's consent screen.
func (s *Server) OAuthBeginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.oauthEnabled() {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}

		oidcConfig, err := s.getOidcConfig(r.Context())
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to get OIDC config: %v", err), http.StatusInternalServerError)
			return
		}

		state := generateRandomString(32)
		verifier := generateRandomString(32)
		nonce := generateRandomString(32)

		flow := &oauthflow.FlowState{
			CodeVerifier: verifier,
			Nonce:        nonce,
			ReturnURL:    r.URL.Query().Get("return_url"),
			CreatedAt:    time.Now(),
		}
		if err := s.flows.Upsert(state, flow); err != nil {
			http.Error(w, "Failed to start sign-in flow", http.StatusInternalServerError)
			return
		}

		authURL := oidcConfig.OAuth2Config.AuthCodeURL(state,
			oauth2.SetAuthURLParam("code_challenge", generateCodeChallenge(verifier)),
			oauth2.SetAuthURLParam("code_challenge_method", "S256"),
			oauth2.SetAuthURLParam("nonce", nonce),
		)
		http.Redirect(w, r, authURL, http.StatusSeeOther)
	}
}

// OAuthCallbackHandler completes the social sign-in flow
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// r.FormValue works for both query params and POST form data
		state := r.FormValue("state")
		code := r.FormValue("code")
		errorParam := r.FormValue("error")
		errorDesc := r.FormValue("error_description")

		// Check for authorization errors
		if errorParam != "" {
			http.Error(w, fmt.Sprintf("Authorization failed: %s - %s", errorParam, errorDesc), http.StatusBadRequest)
			return
		}

		if code == "" || state == "" {
			http.Error(w, "Missing code or state parameter", http.StatusBadRequest)
			return
		}

		flow, err := s.flows.Get(state)
		if err != nil || flow == nil {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		// Clean up state after use
		if err := s.flows.Delete(state); err != nil {
			http.Error(w, "Invalid state parameter", http.StatusInternalServerError)
			return
		}

		oidcConfig, err := s.getOidcConfig(r.Context())
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to get OIDC config: %v", err), http.StatusInternalServerError)
			return
		}

		// Exchange authorization code for tokens using standard oauth2 library
		oauth2Token, err := oidcConfig.OAuth2Config.Exchange(
			r.Context(),
			code,
			oauth2.SetAuthURLParam("code_verifier", flow.CodeVerifier),
		)
		if err != nil {
			http.Error(w, fmt.Sprintf("Token exchange failed: %v", err), http.StatusInternalServerError)
			return
		}

		// Extract ID token and verify it
		rawIDToken, ok := oauth2Token.Extra("id_token").(string)
		if !ok {
			http.Error(w, "No ID token in response", http.StatusInternalServerError)
			return
		}

		idToken, err := oidcConfig.OidcVerifier.Verify(r.Context(), rawIDToken)
		if err != nil {
			http.Error(w, fmt.Sprintf("ID token verification failed: %v", err), http.StatusInternalServerError)
			return
		}

		// Extract and validate claims in one pass
		var claims struct {
			Nonce string `json:"nonce"`
			Sub   string `json:"sub"`
			Email string `json:"email"`
			Name  string `json:"name"`
		}
		if err := idToken.Claims(&claims); err != nil {
			http.Error(w, fmt.Sprintf("Failed to extract claims: %v", err), http.StatusInternalServerError)
			return
		}

		// Validate nonce to prevent replay attacks
		if claims.Nonce != flow.Nonce {
			http.Error(w, "Invalid nonce", http.StatusUnauthorized)
			return
		}

		client := s.backend.Get()
		if client == nil {
			redirectWithError(w, r, RouteLogin, "Service unavailable")
			return
		}

		// Provision or look up the account, issue a session, persist the
		// token cookie on the response
		rc := client.WithCookies(&requestCookies{r: r, w: w})
		if _, err := rc.SignInOAuth(r.Context(), claims.Email, claims.Name, claims.Sub); err != nil {
			http.Error(w, fmt.Sprintf("Sign-in failed: %v", err), http.StatusInternalServerError)
			return
		}

		returnURL := flow.ReturnURL
		if returnURL == "" {
			returnURL = "/"
		}
		redirectSuccess(w, r, returnURL)
	}
}
