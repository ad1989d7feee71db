package server

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/url"

	"github.com/harubang/fengshui-site/auth"
)

const contentTypeHTML = "text/html; charset=utf-8"

// generateRandomString creates a random base64url string
func generateRandomString(length int) string {
	b := make([]byte, length)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// currentUser resolves the signed-in user for a request, or nil. Pages use it
// to vary navigation; failures just render the signed-out state.
func (s *Server) currentUser(r *http.Request) *auth.User {
	rc, ok := RequestClientFrom(r.Context())
	if !ok {
		return nil
	}
	session, ok := SessionFrom(r.Context())
	if !ok {
		return nil
	}
	user, err := rc.UserForSession(r.Context(), session)
	if err != nil {
		return nil
	}
	return user
}

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent) // 204 - no content, just redirect instruction
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithError helper for htmx-aware error redirects
func redirectWithError(w http.ResponseWriter, r *http.Request, path, errorMsg string) {
	fullPath := path + "?error=" + url.QueryEscape(errorMsg)

	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", fullPath)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, fullPath, http.StatusSeeOther)
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
