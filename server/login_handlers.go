package server

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"

	"github.com/harubang/fengshui-site/auth"
	apperrors "github.com/harubang/fengshui-site/internal/errors"
)

// LoginPageData contains data for rendering the login and signup pages
type LoginPageData struct {
	AppName     string
	Error       string
	Email       string // Preserve email on error
	OAuthActive bool
}

// LoginPageUIHandler displays the login page (GET /login)
func (s *Server) LoginPageUIHandler() http.HandlerFunc {
	loginTmpl, err := ParseTemplate("login.html")
	if err != nil {
		panic("Failed to parse login template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		data := LoginPageData{
			AppName:     s.config.GetAppName(),
			Error:       r.URL.Query().Get("error"),
			Email:       r.URL.Query().Get("email"),
			OAuthActive: s.oauthEnabled(),
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		if err := loginTmpl.Execute(w, data); err != nil {
			log.Err(err).Msg("Failed to render login template")
			http.Error(w, "Failed to render login page", http.StatusInternalServerError)
		}
	}
}

// SignupPageUIHandler displays the signup page (GET /signup)
func (s *Server) SignupPageUIHandler() http.HandlerFunc {
	signupTmpl, err := ParseTemplate("signup.html")
	if err != nil {
		panic("Failed to parse signup template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		data := LoginPageData{
			AppName:     s.config.GetAppName(),
			Error:       r.URL.Query().Get("error"),
			Email:       r.URL.Query().Get("email"),
			OAuthActive: s.oauthEnabled(),
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		if err := signupTmpl.Execute(w, data); err != nil {
			log.Err(err).Msg("Failed to render signup template")
			http.Error(w, "Failed to render signup page", http.StatusInternalServerError)
		}
	}
}

// LoginSubmissionHandler processes the login form submission
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client := s.backend.Get()
		if client == nil {
			redirectWithError(w, r, RouteLogin, "Service unavailable")
			return
		}

		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		email := r.FormValue("email")
		password := r.FormValue("password")
		if email == "" || password == "" {
			s.renderLoginError(w, r, "Email and password are required", email)
			return
		}

		rc := client.WithCookies(&requestCookies{r: r, w: w})
		if _, err := rc.SignIn(r.Context(), email, password); err != nil {
			s.renderLoginError(w, r, "Invalid email or password", email)
			return
		}

		returnURL := r.FormValue("return_url")
		if returnURL == "" {
			returnURL = "/"
		}
		redirectSuccess(w, r, returnURL)
	}
}

// SignupSubmissionHandler processes the registration form submission
func (s *Server) SignupSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client := s.backend.Get()
		if client == nil {
			redirectWithError(w, r, RouteSignup, "Service unavailable")
			return
		}

		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		email := r.FormValue("email")
		password := r.FormValue("password")
		confirm := r.FormValue("confirm_password")
		fullName := r.FormValue("full_name")

		if email == "" || password == "" {
			s.renderSignupError(w, r, "Email and password are required", email)
			return
		}
		if password != confirm {
			s.renderSignupError(w, r, "Passwords do not match", email)
			return
		}

		if _, err := client.Auth.SignUp(r.Context(), email, password, fullName); err != nil {
			switch {
			case apperrors.Is(err, apperrors.ErrUserExists):
				s.renderSignupError(w, r, "An account with that email already exists", email)
			default:
				s.renderSignupError(w, r, err.Error(), email)
			}
			return
		}

		// Sign the new account straight in
		rc := client.WithCookies(&requestCookies{r: r, w: w})
		if _, err := rc.SignIn(r.Context(), email, password); err != nil {
			redirectSuccess(w, r, RouteLogin)
			return
		}
		redirectSuccess(w, r, "/")
	}
}

// LogoutHandler ends the session and clears the cookie
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client := s.backend.Get()
		if client == nil {
			redirectSuccess(w, r, "/")
			return
		}

		rc := client.WithCookies(&requestCookies{r: r, w: w})
		if err := rc.SignOut(r.Context()); err != nil {
			log.Err(err).Msg("Failed to end session")
		}
		redirectSuccess(w, r, "/")
	}
}

// ValidatePasswordHandler validates password strength via API
func (s *Server) ValidatePasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		password := r.FormValue("new_password")
		if password == "" {
			password = r.FormValue("password")
		}

		if password == "" {
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(http.StatusOK)
			return
		}

		if err := auth.ValidatePasswordStrength(password); err != nil {
			w.Header().Set("Content-Type", "text/html")
			w.Header().Set("HX-Trigger", fmt.Sprintf(`{"passwordInvalid": "%s"}`, err.Error()))
			w.WriteHeader(http.StatusOK)
			fmt.Fprintf(w, `<span class="text-danger">%s</span>`, err.Error())
			return
		}

		w.Header().Set("Content-Type", "text/html")
		w.Header().Set("HX-Trigger", `{"passwordValid": ""}`)
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `<span class="text-success">OK</span>`)
	}
}

// renderLoginError redirects to login page with an error message
func (s *Server) renderLoginError(w http.ResponseWriter, r *http.Request, errorMsg, email string) {
	redirectURL := RouteLogin + "?error=" + url.QueryEscape(errorMsg)
	if email != "" {
		redirectURL += "&email=" + url.QueryEscape(email)
	}
	redirectSuccess(w, r, redirectURL)
}

// renderSignupError redirects to signup page with an error message
func (s *Server) renderSignupError(w http.ResponseWriter, r *http.Request, errorMsg, email string) {
	redirectURL := RouteSignup + "?error=" + url.QueryEscape(errorMsg)
	if email != "" {
		redirectURL += "&email=" + url.QueryEscape(email)
	}
	redirectSuccess(w, r, redirectURL)
}
