package api

import (
	"net/http"
	"time"

	"github.com/rpupo63/project-showcase-backend/errs"
	"github.com/rpupo63/project-showcase-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type authHandler struct {
	responder    Responder
	logger       zerolog.Logger
	identity     *services.IdentityService
	cookieName   string
	cookieSecure bool
}

func newAuthHandler(identity *services.IdentityService, cookieName string, cookieSecure bool) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		identity:     identity,
		cookieName:   cookieName,
		cookieSecure: cookieSecure,
	}
}

func (h authHandler) sessionCookie(value string, expires time.Time) *http.Cookie {
	cookie := &http.Cookie{
		Name:     h.cookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  expires,
	}
	if value == "" {
		cookie.MaxAge = -1
	}
	return cookie
}

// register creates an account
// @Summary Register
// @Description Creates a user account. Emails are unique case-insensitively.
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body services.RegisterInput true "Account details"
// @Success 201 {object} RegisterResponse "Created user"
// @Failure 400 {object} ErrorResponse "Bad Request - Validation failed"
// @Failure 409 {object} ErrorResponse "Conflict - Email already registered"
// @Router /auth/register [post]
func (h authHandler) register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input services.RegisterInput
		if err := decodeJSON(w, r, &input); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		user, err := h.identity.Register(r.Context(), input)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusCreated, RegisterResponse{UserID: user.ID, User: user})
	}
}

// login establishes a session
// @Summary Login
// @Description Verifies credentials and returns a session token, also set as an HttpOnly cookie
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Email and password"
// @Success 200 {object} LoginResponse "Session"
// @Failure 401 {object} ErrorResponse "Unauthorized - Invalid credentials"
// @Router /auth/login [post]
func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input LoginRequest
		if err := decodeJSON(w, r, &input); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		user, session, err := h.identity.Authenticate(r.Context(), input.Email, input.Password)
		if err != nil {
			// unknown emails and wrong passwords look the same to the client
			if errs.IsNotFound(err) || errs.IsInvalidCredentialError(err) {
				err = errs.NewInvalidCredentialError()
			}
			h.responder.WriteError(w, err)
			return
		}

		http.SetCookie(w, h.sessionCookie(session.Token, session.ExpiresAt))
		h.responder.WriteJSON(w, LoginResponse{Session: session, User: user})
	}
}

// me returns the signed-in user
// @Summary Current user
// @Tags Auth
// @Produce json
// @Success 200 {object} models.User "Current user"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /auth/me [get]
func (h authHandler) me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := h.identity.GetUser(r.Context(), ctxGetUserID(r.Context()))
		if err != nil {
			if errs.IsNotFound(err) {
				err = errs.Unauthorized
			}
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, user)
	}
}

// logout ends the session
// @Summary Logout
// @Description Revokes the current session and clears the cookie
// @Tags Auth
// @Produce json
// @Success 200 {object} StatusResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/logout [post]
func (h authHandler) logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.identity.Logout(r.Context(), ctxGetIdentity(r.Context())); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		http.SetCookie(w, h.sessionCookie("", time.Unix(0, 0)))
		h.responder.WriteJSON(w, StatusResponse{Status: "success", Message: "signed out"})
	}
}
