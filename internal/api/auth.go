package api

import (
	"net/http"
	"time"

	"storefront-be/internal/auth"
	"storefront-be/internal/transport"
	"storefront-be/internal/user"
)

const sessionTTL = 24 * time.Hour

type authResponse struct {
	Token string         `json:"token"`
	User  *user.Response `json:"user"`
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var input user.RegisterInput
	if err := transport.DecodeJSON(w, r, &input); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	res, err := s.users.Register(r.Context(), input)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	s.setSessionCookie(w, res.Token, int(sessionTTL.Seconds()))
	transport.WriteJSON(w, http.StatusCreated, authResponse{Token: res.Token, User: user.ToResponse(res.User)})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var input user.LoginInput
	if err := transport.DecodeJSON(w, r, &input); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	res, err := s.users.Login(r.Context(), input)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	s.setSessionCookie(w, res.Token, int(sessionTTL.Seconds()))
	transport.WriteJSON(w, http.StatusOK, authResponse{Token: res.Token, User: user.ToResponse(res.User)})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.setSessionCookie(w, "", -1)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.GetByID(r.Context(), currentUser(r))
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, user.ToResponse(u))
}
