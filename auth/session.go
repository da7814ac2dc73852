package auth

import (
	"net/http"
	"time"

	"plantnet/globals"
	"plantnet/middleware"
	"plantnet/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"
)

// Sessions issues and clears the http-only session cookie.
type Sessions struct {
	secret     []byte
	ttl        time.Duration
	production bool
	identity   IdentityVerifier
}

// NewSessions builds the session issuer. With a nil verifier every
// POST /jwt is refused.
func NewSessions(secret []byte, ttl time.Duration, production bool, identity IdentityVerifier) *Sessions {
	return &Sessions{secret: secret, ttl: ttl, production: production, identity: identity}
}

func (s *Sessions) cookie(value string, maxAge int) *http.Cookie {
	c := &http.Cookie{
		Name:     globals.TokenCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.production,
		SameSite: http.SameSiteStrictMode,
	}
	if s.production {
		c.SameSite = http.SameSiteNoneMode
	}
	return c
}

// IssueToken handles POST /jwt. The session email is whatever the identity
// proof vouches for.
func (s *Sessions) IssueToken(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var proof Proof
	if err := utils.DecodeJSON(r, &proof); err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}
	if s.identity == nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "identity verification is not configured")
		return
	}
	email, err := s.identity.VerifyIdentity(r.Context(), proof)
	if err != nil {
		log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("session request rejected")
		utils.RespondWithErr(w, r, err)
		return
	}

	token, err := middleware.NewToken(s.secret, email, s.ttl)
	if err != nil {
		log.Error().Err(err).Msg("sign session token")
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	http.SetCookie(w, s.cookie(token, int(s.ttl.Seconds())))
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}

// Logout handles GET /logout
func (s *Sessions) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	http.SetCookie(w, s.cookie("", -1))
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}
