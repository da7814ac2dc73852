package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"plantnet/apperr"
	"plantnet/globals"
	"plantnet/models"
	"plantnet/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
)

// JWT claims
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserFinder loads a user by email, returning apperr.ErrNotFound when absent.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type Middleware func(httprouter.Handle) httprouter.Handle

// Gate authenticates callers from the signed session credential and checks roles.
type Gate struct {
	users  UserFinder
	secret []byte
}

func NewGate(users UserFinder, secret []byte) *Gate {
	return &Gate{users: users, secret: secret}
}

// NewToken signs a session credential for email.
func NewToken(secret []byte, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ValidateJWT verifies signature and expiry and returns the claims.
func ValidateJWT(tokenString string, secret []byte) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("%w: missing token", apperr.ErrUnauthorized)
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid || claims.Email == "" {
		return nil, fmt.Errorf("%w: invalid token", apperr.ErrUnauthorized)
	}
	return claims, nil
}

func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(globals.TokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// Identify derives the caller's email from the request credential.
func (g *Gate) Identify(r *http.Request) (string, error) {
	claims, err := ValidateJWT(tokenFromRequest(r), g.secret)
	if err != nil {
		return "", err
	}
	return claims.Email, nil
}

// Authorize checks that the stored user for email holds role.
func (g *Gate) Authorize(ctx context.Context, email string, role models.Role) error {
	user, err := g.users.FindByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		return fmt.Errorf("%w: only %s can perform this action", apperr.ErrForbidden, role)
	}
	if err != nil {
		return err
	}
	if user.Role != role {
		return fmt.Errorf("%w: only %s can perform this action", apperr.ErrForbidden, role)
	}
	return nil
}

func (g *Gate) Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		email, err := g.Identify(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "unauthorized access")
			return
		}
		next(w, r.WithContext(utils.WithEmail(r.Context(), email)), ps)
	}
}

// RequireRole must run after Authenticate.
func (g *Gate) RequireRole(role models.Role) Middleware {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			email := utils.GetEmailFromRequest(r)
			if email == "" {
				utils.RespondWithError(w, http.StatusUnauthorized, "unauthorized access")
				return
			}
			if err := g.Authorize(r.Context(), email, role); err != nil {
				utils.RespondWithErr(w, r, err)
				return
			}
			next(w, r, ps)
		}
	}
}

// Chain applies mws so the first one runs first.
func Chain(mws ...Middleware) Middleware {
	return func(h httprouter.Handle) httprouter.Handle {
		for i := len(mws) - 1; i >= 0; i-- {
			h = mws[i](h)
		}
		return h
	}
}
