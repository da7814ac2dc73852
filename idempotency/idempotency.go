package idempotency

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"time"

	"plantnet/globals"
	"plantnet/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"
)

// Header carries the client-chosen key that makes a mutating request safe to retry.
const Header = "Idempotency-Key"

const maxKeyLen = 255

// ErrDuplicate is returned by Store.Reserve when the key is already taken.
var ErrDuplicate = errors.New("idempotency key already used")

type Response struct {
	Status      int    `bson:"status"`
	ContentType string `bson:"contentType"`
	Body        []byte `bson:"body"`
}

type Record struct {
	Key         string    `bson:"key"`
	Method      string    `bson:"method"`
	Path        string    `bson:"path"`
	RequestHash string    `bson:"requestHash"`
	Response    *Response `bson:"response,omitempty"`
	CreatedAt   time.Time `bson:"createdAt"`
	ExpiresAt   time.Time `bson:"expiresAt"`
}

type Store interface {
	// Reserve inserts rec, returning ErrDuplicate if its key exists.
	Reserve(ctx context.Context, rec *Record) error
	Find(ctx context.Context, key string) (*Record, error)
	Complete(ctx context.Context, key string, resp Response) error
	// Release forgets a key whose request did not complete.
	Release(ctx context.Context, key string) error
}

// Guard replays the first response for a repeated Idempotency-Key.
type Guard struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

func NewGuard(store Store, ttl time.Duration) *Guard {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Guard{store: store, ttl: ttl, now: time.Now}
}

// KeyFromContext returns the scoped key of the request being served, or "".
func KeyFromContext(ctx context.Context) string {
	k, _ := ctx.Value(globals.IdempotencyKeyCtx).(string)
	return k
}

// scopedKey binds the client key to the caller so two users never collide.
func scopedKey(email, key string) string {
	sum := sha256.Sum256([]byte(email + "\x00" + key))
	return hex.EncodeToString(sum[:])
}

func requestHash(r *http.Request, body []byte) string {
	h := sha256.New()
	h.Write([]byte(r.Method + ":" + r.URL.Path + ":"))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (c *captureWriter) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *captureWriter) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.buf.Write(b)
	return c.ResponseWriter.Write(b)
}

// Middleware must run after Authenticate. Requests without the header pass through.
func (g *Guard) Middleware(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		key := r.Header.Get(Header)
		if key == "" {
			next(w, r, ps)
			return
		}
		if len(key) > maxKeyLen {
			utils.RespondWithError(w, http.StatusBadRequest, "Idempotency-Key is too long")
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "failed to read request body")
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		ctx := r.Context()
		scoped := scopedKey(utils.EmailFromContext(ctx), key)
		hash := requestHash(r, body)
		now := g.now()

		err = g.store.Reserve(ctx, &Record{
			Key:         scoped,
			Method:      r.Method,
			Path:        r.URL.Path,
			RequestHash: hash,
			CreatedAt:   now,
			ExpiresAt:   now.Add(g.ttl),
		})
		switch {
		case err == nil:
			g.serveFirst(w, r.WithContext(context.WithValue(ctx, globals.IdempotencyKeyCtx, scoped)), ps, scoped, next)
		case errors.Is(err, ErrDuplicate):
			g.replay(w, r, scoped, hash)
		default:
			utils.RespondWithErr(w, r, err)
		}
	}
}

func (g *Guard) serveFirst(w http.ResponseWriter, r *http.Request, ps httprouter.Params, key string, next httprouter.Handle) {
	cw := &captureWriter{ResponseWriter: w}
	next(cw, r, ps)

	// The request context may already be cancelled once the handler returns.
	ctx := context.WithoutCancel(r.Context())
	if cw.status == 0 || cw.status >= http.StatusInternalServerError {
		if err := g.store.Release(ctx, key); err != nil {
			log.Error().Err(err).Msg("release idempotency key")
		}
		return
	}
	resp := Response{Status: cw.status, ContentType: cw.Header().Get("Content-Type"), Body: cw.buf.Bytes()}
	if err := g.store.Complete(ctx, key, resp); err != nil {
		log.Error().Err(err).Msg("store idempotent response")
	}
}

func (g *Guard) replay(w http.ResponseWriter, r *http.Request, key, hash string) {
	rec, err := g.store.Find(r.Context(), key)
	if err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}
	if rec.RequestHash != hash {
		utils.RespondWithError(w, http.StatusConflict, "Idempotency-Key was used for a different request")
		return
	}
	if rec.Response == nil {
		utils.RespondWithError(w, http.StatusConflict, "a request with this Idempotency-Key is still in progress")
		return
	}

	log.Info().Str("path", r.URL.Path).Msg("replaying idempotent response")
	if rec.Response.ContentType != "" {
		w.Header().Set("Content-Type", rec.Response.ContentType)
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(rec.Response.Status)
	_, _ = w.Write(rec.Response.Body)
}
