package utils

import (
	"encoding/json"
	"io"
	"net/http"

	"plantnet/apperr"

	"github.com/rs/zerolog/log"
)

type M map[string]any

// RespondWithJSON sends data as a JSON response.
func RespondWithJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

func RespondWithError(w http.ResponseWriter, code int, msg string) {
	RespondWithJSON(w, code, M{"message": msg})
}

// RespondWithErr maps err onto the error taxonomy. Internal errors are logged
// and reported without detail.
func RespondWithErr(w http.ResponseWriter, r *http.Request, err error) {
	code := apperr.Status(err)
	if code == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		RespondWithError(w, code, "internal server error")
		return
	}
	RespondWithError(w, code, err.Error())
}

// DecodeJSON reads a JSON body into dst, reporting malformed input as invalid.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return apperr.ErrInvalid
	}
	return nil
}
