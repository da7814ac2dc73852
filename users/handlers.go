package users

import (
	"errors"
	"net/http"

	"plantnet/apperr"
	"plantnet/models"
	"plantnet/utils"

	"github.com/julienschmidt/httprouter"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// SaveUser handles POST /users/:email
func (h *Handler) SaveUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var info models.User
	if r.ContentLength != 0 {
		if err := utils.DecodeJSON(r, &info); err != nil {
			utils.RespondWithErr(w, r, err)
			return
		}
	}
	u, err := h.svc.Save(r.Context(), ps.ByName("email"), info)
	if err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, u)
}

// GetRole handles GET /users/role/:email. Unknown users have an empty role.
func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	u, err := h.svc.FindByEmail(r.Context(), ps.ByName("email"))
	if errors.Is(err, apperr.ErrNotFound) {
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"role": nil})
		return
	}
	if err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"role": u.Role})
}

// RequestSeller handles PATCH /users/:email
func (h *Handler) RequestSeller(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.svc.RequestSeller(r.Context(), utils.GetEmailFromRequest(r), ps.ByName("email")); err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"acknowledged": true, "status": models.StatusRequested})
}
