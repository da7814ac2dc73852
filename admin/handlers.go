package admin

import (
	"context"
	"net/http"

	"plantnet/models"
	"plantnet/utils"

	"github.com/julienschmidt/httprouter"
)

// Directory is the slice of the user service admins act on.
type Directory interface {
	ListExcept(ctx context.Context, email string) ([]models.User, error)
	SetRole(ctx context.Context, email string, role models.Role) error
}

type Handler struct {
	users Directory
}

func NewHandler(users Directory) *Handler {
	return &Handler{users: users}
}

// GetUsers handles GET /all-users/:email
func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	list, err := h.users.ListExcept(r.Context(), ps.ByName("email"))
	if err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// UpdateRole handles PATCH /user/role/:email with body {"role": "..."}.
func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Role models.Role `json:"role"`
	}
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}
	if err := h.users.SetRole(r.Context(), ps.ByName("email"), body.Role); err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"acknowledged": true, "role": body.Role, "status": models.StatusVerified})
}
