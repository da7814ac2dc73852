package pay

import (
	"net/http"

	"plantnet/utils"

	"github.com/julienschmidt/httprouter"
)

type Handler struct {
	reconciler *Reconciler
}

func NewHandler(reconciler *Reconciler) *Handler {
	return &Handler{reconciler: reconciler}
}

// CreatePaymentIntent handles POST /create-payment-intent. Any client total
// in the body is ignored.
func (h *Handler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		ID            string `json:"id"`
		PlantID       string `json:"plantId"`
		TotalQuantity int    `json:"totalQuantity"`
	}
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}
	id := body.ID
	if id == "" {
		id = body.PlantID
	}

	intent, err := h.reconciler.CreateIntent(r.Context(), id, body.TotalQuantity)
	if err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, intent)
}
