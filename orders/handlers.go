package orders

import (
	"net/http"

	"plantnet/utils"

	"github.com/julienschmidt/httprouter"
)

type Handler struct {
	engine *Engine
}

func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

// PlaceOrder handles POST /order
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req PlaceRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}
	res, err := h.engine.PlaceOrder(r.Context(), utils.GetEmailFromRequest(r), req)
	if err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, res)
}

// AdjustQuantity handles PATCH /plants/quantity/:id
func (h *Handler) AdjustQuantity(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		QuantityToUpdate int    `json:"quantityToUpdate"`
		Status           string `json:"status"`
	}
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}
	if err := h.engine.AdjustQuantity(r.Context(), utils.GetEmailFromRequest(r), ps.ByName("id"), body.QuantityToUpdate, body.Status); err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"acknowledged": true, "modifiedCount": 1})
}

// UpdateStatus handles PATCH /order/status/:id
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Status string `json:"status"`
	}
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}
	err := h.engine.UpdateStatus(r.Context(), utils.GetEmailFromRequest(r), ps.ByName("id"), body.Status)
	if err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"acknowledged": true, "status": body.Status})
}

// CancelOrder handles DELETE /orders/:id
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.engine.CancelOrder(r.Context(), utils.GetEmailFromRequest(r), ps.ByName("id")); err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"acknowledged": true, "deletedCount": 1})
}

// Receipt handles GET /order/receipt/:id
func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	pdf, err := h.engine.Receipt(r.Context(), utils.GetEmailFromRequest(r), id)
	if err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=receipt-"+id+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}
