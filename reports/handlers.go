package reports

import (
	"net/http"

	"plantnet/utils"

	"github.com/julienschmidt/httprouter"
)

type Handler struct {
	agg *Aggregator
}

func NewHandler(agg *Aggregator) *Handler {
	return &Handler{agg: agg}
}

// GetCustomerOrders handles GET /orders. The optional ?email must be the caller's.
func (h *Handler) GetCustomerOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	email := utils.GetEmailFromRequest(r)
	if q := r.URL.Query().Get("email"); q != "" && q != email {
		utils.RespondWithError(w, http.StatusForbidden, "forbidden access")
		return
	}
	orders, err := h.agg.OrdersForCustomer(r.Context(), email)
	if err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, orders)
}

// GetSellerOrders handles GET /orders/seller
func (h *Handler) GetSellerOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	orders, err := h.agg.OrdersForSeller(r.Context(), utils.GetEmailFromRequest(r))
	if err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, orders)
}

// GetAdminStats handles GET /admin-stat
func (h *Handler) GetAdminStats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	stats, err := h.agg.AdminSummary(r.Context())
	if err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, stats)
}
