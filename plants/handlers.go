package plants

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"plantnet/apperr"
	"plantnet/models"
	"plantnet/utils"

	"github.com/julienschmidt/httprouter"
)

// Catalog is the subset of the store the HTTP handlers use.
type Catalog interface {
	Get(ctx context.Context, id string) (*models.Plant, error)
	Create(ctx context.Context, p *models.Plant) error
	List(ctx context.Context) ([]models.Plant, error)
	ListBySeller(ctx context.Context, sellerEmail string) ([]models.Plant, error)
	DeleteOwned(ctx context.Context, id, sellerEmail string) error
}

type Handler struct {
	catalog Catalog
}

func NewHandler(catalog Catalog) *Handler {
	return &Handler{catalog: catalog}
}

// Validate checks the fields order logic relies on.
func Validate(p *models.Plant) error {
	p.Name = strings.TrimSpace(p.Name)
	switch {
	case p.Name == "":
		return fmt.Errorf("%w: name is required", apperr.ErrInvalid)
	case p.Price <= 0:
		return fmt.Errorf("%w: price must be positive", apperr.ErrInvalid)
	case p.Quantity < 0:
		return fmt.Errorf("%w: quantity must not be negative", apperr.ErrInvalid)
	}
	return nil
}

// CreatePlant handles POST /plants. The seller is always the caller.
func (h *Handler) CreatePlant(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var p models.Plant
	if err := utils.DecodeJSON(r, &p); err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}
	p.Seller.Email = utils.GetEmailFromRequest(r)
	if err := Validate(&p); err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}
	if err := h.catalog.Create(r.Context(), &p); err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"acknowledged": true, "insertedId": p.ID.Hex()})
}

// GetSellerPlants handles GET /seller/plants
func (h *Handler) GetSellerPlants(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	plants, err := h.catalog.ListBySeller(r.Context(), utils.GetEmailFromRequest(r))
	if err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, plants)
}

// DeletePlant handles DELETE /delete/plant/seller/:id
func (h *Handler) DeletePlant(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.catalog.DeleteOwned(r.Context(), ps.ByName("id"), utils.GetEmailFromRequest(r)); err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"acknowledged": true, "deletedCount": 1})
}

func (h *Handler) GetPlants(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	plants, err := h.catalog.List(r.Context())
	if err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, plants)
}

func (h *Handler) GetPlant(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	p, err := h.catalog.Get(r.Context(), ps.ByName("id"))
	if err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}
