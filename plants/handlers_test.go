package plants

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"plantnet/apperr"
	"plantnet/models"
	"plantnet/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memCatalog struct {
	plants map[string]*models.Plant
}

func newMemCatalog() *memCatalog {
	return &memCatalog{plants: map[string]*models.Plant{}}
}

func (m *memCatalog) Get(_ context.Context, id string) (*models.Plant, error) {
	p, ok := m.plants[id]
	if !ok {
		return nil, fmt.Errorf("%w: plant %s", apperr.ErrNotFound, id)
	}
	return p, nil
}

func (m *memCatalog) Create(_ context.Context, p *models.Plant) error {
	p.ID = primitive.NewObjectID()
	m.plants[p.ID.Hex()] = p
	return nil
}

func (m *memCatalog) List(context.Context) ([]models.Plant, error) {
	out := []models.Plant{}
	for _, p := range m.plants {
		out = append(out, *p)
	}
	return out, nil
}

func (m *memCatalog) ListBySeller(_ context.Context, email string) ([]models.Plant, error) {
	out := []models.Plant{}
	for _, p := range m.plants {
		if p.Seller.Email == email {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memCatalog) DeleteOwned(_ context.Context, id, email string) error {
	p, ok := m.plants[id]
	if !ok || p.Seller.Email != email {
		return fmt.Errorf("%w: plant %s", apperr.ErrNotFound, id)
	}
	delete(m.plants, id)
	return nil
}

func asSeller(r *http.Request, email string) *http.Request {
	return r.WithContext(utils.WithEmail(r.Context(), email))
}

func TestCreatePlantForcesCallerAsSeller(t *testing.T) {
	cat := newMemCatalog()
	h := NewHandler(cat)

	body := `{"name":"Monstera","category":"Indoor","price":12.5,"quantity":4,"seller":{"email":"someone-else@x.com"}}`
	r := asSeller(httptest.NewRequest(http.MethodPost, "/plants", strings.NewReader(body)), "seller@x.com")
	w := httptest.NewRecorder()
	h.CreatePlant(w, r, nil)

	require.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	p := cat.plants[resp["insertedId"].(string)]
	require.NotNil(t, p)
	assert.Equal(t, "seller@x.com", p.Seller.Email)
}

func TestCreatePlantValidates(t *testing.T) {
	h := NewHandler(newMemCatalog())
	for _, body := range []string{
		`{"name":"","price":1,"quantity":1}`,
		`{"name":"Fern","price":0,"quantity":1}`,
		`{"name":"Fern","price":3,"quantity":-2}`,
	} {
		r := asSeller(httptest.NewRequest(http.MethodPost, "/plants", strings.NewReader(body)), "seller@x.com")
		w := httptest.NewRecorder()
		h.CreatePlant(w, r, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestSellerOnlySeesAndDeletesOwnPlants(t *testing.T) {
	cat := newMemCatalog()
	mine := &models.Plant{Name: "Fern", Price: 3, Seller: models.Party{Email: "seller@x.com"}}
	theirs := &models.Plant{Name: "Cactus", Price: 5, Seller: models.Party{Email: "other@x.com"}}
	require.NoError(t, cat.Create(context.Background(), mine))
	require.NoError(t, cat.Create(context.Background(), theirs))
	h := NewHandler(cat)

	w := httptest.NewRecorder()
	h.GetSellerPlants(w, asSeller(httptest.NewRequest(http.MethodGet, "/seller/plants", nil), "seller@x.com"), nil)
	var got []models.Plant
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Fern", got[0].Name)

	w = httptest.NewRecorder()
	ps := httprouter.Params{{Key: "id", Value: theirs.ID.Hex()}}
	h.DeletePlant(w, asSeller(httptest.NewRequest(http.MethodDelete, "/", nil), "seller@x.com"), ps)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, cat.plants, theirs.ID.Hex())

	w = httptest.NewRecorder()
	ps = httprouter.Params{{Key: "id", Value: mine.ID.Hex()}}
	h.DeletePlant(w, asSeller(httptest.NewRequest(http.MethodDelete, "/", nil), "seller@x.com"), ps)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, cat.plants, mine.ID.Hex())
}

func TestGetPlantNotFound(t *testing.T) {
	h := NewHandler(newMemCatalog())
	w := httptest.NewRecorder()
	h.GetPlant(w, httptest.NewRequest(http.MethodGet, "/plant/x", nil), httprouter.Params{{Key: "id", Value: "x"}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
