package reports

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"plantnet/models"
	"plantnet/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeStore struct {
	users, plants int64
	orders        []models.Order
	enriched      []models.EnrichedOrder
	lastScope     OrderScope
}

func (f *fakeStore) EnrichedOrders(_ context.Context, scope OrderScope) ([]models.EnrichedOrder, error) {
	f.lastScope = scope
	var out []models.EnrichedOrder
	for _, o := range f.enriched {
		if (scope.CustomerEmail != "" && o.Customer.Email == scope.CustomerEmail) ||
			(scope.SellerEmail != "" && o.SellerEmail == scope.SellerEmail) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeStore) CountUsers(context.Context) (int64, error)  { return f.users, nil }
func (f *fakeStore) CountPlants(context.Context) (int64, error) { return f.plants, nil }
func (f *fakeStore) OrderFacts(context.Context) ([]models.Order, error) {
	return f.orders, nil
}

func at(day, hour int) time.Time {
	return time.Date(2026, time.May, day, hour, 0, 0, 0, time.UTC)
}

func TestAdminSummarySameDay(t *testing.T) {
	store := &fakeStore{users: 4, plants: 9, orders: []models.Order{
		{Price: 10, Quantity: 1, CreatedAt: at(2, 8)},
		{Price: 20, Quantity: 2, CreatedAt: at(2, 12)},
		{Price: 30, Quantity: 3, CreatedAt: at(2, 23)},
	}}
	stats, err := NewAggregator(store).AdminSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(4), stats.TotalUsers)
	assert.Equal(t, int64(9), stats.TotalPlants)
	assert.Equal(t, 3, stats.TotalOrders)
	assert.Equal(t, 60.0, stats.TotalRevenue)
	require.Len(t, stats.ChartData, 1)
	assert.Equal(t, models.ChartPoint{Date: "2026-05-02", TotalOrders: 3, TotalRevenue: 60, TotalQuantity: 6}, stats.ChartData[0])
}

func TestBuildChartSortsNewestFirst(t *testing.T) {
	legacy := models.Order{ID: primitive.NewObjectIDFromTimestamp(at(1, 5)), Price: 7, Quantity: 1}
	chart := BuildChart([]models.Order{
		{Price: 1, Quantity: 1, CreatedAt: at(3, 1)},
		legacy,
		{Price: 2, Quantity: 4, CreatedAt: at(10, 1)},
		{Price: 3, Quantity: 1, CreatedAt: at(3, 22)},
	})
	require.Len(t, chart, 3)
	assert.Equal(t, []string{"2026-05-10", "2026-05-03", "2026-05-01"},
		[]string{chart[0].Date, chart[1].Date, chart[2].Date})
	assert.Equal(t, 2, chart[1].TotalOrders)
	assert.Equal(t, 4.0, chart[1].TotalRevenue)
	assert.Equal(t, 7.0, chart[2].TotalRevenue)
}

func TestAdminSummaryEmpty(t *testing.T) {
	stats, err := NewAggregator(&fakeStore{}).AdminSummary(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalOrders)
	assert.NotNil(t, stats.ChartData)
	assert.Empty(t, stats.ChartData)
}

func TestCustomerOrdersScopedToCaller(t *testing.T) {
	store := &fakeStore{enriched: []models.EnrichedOrder{
		{Order: models.Order{Customer: models.Party{Email: "a@x.com"}, SellerEmail: "s@x.com"}, Name: "Fern"},
		{Order: models.Order{Customer: models.Party{Email: "b@x.com"}, SellerEmail: "s@x.com"}, Name: "Fig"},
	}}
	h := NewHandler(NewAggregator(store))

	r := httptest.NewRequest(http.MethodGet, "/orders?email=a@x.com", nil)
	r = r.WithContext(utils.WithEmail(r.Context(), "a@x.com"))
	w := httptest.NewRecorder()
	h.GetCustomerOrders(w, r, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got []models.EnrichedOrder
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Fern", got[0].Name)

	r = httptest.NewRequest(http.MethodGet, "/orders?email=b@x.com", nil)
	r = r.WithContext(utils.WithEmail(r.Context(), "a@x.com"))
	w = httptest.NewRecorder()
	h.GetCustomerOrders(w, r, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSellerOrders(t *testing.T) {
	store := &fakeStore{enriched: []models.EnrichedOrder{
		{Order: models.Order{Customer: models.Party{Email: "a@x.com"}, SellerEmail: "s@x.com"}, Name: "Fern"},
		{Order: models.Order{Customer: models.Party{Email: "b@x.com"}, SellerEmail: "t@x.com"}, Name: "Fig"},
	}}
	got, err := NewAggregator(store).OrdersForSeller(context.Background(), "s@x.com")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "s@x.com", store.lastScope.SellerEmail)
}

func TestEnrichedOrderJSONIsFlat(t *testing.T) {
	o := models.EnrichedOrder{Order: models.Order{PlantID: "p1", Price: 20}, Name: "Fern", Category: "Indoor"}
	raw, err := json.Marshal(o)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "Fern", m["name"])
	assert.Equal(t, "p1", m["plantId"])
	assert.NotContains(t, m, "Order")
	assert.NotContains(t, m, "plants")
}

func TestRevenueSumsInCents(t *testing.T) {
	store := &fakeStore{orders: []models.Order{
		{Price: 0.1, Quantity: 1, CreatedAt: at(4, 9)},
		{Price: 0.2, Quantity: 1, CreatedAt: at(4, 10)},
	}}
	stats, err := NewAggregator(store).AdminSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0.3, stats.TotalRevenue)
	require.Len(t, stats.ChartData, 1)
	assert.Equal(t, 0.3, stats.ChartData[0].TotalRevenue)
}
