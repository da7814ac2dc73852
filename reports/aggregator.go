package reports

import (
	"context"
	"sort"
	"time"

	"plantnet/models"
	"plantnet/pay"
)

// OrderScope selects orders by customer or seller email; one field is set.
type OrderScope struct {
	CustomerEmail string
	SellerEmail   string
}

type Store interface {
	EnrichedOrders(ctx context.Context, scope OrderScope) ([]models.EnrichedOrder, error)
	CountUsers(ctx context.Context) (int64, error)
	CountPlants(ctx context.Context) (int64, error)
	// OrderFacts returns every order with at least createdAt, price and quantity.
	OrderFacts(ctx context.Context) ([]models.Order, error)
}

type Aggregator struct {
	store Store
}

func NewAggregator(store Store) *Aggregator {
	return &Aggregator{store: store}
}

func (a *Aggregator) OrdersForCustomer(ctx context.Context, email string) ([]models.EnrichedOrder, error) {
	return a.store.EnrichedOrders(ctx, OrderScope{CustomerEmail: email})
}

func (a *Aggregator) OrdersForSeller(ctx context.Context, email string) ([]models.EnrichedOrder, error) {
	return a.store.EnrichedOrders(ctx, OrderScope{SellerEmail: email})
}

func (a *Aggregator) AdminSummary(ctx context.Context) (*models.AdminStats, error) {
	users, err := a.store.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	plants, err := a.store.CountPlants(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := a.store.OrderFacts(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.AdminStats{
		TotalUsers:  users,
		TotalPlants: plants,
		TotalOrders: len(orders),
		ChartData:   BuildChart(orders),
	}
	var cents int64
	for _, o := range orders {
		cents += pay.ToMinorUnits(o.Price)
	}
	stats.TotalRevenue = fromMinorUnits(cents)
	return stats, nil
}

// OrderDay is the UTC calendar day an order was placed on, falling back to
// the id's embedded timestamp for orders stored without createdAt.
func OrderDay(o models.Order) string {
	t := o.CreatedAt
	if t.IsZero() {
		t = o.ID.Timestamp()
	}
	return t.UTC().Format(time.DateOnly)
}

func fromMinorUnits(cents int64) float64 {
	return float64(cents) / 100
}

// BuildChart buckets orders per day, newest day first. Revenue is summed in
// minor units so it matches the per-order rounding.
func BuildChart(orders []models.Order) []models.ChartPoint {
	byDay := map[string]*models.ChartPoint{}
	cents := map[string]int64{}
	for _, o := range orders {
		day := OrderDay(o)
		p, ok := byDay[day]
		if !ok {
			p = &models.ChartPoint{Date: day}
			byDay[day] = p
		}
		p.TotalOrders++
		p.TotalQuantity += o.Quantity
		cents[day] += pay.ToMinorUnits(o.Price)
	}

	chart := make([]models.ChartPoint, 0, len(byDay))
	for day, p := range byDay {
		p.TotalRevenue = fromMinorUnits(cents[day])
		chart = append(chart, *p)
	}
	sort.Slice(chart, func(i, j int) bool { return chart[i].Date > chart[j].Date })
	return chart
}
