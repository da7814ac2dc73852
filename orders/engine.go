package orders

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"plantnet/apperr"
	"plantnet/models"
	"plantnet/utils"

	"github.com/rs/zerolog/log"
)

// Ledger is the inventory view the engine needs: authoritative price and
// atomic stock arithmetic.
type Ledger interface {
	Get(ctx context.Context, id string) (*models.Plant, error)
	Decrement(ctx context.Context, id string, amount int) error
	Increment(ctx context.Context, id string, amount int) error
}

type Store interface {
	Insert(ctx context.Context, o *models.Order) error
	Get(ctx context.Context, id string) (*models.Order, error)
	// AdvanceStatus sets status on orders with id whose current status is in
	// from, returning how many matched.
	AdvanceStatus(ctx context.Context, id string, from []string, to string) (int64, error)
	// DeleteUnlessDelivered removes the order unless it is Delivered and
	// returns the removed document.
	DeleteUnlessDelivered(ctx context.Context, id string) (*models.Order, error)
}

type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Emitter raises notification events; it must not block the caller.
type Emitter interface {
	Emit(ctx context.Context, n models.Notification)
}

type Engine struct {
	ledger Ledger
	store  Store
	tx     Transactor
	events Emitter
	now    func() time.Time
}

func NewEngine(ledger Ledger, store Store, tx Transactor, events Emitter) *Engine {
	return &Engine{ledger: ledger, store: store, tx: tx, events: events, now: time.Now}
}

type PlaceRequest struct {
	PlantID     string       `json:"plantId"`
	Quantity    int          `json:"quantity"`
	Customer    models.Party `json:"customer"`
	SellerEmail string       `json:"sellerEmail"`
	Address     string       `json:"address"`
	// Price is accepted for compatibility and never used.
	Price float64 `json:"price"`
}

type PlaceResult struct {
	Acknowledged bool    `json:"acknowledged"`
	InsertedID   string  `json:"insertedId"`
	Price        float64 `json:"price"`
}

// Total is quantity times unit price, rounded to minor-unit precision.
func Total(quantity int, unitPrice float64) float64 {
	return math.Round(float64(quantity)*unitPrice*100) / 100
}

// PlaceOrder prices the order from the catalog, takes the stock and stores the
// order in one transaction, then raises customer and seller notifications.
func (e *Engine) PlaceOrder(ctx context.Context, customerEmail string, req PlaceRequest) (*PlaceResult, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", apperr.ErrInvalid)
	}

	plant, err := e.ledger.Get(ctx, req.PlantID)
	if err != nil {
		return nil, err
	}

	sellerEmail := plant.Seller.Email
	if sellerEmail == "" {
		sellerEmail = req.SellerEmail
	}
	customer := req.Customer
	customer.Email = customerEmail

	order := &models.Order{
		PlantID:     plant.ID.Hex(),
		Customer:    customer,
		SellerEmail: sellerEmail,
		Quantity:    req.Quantity,
		Price:       Total(req.Quantity, plant.Price),
		Address:     req.Address,
		Status:      models.OrderPending,
		CreatedAt:   e.now().UTC(),
	}

	err = e.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := e.ledger.Decrement(ctx, order.PlantID, order.Quantity); err != nil {
			return err
		}
		return e.store.Insert(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	e.notifyPlaced(ctx, order)

	return &PlaceResult{Acknowledged: true, InsertedID: order.ID.Hex(), Price: order.Price}, nil
}

func (e *Engine) notifyPlaced(ctx context.Context, o *models.Order) {
	now := e.now().UTC()
	orderID := o.ID.Hex()

	e.events.Emit(ctx, models.Notification{
		ID:        utils.GetUUID(),
		Kind:      models.NotifyCustomerOrderPlaced,
		OrderID:   orderID,
		To:        o.Customer.Email,
		Subject:   "Order Placed",
		Message:   "You have placed an order successfully. Order Id is: " + orderID,
		CreatedAt: now,
	})

	if o.SellerEmail == "" {
		log.Warn().Str("order", orderID).Msg("order has no seller email; seller not notified")
		return
	}
	name := o.Customer.Name
	if name == "" {
		name = o.Customer.Email
	}
	e.events.Emit(ctx, models.Notification{
		ID:        utils.GetUUID(),
		Kind:      models.NotifySellerOrderPlaced,
		OrderID:   orderID,
		To:        o.SellerEmail,
		Subject:   "Order Placed",
		Message:   "Great news! You got an order from " + name,
		CreatedAt: now,
	})
}

const (
	Decrease = "decrease"
	Increase = "increase"
)

// AdjustQuantity is the seller's manual stock correction; direction defaults
// to decrease. Orders move stock themselves, so this is not part of checkout.
func (e *Engine) AdjustQuantity(ctx context.Context, sellerEmail, plantID string, delta int, direction string) error {
	dir := strings.ToLower(direction)
	if dir != "" && dir != Decrease && dir != Increase {
		return fmt.Errorf("%w: direction must be %q or %q", apperr.ErrInvalid, Increase, Decrease)
	}
	plant, err := e.ledger.Get(ctx, plantID)
	if err != nil {
		return err
	}
	if plant.Seller.Email != sellerEmail {
		return fmt.Errorf("%w: only the plant's seller can adjust its stock", apperr.ErrForbidden)
	}

	if dir == Increase {
		return e.ledger.Increment(ctx, plantID, delta)
	}
	return e.ledger.Decrement(ctx, plantID, delta)
}

func stageRank(status string) int {
	return slices.Index(models.OrderStages, status)
}

// UpdateStatus moves an order forward along Pending → Processing → Shipped →
// Delivered. Skipping ahead is allowed; moving back or repeating is not.
func (e *Engine) UpdateStatus(ctx context.Context, sellerEmail, orderID, status string) error {
	rank := stageRank(status)
	if rank < 0 {
		return fmt.Errorf("%w: unknown status %q", apperr.ErrInvalid, status)
	}

	order, err := e.store.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if order.SellerEmail != sellerEmail {
		return fmt.Errorf("%w: order belongs to another seller", apperr.ErrForbidden)
	}

	from := models.OrderStages[:rank]
	if len(from) > 0 {
		matched, err := e.store.AdvanceStatus(ctx, orderID, from, status)
		if err != nil {
			return err
		}
		if matched > 0 {
			return nil
		}
		// Re-read so the error names the status that blocked the update.
		if current, err := e.store.Get(ctx, orderID); err == nil {
			order = current
		}
	}
	return fmt.Errorf("%w: cannot move order from %s to %s", apperr.ErrConflict, order.Status, status)
}

// CancelOrder deletes a customer's order and restocks its plant in one
// transaction. Delivered orders cannot be cancelled.
func (e *Engine) CancelOrder(ctx context.Context, customerEmail, orderID string) error {
	order, err := e.store.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Customer.Email != customerEmail {
		return fmt.Errorf("%w: order belongs to another customer", apperr.ErrForbidden)
	}
	if order.Status == models.OrderDelivered {
		return fmt.Errorf("%w: cannot cancel once the product is Delivered", apperr.ErrConflict)
	}

	return e.tx.WithinTx(ctx, func(ctx context.Context) error {
		deleted, err := e.store.DeleteUnlessDelivered(ctx, orderID)
		if err != nil {
			return err
		}
		err = e.ledger.Increment(ctx, deleted.PlantID, deleted.Quantity)
		if errors.Is(err, apperr.ErrNotFound) {
			log.Warn().Str("order", orderID).Str("plant", deleted.PlantID).Msg("plant gone; cancelled order not restocked")
			return nil
		}
		return err
	})
}

// Receipt renders a PDF receipt for the order's customer or seller.
func (e *Engine) Receipt(ctx context.Context, email, orderID string) ([]byte, error) {
	order, err := e.store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if email != order.Customer.Email && email != order.SellerEmail {
		return nil, fmt.Errorf("%w: not a party to this order", apperr.ErrForbidden)
	}

	plantName := order.PlantID
	if plant, err := e.ledger.Get(ctx, order.PlantID); err == nil {
		plantName = plant.Name
	}
	return RenderReceipt(order, plantName)
}
