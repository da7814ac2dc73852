package models

import "time"

// Notification is an event raised after a committed order; delivery is best effort.
type Notification struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	OrderID   string    `json:"orderId"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

const (
	NotifyCustomerOrderPlaced = "customer.order_placed"
	NotifySellerOrderPlaced   = "seller.order_placed"
)
