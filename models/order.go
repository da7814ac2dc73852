package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OrderPending    = "Pending"
	OrderProcessing = "Processing"
	OrderShipped    = "Shipped"
	OrderDelivered  = "Delivered"
)

// OrderStages lists order statuses in lifecycle order.
var OrderStages = []string{OrderPending, OrderProcessing, OrderShipped, OrderDelivered}

type Order struct {
	ID          primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	PlantID     string             `json:"plantId" bson:"plantId"`
	Customer    Party              `json:"customer" bson:"customer"`
	SellerEmail string             `json:"sellerEmail" bson:"sellerEmail"`
	Quantity    int                `json:"quantity" bson:"quantity"`
	Price       float64            `json:"price" bson:"price"`
	Address     string             `json:"address,omitempty" bson:"address,omitempty"`
	Status      string             `json:"status" bson:"status"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
}

// EnrichedOrder is an order with its plant's display fields flattened in.
type EnrichedOrder struct {
	Order    `bson:",inline"`
	Name     string `json:"name" bson:"name"`
	Category string `json:"category,omitempty" bson:"category,omitempty"`
	Image    string `json:"image,omitempty" bson:"image,omitempty"`
}
