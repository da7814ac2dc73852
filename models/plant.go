package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Party is the denormalized name/email pair stored on plants and orders.
type Party struct {
	Name  string `json:"name,omitempty" bson:"name,omitempty"`
	Email string `json:"email" bson:"email"`
	Image string `json:"image,omitempty" bson:"image,omitempty"`
}

type Plant struct {
	ID          primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Category    string             `json:"category" bson:"category"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Image       string             `json:"image,omitempty" bson:"image,omitempty"`
	Price       float64            `json:"price" bson:"price"`
	Quantity    int                `json:"quantity" bson:"quantity"`
	Seller      Party              `json:"seller" bson:"seller"`
}
