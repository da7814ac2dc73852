package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Role string

const (
	RoleCustomer Role = "Customer"
	RoleSeller   Role = "Seller"
	RoleAdmin    Role = "Admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

const (
	StatusRequested = "Requested"
	StatusVerified  = "verified"
)

type User struct {
	ID        primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Email     string             `json:"email" bson:"email"`
	Name      string             `json:"name,omitempty" bson:"name,omitempty"`
	Image     string             `json:"image,omitempty" bson:"image,omitempty"`
	Role      Role               `json:"role" bson:"role"`
	Status    string             `json:"status,omitempty" bson:"status,omitempty"`
	Timestamp int64              `json:"timestamp" bson:"timestamp"`
}
