package utils

import (
	"fmt"

	"plantnet/apperr"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func GetUUID() string {
	return uuid.New().String()
}

// ParseObjectID converts a hex id; an unparsable id cannot match any document.
func ParseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: id %q", apperr.ErrNotFound, id)
	}
	return oid, nil
}
