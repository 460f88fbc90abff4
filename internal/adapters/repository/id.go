package repository

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/okian/items/internal/domain/fault"
)

// parseID converts the hex form of an ObjectID.
func parseID(op, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fault.New(op, fault.KindValidation, fmt.Errorf("%w %q: %w", ErrInvalidID, id, err))
	}
	return oid, nil
}

func newID(at time.Time) primitive.ObjectID {
	return primitive.NewObjectIDFromTimestamp(at)
}
