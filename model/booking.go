package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Booking struct {
	Id           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Email        string             `json:"email" bson:"email" validate:"required,email,max=254"`
	Service      string             `json:"service" bson:"service" validate:"required,notblank,max=100"`
	ServiceId    string             `json:"service_id,omitempty" bson:"service_id,omitempty" validate:"omitempty,mongodb"`
	CustomerName string             `json:"customer_name,omitempty" bson:"customer_name,omitempty" validate:"omitempty,max=100"`
	Date         string             `json:"date,omitempty" bson:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Address      string             `json:"address,omitempty" bson:"address,omitempty" validate:"omitempty,max=200"`
	Instructions string             `json:"instructions,omitempty" bson:"instructions,omitempty" validate:"omitempty,max=1000"`
	Price        float64            `json:"price,omitempty" bson:"price,omitempty" validate:"gte=0"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
}

// InsertResult mirrors the acknowledgment the store returns for a single insert.
type InsertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedId   string `json:"insertedId"`
}

// DeleteResult mirrors the acknowledgment the store returns for a single delete.
// DeletedCount is 0 when nothing matched.
type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}
