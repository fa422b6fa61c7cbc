package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	Id             primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Email          string             `json:"email" bson:"email"`
	HashedPassword string             `json:"password_hash" bson:"password_hash"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
}

// Credentials is the sign-in payload. Password is only consulted when the
// server runs in password mode.
type Credentials struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"omitempty,max=72"`
}

type Registration struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}
