package template

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Template is a reusable memo layout. Layout is a free-form document
// interpreted by the client.
type Template struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OwnerID     primitive.ObjectID `json:"owner_id" bson:"owner_id"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	IsPublic    bool               `json:"is_public" bson:"is_public"`
	Layout      bson.M             `json:"layout,omitempty" bson:"layout,omitempty"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}
