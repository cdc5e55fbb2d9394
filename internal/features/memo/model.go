package memo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Memo struct {
	ID         primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	OwnerID    primitive.ObjectID  `json:"owner_id" bson:"owner_id"`
	Title      string              `json:"title" bson:"title"`
	Content    string              `json:"content" bson:"content"`
	TemplateID *primitive.ObjectID `json:"template_id,omitempty" bson:"template_id,omitempty"`
	Tags       []string            `json:"tags,omitempty" bson:"tags,omitempty"`
	Pinned     bool                `json:"pinned" bson:"pinned"`
	CreatedAt  time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at" bson:"updated_at"`
}
