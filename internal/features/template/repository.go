package template

import (
	"context"
	"time"

	"go-memo/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TemplateRepository interface {
	Create(ctx context.Context, tpl *Template) error
	Get(ctx context.Context, id string) (*Template, error)
	ListVisible(ctx context.Context, callerID primitive.ObjectID) ([]*Template, error)
	Update(ctx context.Context, tpl *Template) error
	Delete(ctx context.Context, id string) error
}

type TemplateRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewTemplateRepository(mongodb *database.MongodbDB) TemplateRepository {
	return &TemplateRepositoryImpl{
		Collection: mongodb.DB.Collection("templates"),
	}
}

func (r *TemplateRepositoryImpl) Create(ctx context.Context, tpl *Template) error {
	if tpl.ID.IsZero() {
		tpl.ID = primitive.NewObjectID()
	}
	_, err := r.Collection.InsertOne(ctx, tpl)
	return err
}

func (r *TemplateRepositoryImpl) Get(ctx context.Context, id string) (*Template, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var tpl Template
	if err := r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&tpl); err != nil {
		return nil, err
	}
	return &tpl, nil
}

// ListVisible returns the caller's own templates plus all public ones
func (r *TemplateRepositoryImpl) ListVisible(ctx context.Context, callerID primitive.ObjectID) ([]*Template, error) {
	filter := bson.M{"$or": []bson.M{
		{"owner_id": callerID},
		{"is_public": true},
	}}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var templates []*Template
	if err := cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *TemplateRepositoryImpl) Update(ctx context.Context, tpl *Template) error {
	tpl.UpdatedAt = time.Now()
	_, err := r.Collection.ReplaceOne(ctx, bson.M{"_id": tpl.ID}, tpl)
	return err
}

func (r *TemplateRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
