package memo

import (
	"context"
	"time"

	"go-memo/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MemoRepository interface {
	Create(ctx context.Context, memo *Memo) error
	Get(ctx context.Context, id string) (*Memo, error)
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID, page, limit int64) ([]*Memo, error)
	Update(ctx context.Context, memo *Memo) error
	Delete(ctx context.Context, id string) error
}

type MemoRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewMemoRepository(mongodb *database.MongodbDB) MemoRepository {
	return &MemoRepositoryImpl{
		Collection: mongodb.DB.Collection("memos"),
	}
}

func (r *MemoRepositoryImpl) Create(ctx context.Context, memo *Memo) error {
	if memo.ID.IsZero() {
		memo.ID = primitive.NewObjectID()
	}
	_, err := r.Collection.InsertOne(ctx, memo)
	return err
}

func (r *MemoRepositoryImpl) Get(ctx context.Context, id string) (*Memo, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var memo Memo
	if err := r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&memo); err != nil {
		return nil, err
	}
	return &memo, nil
}

func (r *MemoRepositoryImpl) ListByOwner(ctx context.Context, ownerID primitive.ObjectID, page, limit int64) ([]*Memo, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "pinned", Value: -1}, {Key: "created_at", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := r.Collection.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var memos []*Memo
	if err := cursor.All(ctx, &memos); err != nil {
		return nil, err
	}
	return memos, nil
}

func (r *MemoRepositoryImpl) Update(ctx context.Context, memo *Memo) error {
	memo.UpdatedAt = time.Now()
	_, err := r.Collection.ReplaceOne(ctx, bson.M{"_id": memo.ID}, memo)
	return err
}

func (r *MemoRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
