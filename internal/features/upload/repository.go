package upload

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-memo/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DomainStats summarizes active assets for one domain
type DomainStats struct {
	Domain    Domain  `json:"domain" bson:"_id"`
	Count     int64   `json:"count" bson:"count"`
	TotalSize int64   `json:"total_size" bson:"total_size"`
	AvgSize   float64 `json:"avg_size" bson:"avg_size"`
}

// StorageStats is the aggregate view over all active assets
type StorageStats struct {
	TotalCount int64         `json:"total_count"`
	TotalSize  int64         `json:"total_size"`
	Domains    []DomainStats `json:"domains"`
}

// UploaderQuery pages through one uploader's assets. Page is 1-based.
type UploaderQuery struct {
	Page   int64
	Limit  int64
	Domain Domain // empty means all domains
}

type AssetRepository interface {
	Insert(ctx context.Context, asset *FileAsset) error
	Get(ctx context.Context, id string) (*FileAsset, error)
	Update(ctx context.Context, asset *FileAsset) error
	Delete(ctx context.Context, id string) error
	FindByDomainRef(ctx context.Context, domain Domain, refID RefID) ([]*FileAsset, error)
	FindByUploader(ctx context.Context, uploader RefID, q UploaderQuery) ([]*FileAsset, error)
	IncrementStat(ctx context.Context, id primitive.ObjectID, field string, at time.Time) error
	AggregateStats(ctx context.Context) (*StorageStats, error)
	EnsureIndexes(ctx context.Context) error
}

type AssetRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewAssetRepository(mongodb *database.MongodbDB) AssetRepository {
	return &AssetRepositoryImpl{
		Collection: mongodb.DB.Collection("file_assets"),
	}
}

func (r *AssetRepositoryImpl) Insert(ctx context.Context, asset *FileAsset) error {
	if asset.ID.IsZero() {
		asset.ID = primitive.NewObjectID()
	}
	_, err := r.Collection.InsertOne(ctx, asset)
	return err
}

func (r *AssetRepositoryImpl) Get(ctx context.Context, id string) (*FileAsset, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	var asset FileAsset
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&asset)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *AssetRepositoryImpl) Update(ctx context.Context, asset *FileAsset) error {
	asset.UpdatedAt = time.Now()
	_, err := r.Collection.ReplaceOne(ctx, bson.M{"_id": asset.ID}, asset)
	return err
}

func (r *AssetRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	_, err = r.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}

func (r *AssetRepositoryImpl) FindByDomainRef(ctx context.Context, domain Domain, refID RefID) ([]*FileAsset, error) {
	filter := bson.M{
		"domain": domain,
		"ref_id": refID,
		"status": StatusActive,
	}
	cursor, err := r.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var assets []*FileAsset
	if err := cursor.All(ctx, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

func (r *AssetRepositoryImpl) FindByUploader(ctx context.Context, uploader RefID, q UploaderQuery) ([]*FileAsset, error) {
	filter := bson.M{
		"uploaded_by": uploader,
		"status":      StatusActive,
	}
	if q.Domain != "" {
		filter["domain"] = q.Domain
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = 20
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := r.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var assets []*FileAsset
	if err := cursor.All(ctx, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

func (r *AssetRepositoryImpl) IncrementStat(ctx context.Context, id primitive.ObjectID, field string, at time.Time) error {
	update := bson.M{
		"$inc": bson.M{field: 1},
		"$set": bson.M{"stats.last_accessed_at": at},
	}
	_, err := r.Collection.UpdateByID(ctx, id, update)
	return err
}

func (r *AssetRepositoryImpl) AggregateStats(ctx context.Context) (*StorageStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": StatusActive}}},
		{{Key: "$group", Value: bson.M{
			"_id":        "$domain",
			"count":      bson.M{"$sum": 1},
			"total_size": bson.M{"$sum": "$metadata.original.size"},
			"avg_size":   bson.M{"$avg": "$metadata.original.size"},
		}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	}

	cursor, err := r.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var domains []DomainStats
	if err := cursor.All(ctx, &domains); err != nil {
		return nil, err
	}

	stats := &StorageStats{Domains: domains}
	for _, d := range domains {
		stats.TotalCount += d.Count
		stats.TotalSize += d.TotalSize
	}
	return stats, nil
}

// EnsureIndexes creates the query indexes plus the TTL index that lets
// the store auto-purge expired assets.
func (r *AssetRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "domain", Value: 1}, {Key: "ref_id", Value: 1}, {Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "uploaded_by", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	})
	return err
}
