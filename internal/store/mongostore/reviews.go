package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shopkit/storefront/internal/models"
)

type ReviewStore struct {
	coll *mongo.Collection
}

func NewReviewStore(coll *mongo.Collection) *ReviewStore {
	return &ReviewStore{coll: coll}
}

func (s *ReviewStore) Create(ctx context.Context, r *models.Review) error {
	res, err := s.coll.InsertOne(ctx, r)
	if err != nil {
		return wrapErr("insert review", err)
	}
	r.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *ReviewStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	var r models.Review
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		return nil, wrapErr("find review", err)
	}
	return &r, nil
}

func (s *ReviewStore) List(ctx context.Context) ([]models.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, wrapErr("list reviews", err)
	}
	defer cur.Close(ctx)

	reviews := []models.Review{}
	if err := cur.All(ctx, &reviews); err != nil {
		return nil, wrapErr("decode reviews", err)
	}
	return reviews, nil
}

func (s *ReviewStore) Update(ctx context.Context, r *models.Review) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": r.ID}, r)
	if err != nil {
		return wrapErr("update review", err)
	}
	if res.MatchedCount == 0 {
		return wrapErr("update review", mongo.ErrNoDocuments)
	}
	return nil
}

func (s *ReviewStore) Delete(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	var r models.Review
	if err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		return nil, wrapErr("delete review", err)
	}
	return &r, nil
}
