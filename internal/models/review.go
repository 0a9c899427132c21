package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID    primitive.ObjectID `bson:"productId" json:"productId"`
	ReviewerName string             `bson:"reviewerName" json:"reviewerName"`
	Rating       float64            `bson:"rating" json:"rating"`
	Comment      string             `bson:"comment" json:"comment"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	// Product carries the referenced product's name when expanded for a
	// response; never persisted.
	Product *ReviewProductRef `bson:"-" json:"product,omitempty"`
}

type ReviewProductRef struct {
	ID   primitive.ObjectID `json:"id"`
	Name string             `json:"name"`
}
