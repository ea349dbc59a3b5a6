package model

import "time"

// Review references an existing Business at creation time and is immutable
// once created. BusinessID stores the business's hex ObjectID; callers may
// submit either an id or a slug, resolved at write time.
type Review struct {
	BusinessID string    `bson:"businessId" json:"businessId" validate:"required"`
	Name       string    `bson:"name" json:"name" validate:"required,max=100"`
	Rating     int       `bson:"rating" json:"rating" validate:"required,min=1,max=5"`
	Comment    string    `bson:"comment" json:"comment" validate:"required,min=3,max=1000"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}
