package model

import "time"

type Subcategory struct {
	Name string `bson:"name" json:"name"`
	Slug string `bson:"slug" json:"slug"`
}

// Category's count is a best-effort denormalized counter incremented on
// business creation; it is not guaranteed exact.
type Category struct {
	Name          string        `bson:"name" json:"name"`
	Slug          string        `bson:"slug" json:"slug"`
	Icon          string        `bson:"icon,omitempty" json:"icon,omitempty"`
	Description   string        `bson:"description,omitempty" json:"description,omitempty"`
	ImageURL      string        `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	ImagePublicID string        `bson:"imagePublicId,omitempty" json:"-"`
	Count         int64         `bson:"count" json:"count"`
	IsActive      bool          `bson:"isActive" json:"isActive"`
	Subcategories []Subcategory `bson:"subcategories" json:"subcategories"`
	CreatedAt     time.Time     `bson:"createdAt" json:"createdAt"`
}
