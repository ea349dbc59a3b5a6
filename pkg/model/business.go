package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"

	// SourceAdmin marks drafts created through admin tooling; the public
	// pending listing excludes them.
	SourceAdmin = "admin"
)

func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// Business is one directory listing. RatingAvg/RatingCount are a cache
// derivable by replaying the reviews collection; slug is unique and
// immutable once assigned.
type Business struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string             `bson:"name" json:"name" validate:"required,max=100"`
	Slug        string             `bson:"slug" json:"slug"`
	Category    string             `bson:"category" json:"category" validate:"required"`
	Subcategory string             `bson:"subCategory,omitempty" json:"subCategory,omitempty"`
	Province    string             `bson:"province" json:"province" validate:"required"`
	City        string             `bson:"city" json:"city" validate:"required"`
	Area        string             `bson:"area,omitempty" json:"area,omitempty"`
	PostalCode  string             `bson:"postalCode,omitempty" json:"postalCode,omitempty" validate:"omitempty,min=3,max=12"`
	Address     string             `bson:"address" json:"address" validate:"required,max=500"`
	Phone       string             `bson:"phone" json:"phone" validate:"required,max=20"`

	ContactPerson string `bson:"contactPerson,omitempty" json:"contactPerson,omitempty"`
	WhatsApp      string `bson:"whatsapp,omitempty" json:"whatsapp,omitempty"`
	Email         string `bson:"email" json:"email" validate:"required,email"`
	Description   string `bson:"description" json:"description" validate:"required,min=10,max=2000"`

	WebsiteURL  string `bson:"websiteUrl,omitempty" json:"websiteUrl,omitempty" validate:"omitempty,url"`
	FacebookURL string `bson:"facebookUrl,omitempty" json:"facebookUrl,omitempty" validate:"omitempty,url"`
	GmbURL      string `bson:"gmbUrl,omitempty" json:"gmbUrl,omitempty" validate:"omitempty,url"`
	YoutubeURL  string `bson:"youtubeUrl,omitempty" json:"youtubeUrl,omitempty" validate:"omitempty,url"`

	ProfileUsername string `bson:"profileUsername,omitempty" json:"profileUsername,omitempty"`

	// Bank-specific optional fields, untyped strings.
	SwiftCode       string `bson:"swiftCode,omitempty" json:"swiftCode,omitempty"`
	BranchCode      string `bson:"branchCode,omitempty" json:"branchCode,omitempty"`
	CityDialingCode string `bson:"cityDialingCode,omitempty" json:"cityDialingCode,omitempty"`
	IBAN            string `bson:"iban,omitempty" json:"iban,omitempty"`

	LogoURL      string `bson:"logoUrl,omitempty" json:"logoUrl,omitempty" validate:"omitempty,url"`
	LogoPublicID string `bson:"logoPublicId,omitempty" json:"-"`

	Status string `bson:"status" json:"status"`
	Source string `bson:"source,omitempty" json:"-"`

	RatingAvg   float64 `bson:"ratingAvg" json:"ratingAvg"`
	RatingCount int64   `bson:"ratingCount" json:"ratingCount"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
