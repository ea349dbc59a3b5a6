package model

import "time"

// City is static reference data, seeded once when the collection is empty.
type City struct {
	Name      string    `bson:"name" json:"name"`
	Slug      string    `bson:"slug" json:"slug"`
	Province  string    `bson:"province,omitempty" json:"province,omitempty"`
	Country   string    `bson:"country" json:"country"`
	IsActive  bool      `bson:"isActive" json:"isActive"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

type Province struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CityRef is the normalized {id, name} shape returned by city and area
// lookups, whichever upstream schema they came from.
type CityRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
