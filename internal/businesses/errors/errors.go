package errors

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

var ErrNotFound = errors.New("business not found")

// IsDuplicateKey reports whether err is a unique-index violation. The slug
// index is the authoritative uniqueness guarantee; the probe loop treats
// this as "lost the race, probe again".
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
