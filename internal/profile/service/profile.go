package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	apperrors "bizbranches/pkg/errors"
	"bizbranches/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// candidateSources are the (collection, field) pairs probed in order; the
// separate profile deployment has stored usernames under both schemas over
// time.
var candidateSources = []struct {
	collection string
	field      string
}{
	{"profiles", "username"},
	{"profiles", "handle"},
	{"users", "username"},
	{"users", "handle"},
}

// Profile is the normalized public shape regardless of which source
// collection the document came from.
type Profile struct {
	Username  string `json:"username"`
	Name      string `json:"name,omitempty"`
	Title     string `json:"title,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// ProfileService reads the external profile store. A nil database means the
// store is not configured and every lookup reports unavailable.
type ProfileService struct {
	db  *mongo.Database
	log *logger.Logger
}

func NewProfileService(db *mongo.Database, log *logger.Logger) *ProfileService {
	return &ProfileService{db: db, log: log}
}

func (s *ProfileService) GetByUsername(ctx context.Context, username string) (*Profile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperrors.InvalidInput("username is required")
	}
	if s.db == nil {
		return nil, apperrors.Unavailable("Profile store is not configured")
	}

	match := primitive.Regex{Pattern: "^" + regexp.QuoteMeta(username) + "$", Options: "i"}
	for _, source := range candidateSources {
		var doc bson.M
		err := s.db.Collection(source.collection).
			FindOne(ctx, bson.M{source.field: match}).
			Decode(&doc)
		if err == nil {
			return normalizeProfile(username, doc), nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			s.log.Error("Profile lookup failed",
				"collection", source.collection,
				"field", source.field,
				"error", err,
			)
			return nil, apperrors.Internal("Failed to fetch profile", err)
		}
	}
	return nil, apperrors.NotFound("Profile")
}

func normalizeProfile(username string, doc bson.M) *Profile {
	return &Profile{
		Username:  username,
		Name:      firstString(doc, "name", "fullName", "full_name", "displayName"),
		Title:     firstString(doc, "title", "headline", "designation"),
		AvatarURL: firstString(doc, "avatarUrl", "avatar_url", "avatar", "photoUrl", "imageUrl"),
	}
}

func firstString(doc bson.M, keys ...string) string {
	for _, key := range keys {
		if v, ok := doc[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
