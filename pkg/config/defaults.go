package config

import "time"

const (
	DefaultMongoURI         = "mongodb://localhost:27017"
	DefaultMongoDatabase    = "BizBranches"
	DefaultMongoConnTimeout = 10 * time.Second
	DefaultProfileMongoDB   = "profiles"

	DefaultPort     = "3001"
	DefaultLogLevel = "info"

	DefaultSiteBaseURL          = "https://bizbranches.pk"
	DefaultKafkaModerationTopic = "business.moderated"

	DefaultCategoryCacheTTL  = time.Hour
	DefaultSuggestTimeBudget = 300 * time.Millisecond

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)
