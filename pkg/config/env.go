package config

const (
	EnvMongoURI         = "MONGODB_URI"
	EnvMongoDatabase    = "MONGODB_DB"
	EnvMongoConnTimeout = "MONGODB_CONN_TIMEOUT"
	EnvProfileMongoURI  = "MONGODB_PROFILE_URI"
	EnvProfileMongoDB   = "MONGODB_PROFILE_DB"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvAdminSecret    = "ADMIN_SECRET"
	EnvAllowedOrigins = "ALLOWED_ORIGINS"

	EnvCloudinaryCloudName = "CLOUDINARY_CLOUD_NAME"
	EnvSiteBaseURL         = "SITE_BASE_URL"
	EnvSitemapPingURL      = "SITEMAP_PING_URL"

	EnvCourierBaseURL  = "COURIER_API_BASE_URL"
	EnvCourierUsername = "COURIER_API_USERNAME"
	EnvCourierPassword = "COURIER_API_PASSWORD"

	EnvKafkaBrokers         = "KAFKA_BROKERS"
	EnvKafkaModerationTopic = "KAFKA_MODERATION_TOPIC"

	EnvRedisAddr        = "REDIS_ADDR"
	EnvCategoryCacheTTL = "CATEGORY_CACHE_TTL"

	EnvSuggestTimeBudget = "SUGGEST_TIME_BUDGET"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
