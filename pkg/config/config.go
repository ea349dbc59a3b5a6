package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"bizbranches/pkg/logger"
)

type Config struct {
	MongoURI         string
	MongoDatabase    string
	MongoConnTimeout time.Duration
	ProfileMongoURI  string
	ProfileMongoDB   string

	Port string

	AdminSecret    string
	AllowedOrigins []string

	CloudinaryCloudName string
	SiteBaseURL         string
	SitemapPingURL      string

	CourierBaseURL  string
	CourierUsername string
	CourierPassword string

	KafkaBrokers         []string
	KafkaModerationTopic string

	RedisAddr        string
	CategoryCacheTTL time.Duration

	SuggestTimeBudget time.Duration

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	Log *logger.Logger
}

func Load(serviceName string) *Config {
	cfg := &Config{
		MongoURI:         getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabase:    getEnvStr(EnvMongoDatabase, DefaultMongoDatabase),
		MongoConnTimeout: getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),
		ProfileMongoURI:  getEnvStr(EnvProfileMongoURI, ""),
		ProfileMongoDB:   getEnvStr(EnvProfileMongoDB, DefaultProfileMongoDB),

		Port: getEnvStr(EnvPort, DefaultPort),

		AdminSecret:    getEnvStr(EnvAdminSecret, ""),
		AllowedOrigins: getEnvList(EnvAllowedOrigins),

		CloudinaryCloudName: getEnvStr(EnvCloudinaryCloudName, ""),
		SiteBaseURL:         getEnvStr(EnvSiteBaseURL, DefaultSiteBaseURL),
		SitemapPingURL:      getEnvStr(EnvSitemapPingURL, ""),

		CourierBaseURL:  getEnvStr(EnvCourierBaseURL, ""),
		CourierUsername: getEnvStr(EnvCourierUsername, ""),
		CourierPassword: getEnvStr(EnvCourierPassword, ""),

		KafkaBrokers:         getEnvList(EnvKafkaBrokers),
		KafkaModerationTopic: getEnvStr(EnvKafkaModerationTopic, DefaultKafkaModerationTopic),

		RedisAddr:        getEnvStr(EnvRedisAddr, ""),
		CategoryCacheTTL: getEnvDuration(EnvCategoryCacheTTL, DefaultCategoryCacheTTL),

		SuggestTimeBudget: getEnvDuration(EnvSuggestTimeBudget, DefaultSuggestTimeBudget),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		Log: logger.New(logger.Config{
			Level:   getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:  logger.JSON,
			Service: serviceName,
		}),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		problems = append(problems, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		problems = append(problems, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}
	if cfg.MongoDatabase == "" {
		problems = append(problems, "MongoDatabase cannot be empty")
	}
	if cfg.MongoConnTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}
	if cfg.SuggestTimeBudget <= 0 {
		problems = append(problems, fmt.Sprintf("SuggestTimeBudget must be positive, got: %s", cfg.SuggestTimeBudget))
	}
	if cfg.ReadTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 || cfg.ShutdownTimeout <= 0 {
		problems = append(problems, "server timeouts must all be positive")
	}

	if len(problems) > 0 {
		msg := "Configuration validation failed:\n"
		for i, p := range problems {
			msg += fmt.Sprintf("  %d. %s\n", i+1, p)
		}
		return fmt.Errorf("%s", msg)
	}
	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabase,
		"profile_store_configured", cfg.ProfileMongoURI != "",
		"port", cfg.Port,
		"admin_secret_set", cfg.AdminSecret != "",
		"allowed_origins", cfg.AllowedOrigins,
		"cloudinary_cloud_set", cfg.CloudinaryCloudName != "",
		"site_base_url", cfg.SiteBaseURL,
		"courier_configured", cfg.CourierBaseURL != "",
		"kafka_brokers", cfg.KafkaBrokers,
		"redis_addr", cfg.RedisAddr,
		"category_cache_ttl", cfg.CategoryCacheTTL,
		"suggest_time_budget", cfg.SuggestTimeBudget,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
