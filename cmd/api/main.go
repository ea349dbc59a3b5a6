package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"bizbranches/internal/bootstrap"
	bizhandler "bizbranches/internal/businesses/handler"
	bizrepo "bizbranches/internal/businesses/repository"
	bizservice "bizbranches/internal/businesses/service"
	bizvalidator "bizbranches/internal/businesses/validator"
	cathandler "bizbranches/internal/categories/handler"
	catrepo "bizbranches/internal/categories/repository"
	catservice "bizbranches/internal/categories/service"
	cityhandler "bizbranches/internal/cities/handler"
	cityservice "bizbranches/internal/cities/service"
	"bizbranches/internal/courier"
	healthhandler "bizbranches/internal/health/handler"
	"bizbranches/internal/media"
	"bizbranches/internal/notify"
	profilehandler "bizbranches/internal/profile/handler"
	profileservice "bizbranches/internal/profile/service"
	reviewhandler "bizbranches/internal/reviews/handler"
	reviewrepo "bizbranches/internal/reviews/repository"
	reviewservice "bizbranches/internal/reviews/service"
	searchhandler "bizbranches/internal/search/handler"
	searchservice "bizbranches/internal/search/service"
	sitemaphandler "bizbranches/internal/sitemap/handler"
	"bizbranches/pkg/client"
	"bizbranches/pkg/config"
	"bizbranches/pkg/kafka"
	"bizbranches/pkg/logger"
	"bizbranches/pkg/middleware"
)

const ServiceName = "api"

func main() {
	// Missing .env is fine in deployed environments.
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)
	log := cfg.Log
	log.Info("Starting BizBranches API")

	mongoClient := client.NewMongo(log, cfg.MongoURI, cfg.MongoConnTimeout)
	defer mongoClient.Disconnect(context.Background())
	db := mongoClient.Database(cfg.MongoDatabase)

	profileDB := connectProfileStore(cfg, log)
	redisClient := client.NewRedis(log, cfg.RedisAddr)
	producer := initProducer(cfg, log)
	if producer != nil {
		defer producer.Close()
	}

	runBootstrap(db, cfg, log)

	router := buildRouter(cfg, db, profileDB, redisClient, producer, log)

	var handler http.Handler = router
	handler = middleware.CORS(cfg.AllowedOrigins)(handler)
	handler = middleware.RequestLogging(log)(handler)
	handler = middleware.Recovery(log)(handler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	run(cfg, server, log)
}

func connectProfileStore(cfg *config.Config, log *logger.Logger) *mongo.Database {
	profileClient := client.NewMongoOptional(log, cfg.ProfileMongoURI, cfg.MongoConnTimeout)
	if profileClient == nil {
		log.Info("Profile store not configured")
		return nil
	}
	return profileClient.Database(cfg.ProfileMongoDB)
}

func initProducer(cfg *config.Config, log *logger.Logger) *kafka.Producer {
	if len(cfg.KafkaBrokers) == 0 {
		log.Info("Kafka not configured, moderation events disabled")
		return nil
	}
	producer, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaModerationTopic)
	if err != nil {
		log.Warn("Kafka producer init failed, moderation events disabled", "error", err)
		return nil
	}
	log.Info("Kafka producer initialized", "topic", cfg.KafkaModerationTopic)
	return producer
}

func runBootstrap(db *mongo.Database, cfg *config.Config, log *logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
	defer cancel()

	if err := bootstrap.Run(ctx, db, log); err != nil {
		log.Warn("Bootstrap incomplete, continuing", "error", err)
		return
	}
	log.Info("Bootstrap complete")
}

func buildRouter(
	cfg *config.Config,
	db *mongo.Database,
	profileDB *mongo.Database,
	redisClient *redis.Client,
	producer *kafka.Producer,
	log *logger.Logger,
) *httprouter.Router {
	resolver := media.NewResolver(cfg.CloudinaryCloudName)
	notifier := notify.New(log, cfg.SitemapPingURL, producer)

	categoryRepo := catrepo.NewMongoCategoryRepository(db)
	categoryService := catservice.NewCategoryService(categoryRepo, redisClient, cfg.CategoryCacheTTL, log)

	businessRepo := bizrepo.NewMongoBusinessRepository(db)
	businessValidator := bizvalidator.NewBusinessValidator()
	businessService := bizservice.NewBusinessService(
		businessRepo,
		businessValidator,
		categoryService,
		resolver,
		nil, // logo uploads require an image-host integration
		notifier,
		log,
	)

	reviewRepo := reviewrepo.NewMongoReviewRepository(db)
	reviewService := reviewservice.NewReviewService(reviewRepo, businessRepo, log)

	suggester := searchservice.NewSuggester(businessRepo, categoryService, resolver, cfg.SuggestTimeBudget, log)

	var courierClient *courier.Client
	if cfg.CourierBaseURL != "" {
		courierClient = courier.NewClient(cfg.CourierBaseURL, cfg.CourierUsername, cfg.CourierPassword, log)
	}
	cityService := cityservice.NewCityService(courierClient, log)

	profileService := profileservice.NewProfileService(profileDB, log)

	router := httprouter.New()
	bizhandler.NewBusinessHandler(businessService, cfg.AdminSecret, log).RegisterRoutes(router)
	reviewhandler.NewReviewHandler(reviewService, log).RegisterRoutes(router)
	cathandler.NewCategoryHandler(categoryService, log).RegisterRoutes(router)
	cityhandler.NewCityHandler(cityService, log).RegisterRoutes(router)
	searchhandler.NewSearchHandler(suggester, log).RegisterRoutes(router)
	profilehandler.NewProfileHandler(profileService, log).RegisterRoutes(router)
	sitemaphandler.NewSitemapHandler(businessService, cfg.SiteBaseURL, log).RegisterRoutes(router)
	healthhandler.NewHealthHandler(db, log).RegisterRoutes(router)

	return router
}

func run(cfg *config.Config, server *http.Server, log *logger.Logger) {
	serverErrors := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", "address", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		log.Fatal("HTTP server failed", "error", err)

	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)
		gracefulShutdown(cfg, server, log)
	}
}

func gracefulShutdown(cfg *config.Config, server *http.Server, log *logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", "error", err)
		if err := server.Close(); err != nil {
			log.Fatal("Could not stop server gracefully", "error", err)
		}
	}

	log.Info("Server stopped gracefully")
}
