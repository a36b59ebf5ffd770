package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"store-generator/internal/application"
	"store-generator/internal/application/webhook_handlers"
	"store-generator/internal/config"
	"store-generator/internal/infrastructure/api"
	"store-generator/internal/infrastructure/billing"
	"store-generator/internal/infrastructure/cache"
	"store-generator/internal/infrastructure/encryption"
	"store-generator/internal/infrastructure/events"
	"store-generator/internal/infrastructure/extraction"
	"store-generator/internal/infrastructure/imagegen"
	"store-generator/internal/infrastructure/llm"
	"store-generator/internal/infrastructure/metrics"
	"store-generator/internal/infrastructure/repository"
	shopifyinfra "store-generator/internal/infrastructure/shopify"
	"store-generator/internal/ports"
	"store-generator/internal/render"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to MongoDB
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer mongoClient.Disconnect(context.Background())

	pingCtx, cancelPing := context.WithTimeout(ctx, 10*time.Second)
	err = mongoClient.Ping(pingCtx, nil)
	cancelPing()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to ping MongoDB")
	}

	db := mongoClient.Database(cfg.Mongo.Database)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create MongoDB indexes")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	encryptionService, err := encryption.NewService(cfg.EncryptionKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}

	renderer, err := render.New()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to parse templates")
	}

	pipelineMetrics := metrics.NewPipelineMetrics(prometheus.DefaultRegisterer)

	// Repositories and caches
	configRepo := repository.NewMongoConfigurationRepository(db)
	storeRepo := repository.NewMongoDeployedStoreRepository(db)
	connectionRepo := repository.NewMongoConnectionRepository(db)
	recordRepo := repository.NewMongoExportRecordRepository(db)
	sessionRepo := repository.NewMongoSessionRepository(db)
	draftStore := cache.NewRedisDraftStore(redisClient, cfg.DraftTTL)
	statusCache := cache.NewRedisStatusCache(redisClient)

	// Providers
	httpClient := &http.Client{Timeout: 2 * time.Minute}
	shopifyClient := shopifyinfra.NewClientWithOptions(cfg.Shopify.APIKey, cfg.Shopify.APISecret, shopifyinfra.Options{
		APIVersion: cfg.Shopify.APIVersion,
		Retries:    cfg.Shopify.Retries,
	}, logger)
	tokenManager := shopifyinfra.NewTokenManager(encryptionService, logger)
	extractor, err := extraction.NewFirecrawlClient(cfg.Extraction.URL, cfg.Extraction.APIKey, httpClient, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize extraction client")
	}

	var textGenerator ports.TextGenerator
	if cfg.OpenAI.APIKey != "" {
		textGenerator = llm.NewOpenAIGenerator(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model, logger)
	} else {
		logger.Warn().Msg("OPENAI_API_KEY not set, reformulation will use fallback copy")
	}

	var imageGenerator ports.ImageGenerator
	if cfg.ImageGen.URL != "" {
		imageGenerator = imagegen.NewClient(cfg.ImageGen.URL, cfg.ImageGen.APIKey, httpClient, logger)
	} else {
		logger.Warn().Msg("IMAGE_API_URL not set, AI image variants are disabled")
	}

	var billingProvider ports.BillingProvider
	if cfg.Stripe.SecretKey != "" {
		billingProvider = billing.NewStripeProvider(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret, cfg.Stripe.PriceIDs, logger)
	} else {
		logger.Warn().Msg("STRIPE_SECRET_KEY not set, exports will be refused as subscription unknown")
	}

	var publisher ports.EventPublisher = events.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.ExportTopic, logger)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	// Application services
	prompts := application.MustLoadPrompts()
	fetcher := application.NewSourceFetcher(extractor, cfg.Extraction.Timeout, pipelineMetrics, logger)
	reformulator := application.NewReformulator(textGenerator, prompts, cfg.OpenAI.Timeout, pipelineMetrics, logger)

	draftService := application.NewDraftService(application.DraftServiceDeps{
		Fetcher:      fetcher,
		Reformulator: reformulator,
		Images:       imageGenerator,
		Drafts:       draftStore,
		Configs:      configRepo,
		Renderer:     renderer,
		Prompts:      prompts,
		ImageTimeout: cfg.ImageGen.Timeout,
		Metrics:      pipelineMetrics,
	}, logger)

	gate := application.NewSubscriptionGate(billingProvider, statusCache, cfg.SubscriptionCacheTTL, cfg.Stripe.Timeout, pipelineMetrics, logger)

	exporter, err := application.NewExportOrchestrator(application.ExportOrchestratorDeps{
		Shopify:     shopifyClient,
		Connections: connectionRepo,
		Stores:      storeRepo,
		Records:     recordRepo,
		Events:      publisher,
		Renderer:    renderer,
		Gate:        gate,
		Tokens:      tokenManager,
		StoreURL:    cfg.StoreURL,
		CallTimeout: cfg.Shopify.Timeout,
		Metrics:     pipelineMetrics,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize export orchestrator")
	}

	historyService := application.NewHistoryService(configRepo, recordRepo, draftService, logger)
	connectionService := application.NewConnectionService(
		shopifyClient,
		sessionRepo,
		connectionRepo,
		tokenManager,
		cfg.Shopify.Scopes,
		cfg.AppURL,
		cfg.Shopify.Timeout,
		logger,
	)
	deploymentService := application.NewDeploymentService(
		storeRepo,
		renderer,
		encryptionService,
		billing.NewMerchantCheckout(),
		cfg.StoreURL,
		cfg.Stripe.Timeout,
		pipelineMetrics,
		logger,
	)

	webhookDispatcher := webhook_handlers.NewDispatcher(logger,
		webhook_handlers.NewAppUninstalledHandler(logger, connectionRepo),
	)

	services := api.Services{
		Drafts:      draftService,
		Exports:     exporter,
		History:     historyService,
		Connections: connectionService,
		Webhooks:    webhookDispatcher,
		Gate:        gate,
		Deployments: deploymentService,
		Metrics:     promhttp.Handler(),
		SwaggerFile: "./docs/swagger.json",
		CORSOrigins: cfg.AllowedOrigins,
	}
	if billingProvider != nil {
		services.Billing = application.NewBillingService(billingProvider, gate, cfg.Storefront.FrontendURL, cfg.Stripe.Timeout, logger)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(services, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("Starting API server")
		logger.Info().Msg("Swagger documentation available at http://localhost:" + cfg.Port + "/swagger/index.html")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down API server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
