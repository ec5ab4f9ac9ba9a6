package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/DietLens/scan-service/config"
	"github.com/DietLens/scan-service/internal/core/language"
	"github.com/DietLens/scan-service/internal/core/products"
	"github.com/DietLens/scan-service/internal/core/restaurants"
	"github.com/DietLens/scan-service/internal/core/scans"
	"github.com/DietLens/scan-service/internal/core/translate"
	"github.com/DietLens/scan-service/internal/core/users"
	"github.com/DietLens/scan-service/pkg/telemetry"
	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.30.0"
	"google.golang.org/grpc"
)

type Server struct {
	cfg            *config.Config
	app            *fiber.App
	db             *telemetry.InstrumentedPool
	rdb            *redis.Client
	traceProvider  *sdktrace.TracerProvider
	metricProvider *metric.MeterProvider
	loggerProvider interface{ Shutdown(context.Context) error } // log.LoggerProvider interface

	scanService       *scans.Service
	userService       *users.Service
	productClient     *products.Client
	browser           *products.Browser
	restaurantsClient *restaurants.Client

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(ctx context.Context, cfg *config.Config, dbConn *pgxpool.Pool) *Server {
	traceExporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(cfg.JaegerEndpoint)))
	if err != nil {
		slog.Error("failed to initialize jaeger exporter", slog.String("error", err.Error()))
		return nil
	}

	metricExporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(cfg.OtlpEndpoint),
		otlpmetricgrpc.WithInsecure(),
		otlpmetricgrpc.WithDialOption(grpc.WithUserAgent("scan-service")),
	)
	if err != nil {
		slog.Error("failed to initialize otlp exporter", slog.String("error", err.Error()))
		return nil
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(
			resource.NewWithAttributes(
				semconv.SchemaURL,
				semconv.ServiceNameKey.String("scan-service"),
			)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	provider := metric.NewMeterProvider(metric.WithResource(resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String("scan-service"),
	)), metric.WithReader(metric.NewPeriodicReader(metricExporter, metric.WithInterval(15*time.Second))))

	otel.SetMeterProvider(provider)

	if err := telemetry.InitTelemetry(provider); err != nil {
		slog.Error("failed to initialize telemetry", slog.String("error", err.Error()))
		return nil
	}

	if err := runtime.Start(runtime.WithMeterProvider(provider)); err != nil {
		slog.Error("failed to start runtime instrumentation", slog.String("error", err.Error()))
	}

	instrumentedConn, err := telemetry.NewInstrumentedPool(provider, dbConn)
	if err != nil {
		slog.Error("failed to create instrumented pool", slog.String("error", err.Error()))
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress(),
		Username: cfg.RedisUser,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDb,
	})

	logger := slog.Default()

	detector := language.NewDetector()
	translateClient := translate.NewHTTPClient(cfg.TranslateServiceURL, logger)
	productTranslator := products.NewTranslator(detector, translateClient, cfg.DefaultLocale, logger)

	productClient := products.NewClient(cfg.FoodAPIBaseURL, cfg.FoodAPIPageSize, logger)
	categoryCache := products.NewCategoryCache(rdb, logger)
	browser := products.NewBrowser(productClient, categoryCache, logger)

	userService := users.NewService(instrumentedConn, logger)
	scanService := scans.NewService(instrumentedConn, productClient, userService, productTranslator, logger)
	restaurantsClient := restaurants.NewClient(cfg.PlacesBaseURL, cfg.PlacesAPIKey, cfg.PlacesSearchRadius, logger)

	app := fiber.New(cfg.Fiber())

	serverCtx, cancel := context.WithCancel(ctx)

	return &Server{
		cfg:               cfg,
		app:               app,
		db:                instrumentedConn,
		rdb:               rdb,
		traceProvider:     tp,
		metricProvider:    provider,
		scanService:       scanService,
		userService:       userService,
		productClient:     productClient,
		browser:           browser,
		restaurantsClient: restaurantsClient,
		ctx:               serverCtx,
		cancel:            cancel,
	}
}

// SetLoggerProvider attaches the OTLP log provider so Shutdown can flush it.
func (s *Server) SetLoggerProvider(provider interface{ Shutdown(context.Context) error }) {
	s.loggerProvider = provider
}

func (s *Server) Start() {
	initHttpMetrics(s.metricProvider)
	initGlobalMiddlewares(s.app, s.cfg)
	registerHttpRoutes(s.app, s)

	slog.Info("Starting HTTP server", slog.String("address", s.cfg.ServerAddress))

	// Start HTTP server
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.app.Listen(s.cfg.ServerAddress); err != nil {
			slog.Error("HTTP server error", slog.String("error", err.Error()))
		}
	}()
}

func (s *Server) Shutdown() {
	slog.Info("Shutting down server")

	// Cancel context to stop all goroutines
	s.cancel()

	// Shutdown HTTP server
	if err := s.app.Shutdown(); err != nil {
		slog.Error("Error shutting down HTTP server", slog.String("error", err.Error()))
	}

	// Wait for all goroutines to finish
	s.wg.Wait()

	// Shutdown telemetry providers
	if err := s.traceProvider.Shutdown(context.Background()); err != nil {
		slog.Error("Error shutting down trace provider", slog.String("error", err.Error()))
	}

	if err := s.metricProvider.Shutdown(context.Background()); err != nil {
		slog.Error("Error shutting down metric provider", slog.String("error", err.Error()))
	}

	if s.loggerProvider != nil {
		if err := s.loggerProvider.Shutdown(context.Background()); err != nil {
			slog.Error("Error shutting down log provider", slog.String("error", err.Error()))
		}
	}

	if err := s.rdb.Close(); err != nil {
		slog.Error("Error closing redis client", slog.String("error", err.Error()))
	}

	s.db.Close()

	slog.Info("Server shut down successfully")
}
