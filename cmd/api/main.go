package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/joao-fontenele/lessons-booking/internal/config"
	"github.com/joao-fontenele/lessons-booking/internal/lessons"
	"github.com/joao-fontenele/lessons-booking/internal/messaging"
	"github.com/joao-fontenele/lessons-booking/internal/orders"
	"github.com/joao-fontenele/lessons-booking/internal/site"
	"github.com/joao-fontenele/lessons-booking/internal/telemetry"
)

const serviceName = "lessons-booking"

type mongoPinger struct {
	client *mongo.Client
}

func (p mongoPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx, readpref.Primary())
}

type route struct {
	pattern string
	handler http.HandlerFunc
}

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load[config.API]()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, cfg.OTLPEndpoint, serviceName, cfg.ServiceVersion)
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(serviceName, cfg.ServiceVersion)
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	client, err := telemetry.OpenMongo(ctx, cfg.URI)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	db := client.Database(cfg.Database)

	var publisher orders.EventPublisher
	if len(cfg.Brokers) > 0 {
		producer := messaging.NewProducer(cfg.Brokers, cfg.OrdersTopic)
		defer func() { _ = producer.Close() }()
		publisher = producer
	}

	lessonHandler, err := lessons.NewHandler(lessons.NewLessonRepository(db), logger)
	if err != nil {
		logger.Error("failed to create lessons handler", "error", err)
		os.Exit(1)
	}

	orderHandler, err := orders.NewHandler(orders.NewOrderRepository(db), publisher, logger)
	if err != nil {
		logger.Error("failed to create orders handler", "error", err)
		os.Exit(1)
	}

	routes := []route{
		{"GET /lessons", lessonHandler.HandleList},
		{"GET /lessons/{id}", lessonHandler.HandleGet},
		{"PUT /lessons/{id}", lessonHandler.HandleUpdate},
		{"POST /lessons/{id}/reserve", lessonHandler.HandleReserve},
		{"GET /search", lessonHandler.HandleSearch},
		{"POST /orders", orderHandler.HandleCreate},
		{"GET /orders", orderHandler.HandleList},
		{"GET /orders/{id}", orderHandler.HandleGet},
	}

	info := site.Info{Name: serviceName, Version: cfg.ServiceVersion}
	for _, rt := range routes {
		info.Endpoints = append(info.Endpoints, rt.pattern)
	}
	info.Endpoints = append(info.Endpoints, "GET /images/{fileName}", "GET /healthz", "GET /metrics")

	siteHandler, err := site.NewHandler(info, cfg.ImagesDir, mongoPinger{client: client}, logger)
	if err != nil {
		logger.Error("failed to open images directory", "error", err, "dir", cfg.ImagesDir)
		os.Exit(1)
	}
	defer func() { _ = siteHandler.Close() }()

	routes = append(routes,
		route{"GET /{$}", siteHandler.HandleIndex},
		route{"GET /images/{fileName}", siteHandler.HandleImage},
		route{"GET /healthz", siteHandler.HandleHealth},
	)

	mux := http.NewServeMux()
	for _, rt := range routes {
		mux.HandleFunc(rt.pattern, telemetry.WithHTTPRoute(rt.handler))
	}
	mux.Handle("GET /metrics", metricsHandler)

	server := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: telemetry.WithRequestLogging(logger, otelhttp.NewHandler(mux, serviceName,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting lessons booking api", "port", cfg.Port, "database", cfg.Database)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
