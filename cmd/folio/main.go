package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/folio-sh/folio/internal/config"
	"github.com/folio-sh/folio/internal/domain"
	"github.com/folio-sh/folio/internal/infrastructure/providers"
	"github.com/folio-sh/folio/internal/infrastructure/repository"
	"github.com/folio-sh/folio/internal/present/rest"
	"github.com/folio-sh/folio/internal/present/rest/middleware"
	"github.com/folio-sh/folio/internal/service"
	"github.com/folio-sh/folio/internal/usecase"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	loc, err := conf.Location()
	if err != nil {
		slog.Error("invalid timezone", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := providers.NewDatabase(conf.Server)
	if err != nil {
		slog.Error("failed to connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := providers.MigrateDatabase(db); err != nil {
		slog.Error("failed to migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rdb := providers.NewRedis(conf.Server)
	mc := providers.NewMemcache(conf.Server.MemcachedAddr)
	revalidateClient := providers.NewRevalidateClient(conf.Site)

	if conf.Server.EnableTrace {
		shutdown, err := setupTracer(conf.Server.TraceEndpoint)
		if err != nil {
			slog.Error("failed to set up tracing", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer shutdown()
	}

	domainConf := domain.Config{
		SiteURL:           conf.Site.URL,
		AdminEmail:        conf.Admin.Email,
		AdminPasswordHash: conf.Admin.PasswordHash,
		SessionSecret:     conf.Admin.SessionSecret,
		SessionTTL:        time.Duration(conf.Admin.SessionTTLHours) * time.Hour,
		Timezone:          loc,
	}

	signalService := service.NewSignalService(rdb)
	revalidateService := service.NewRevalidateService(mc, revalidateClient, signalService)
	sessionService := service.NewSessionService(domainConf)

	contentRepo := repository.NewContentRepository(db)
	contactRepo := repository.NewContactRepository(db)
	visitRepo := repository.NewVisitRepository(rdb, loc)

	contentUC := usecase.NewContentUsecase(contentRepo, revalidateService)
	contactUC := usecase.NewContactUsecase(contactRepo, revalidateService)
	pageUC := usecase.NewPageUsecase(contentRepo, mc)
	visitUC := usecase.NewVisitUsecase(visitRepo)

	e := echo.New()
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware("folio"))
	}

	authMiddleware := middleware.NewAuthMiddleware(sessionService)
	contactLimiter := middleware.NewRateLimiter(
		conf.Site.ContactRateLimit,
		time.Duration(conf.Site.ContactRateWindow)*time.Second,
	)

	handler := rest.NewHandler(
		domainConf,
		contentUC,
		contactUC,
		pageUC,
		visitUC,
		sessionService,
		signalService,
	)
	handler.RegisterRoutes(e, authMiddleware, contactLimiter)

	go func() {
		if err := e.Start(conf.Server.Listen); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", slog.String("error", err.Error()))
	}
	if err := rdb.Close(); err != nil {
		slog.Error("redis close error", slog.String("error", err.Error()))
	}
}

func setupTracer(endpoint string) (func(), error) {
	ctx := context.Background()

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(endpoint))
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(provider)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			slog.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
	}, nil
}
