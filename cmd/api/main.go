//go:generate go run github.com/google/wire/cmd/wire gen .
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/strawberryfields/strawberryfields/x/key"
	"github.com/strawberryfields/strawberryfields/x/util"

	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.7.0"
)

func main() {
	e := echo.New()
	config := util.Config{}
	configPath := os.Getenv("STRAWBERRY_CONFIG")
	if configPath == "" {
		configPath = "/etc/strawberryfields/config.yaml"
	}

	err := config.Load(configPath)
	if err != nil {
		e.Logger.Fatal(err)
	}

	log.Print("StrawberryFields ", util.GetVersion(), " starting...")
	log.Print("Config loaded! I am: ", config.Actor.Name)

	// the key is an initialization precondition, not a runtime error
	km, err := key.New(config.Actor.PrivateKey)
	if err != nil {
		log.Fatal("failed to load private key: ", err)
	}

	if config.Server.LogPath != "" {
		logfile, err := os.OpenFile(filepath.Join(config.Server.LogPath, "access.log"), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Fatal(err)
		}
		defer logfile.Close()
		e.Logger.SetOutput(logfile)
	}

	e.HidePort = true
	e.HideBanner = true

	if config.Server.EnableTrace {
		cleanup, err := setupTraceProvider(config.Server.TraceEndpoint, config.Actor.Name+"/api", util.GetVersion())
		if err != nil {
			panic(err)
		}
		defer cleanup()

		skipper := otelecho.WithSkipper(
			func(c echo.Context) bool {
				return c.Path() == "/metrics" || c.Path() == "/health"
			},
		)
		e.Use(otelecho.Middleware(config.Actor.Name, skipper))
	}

	e.Use(echoprometheus.NewMiddleware("strawberryfields"))
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	handler := SetupActivityPubHandler(km, config)

	e.GET("/", handler.Root)
	e.GET("/.well-known/webfinger", handler.WebFinger)

	e.GET("/u/:name", handler.Actor)
	e.GET("/u/:name/inbox", handler.MethodNotAllowed)
	e.POST("/u/:name/inbox", handler.Inbox)
	e.GET("/u/:name/outbox", handler.Outbox)
	e.POST("/u/:name/outbox", handler.MethodNotAllowed)
	e.GET("/u/:name/following", handler.Following)
	e.GET("/u/:name/followers", handler.Followers)

	e.POST("/s/:secret/u/:name", handler.Trigger)

	e.GET("/u", handler.Home)
	e.GET("/user", handler.Home)
	e.GET("/users", handler.Home)
	e.GET("/user/:name", handler.ProfileAlias)
	e.GET("/users/:name", handler.ProfileAlias)
	e.GET("/:handle", handler.HandleAlias)

	e.Static("/public", config.Server.PublicDir)

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/metrics", echoprometheus.NewHandler())

	e.Logger.Fatal(e.Start(config.Server.Addr))
}

func setupTraceProvider(endpoint string, serviceName string, serviceVersion string) (func(), error) {

	exporter, err := otlptracehttp.New(
		context.Background(),
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)

	if err != nil {
		return nil, err
	}

	resource := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
		semconv.ServiceVersionKey.String(serviceVersion),
	)

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(resource),
	)
	otel.SetTracerProvider(tracerProvider)

	propagator := propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)
	otel.SetTextMapPropagator(propagator)

	cleanup := func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Printf("Failed to shutdown tracer provider: %v", err)
		}
	}
	return cleanup, nil
}
