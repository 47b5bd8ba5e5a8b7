package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bubblco/bubble-mcp/configs"
	"github.com/bubblco/bubble-mcp/internal/adapter/inbound/mcphttp"
	"github.com/bubblco/bubble-mcp/internal/adapter/outbound/bubble"
	"github.com/bubblco/bubble-mcp/internal/usecase"

	mcpGoServer "github.com/mark3labs/mcp-go/server"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// version is overridden via -ldflags on release builds.
var version = "0.1.0"

func main() {
	// === Command Line Flags ===
	var transport string
	flag.StringVar(&transport, "transport", "stdio", "Transport mode: stdio or sse")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === Configuration ===
	cfg, err := configs.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// === Logging ===
	logLevel := cfg.ParsedLogLevel() // Use parsed level from config.
	var logger *slog.Logger

	if transport == "stdio" {
		// In STDIO mode, log to file to avoid interfering with stdio communication
		logFile, err := os.OpenFile("/tmp/bubble-mcp.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			// Fall back to discard if can't open log file
			logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: logLevel}))
		} else {
			logger = slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: logLevel}))
		}
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	}

	slog.SetDefault(logger)
	logger.Info("Logger initialized.", slog.String("level", logLevel.String()), slog.String("transport", transport))

	if cfg.AppURL == "" {
		logger.Error("BUBBLE_APP_URL is required. Set it to the app's base URL, e.g. https://myapp.bubbleapps.io.")
		os.Exit(1)
	}
	if cfg.APIToken == "" {
		logger.Warn("BUBBLE_API_TOKEN is empty. Requests go out unauthenticated and will only reach publicly readable data.")
	}
	if cfg.ReadWrite() {
		logger.Info("Running in read-write mode. Tools that modify data are enabled.")
	} else {
		logger.Info("Running in read-only mode. Set BUBBLE_API_MODE=read-write to enable tools that modify data.")
	}

	// === OpenTelemetry Initialization ===
	shutdownOtel, err := initOtelProvider(cfg)
	if err != nil {
		logger.Error("Failed to initialize OpenTelemetry.", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := shutdownOtel(context.Background()); err != nil {
			logger.Error("Failed to shutdown OpenTelemetry TracerProvider.", slog.Any("error", err))
		}
	}()
	logger.Info("OpenTelemetry initialized.")

	// === MCP Server (mark3labs/mcp-go) ===
	mcpSrv := mcpGoServer.NewMCPServer(
		"bubble-mcp",
		version,
		mcpGoServer.WithToolCapabilities(false), // Fixed tool set, no listChanged notifications.
		mcpGoServer.WithRecovery(),
	)
	logger.Info("MCP server (mark3labs/mcp-go) initialized.")

	// === Dependency Injection ===
	logger.Info("Initializing dependencies...")

	// --- HTTP Client (shared by all Bubble API calls) ---
	httpClient := &http.Client{
		Timeout: cfg.HTTPClientTimeout,
	}
	logger.Debug("HTTP Client configured.", slog.Duration("timeout", cfg.HTTPClientTimeout))

	// --- Bubble API Client (Outbound) ---
	bubbleClient := bubble.NewClient(bubble.ClientConfig{
		AppURL:     cfg.AppURL,
		APIToken:   cfg.APIToken,
		HTTPClient: httpClient,
		Logger:     logger,
	})
	logger.Debug("Bubble API client initialized.", slog.String("app_url", cfg.AppURL))

	// === Use Cases ===
	invokeUC := usecase.NewInvokeToolUseCase(bubbleClient, cfg.ReadWrite(), logger)
	registerUC := usecase.NewRegisterToolsUseCase(mcpSrv, invokeUC, logger)
	serveUC := usecase.NewServeToolsUseCase(logger)

	// === Tool Registration ===
	if err := registerUC.Execute(); err != nil {
		logger.Error("Failed to register tools.", slog.Any("error", err))
		os.Exit(1)
	}

	// === Transport Mode Selection ===
	switch transport {
	case "stdio":
		logger.Info("Starting in STDIO mode")

		stdioServer := mcpGoServer.NewStdioServer(mcpSrv)

		// Run STDIO server (blocking)
		if err := stdioServer.Listen(ctx, os.Stdin, os.Stdout); err != nil {
			logger.Error("STDIO server error", slog.Any("error", err))
			os.Exit(1)
		}

	case "sse":
		logger.Info("Starting in SSE mode")

		// === SSE Server Setup (using mcp-go) ===
		sseServer := mcpGoServer.NewSSEServer(mcpSrv, mcpGoServer.WithBaseURL("http://"+cfg.ListenAddr))
		logger.Info("MCP SSE server initialized.", slog.String("address", cfg.ListenAddr))

		// === Ops HTTP Server Setup ===
		opsHandlers := mcphttp.NewHandlers(serveUC, logger)
		opsServer := &http.Server{
			Addr:         cfg.OpsListenAddr,
			Handler:      opsHandlers.Router(),
			ReadTimeout:  cfg.ServerReadTimeout,
			WriteTimeout: cfg.ServerWriteTimeout,
			IdleTimeout:  cfg.ServerIdleTimeout,
		}
		go func() {
			logger.Info("Ops HTTP server starting.", slog.String("address", opsServer.Addr))
			if err := opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Ops HTTP server failed to start.", slog.Any("error", err))
			}
		}()

		// === MCP SSE Server Startup ===
		go func() {
			logger.Info("MCP SSE server starting.", slog.String("address", cfg.ListenAddr))
			if err := sseServer.Start(cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("MCP SSE server failed to start.", slog.Any("error", err))
				stop() // Trigger shutdown context if main server fails
			}
		}()

		// Wait for interrupt signal.
		<-ctx.Done()

		// === Server Shutdown ===
		logger.Info("Shutting down servers...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := opsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Ops HTTP server graceful shutdown failed.", slog.Any("error", err))
		}

		if err := sseServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("MCP SSE server graceful shutdown failed.", slog.Any("error", err))
		}

		logger.Info("Servers shut down gracefully.")

	default:
		logger.Error("Invalid transport mode", slog.String("transport", transport))
		os.Exit(1)
	}
}

// initOtelProvider initializes the OpenTelemetry SDK and sets up the OTLP trace exporter.
// It returns a shutdown function to be called on application exit.
func initOtelProvider(cfg *configs.Config) (func(context.Context) error, error) {
	ctx := context.Background()

	if cfg.OtelExporterOtlpEndpoint == "" {
		slog.Info("OTEL_EXPORTER_OTLP_ENDPOINT not set, OpenTelemetry tracing disabled.")
		return func(context.Context) error { return nil }, nil
	}

	slog.Info("Initializing OTLP exporter.", slog.String("endpoint", cfg.OtelExporterOtlpEndpoint))

	// Setup OTLP gRPC connection options.
	grpcOpts := []grpc.DialOption{}
	if cfg.OtelExporterOtlpInsecure {
		grpcOpts = append(grpcOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
		slog.Warn("Using insecure connection for OTLP exporter.")
	} else {
		// TODO: Support custom CA bundles for the OTLP connection.
		slog.Info("Using secure connection for OTLP exporter (assuming system CAs).")
	}

	conn, err := grpc.NewClient(cfg.OtelExporterOtlpEndpoint, grpcOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection to OTLP endpoint: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	// Define application resource attributes.
	r, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String("bubble-mcp"),
			semconv.ServiceVersionKey.String(version),
		),
	)
	if err != nil {
		_ = traceExporter.Shutdown(ctx)
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	// Create and set the TracerProvider.
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(r),
	)
	otel.SetTracerProvider(tp)

	// Set the global propagator to W3C Trace Context and Baggage.
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	slog.Info("OpenTelemetry TracerProvider configured.")

	// Return the shutdown function for the TracerProvider.
	return func(ctx context.Context) error {
		providerErr := tp.Shutdown(ctx)
		connErr := conn.Close()
		return errors.Join(providerErr, connErr)
	}, nil
}
