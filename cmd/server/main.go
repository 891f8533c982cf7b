// Package main provides the entry point for the resource server.
// It wires together all components and manages the server lifecycle with
// graceful shutdown.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jamesprial/mcp-resource-auth/internal/config"
	"github.com/jamesprial/mcp-resource-auth/internal/oauth"
	"github.com/jamesprial/mcp-resource-auth/internal/transport"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	logger.Info("server configuration loaded",
		"addr", cfg.Addr,
		"base_url", cfg.BaseURL,
		"issuer", cfg.Issuer,
		"jwks_uri", cfg.JWKSURI,
	)

	// jwks.fetch spans go to the global otel TracerProvider, a no-op until an
	// embedding binary registers one with otel.SetTracerProvider.
	oauthCfg := &oauth.Config{
		BaseURL:          cfg.BaseURL,
		Issuer:           cfg.Issuer,
		Audience:         cfg.Audience,
		JWKSURI:          cfg.JWKSURI,
		JWKSAllowedHosts: cfg.JWKSAllowedHosts,
		JWKSCacheTTL:     cfg.JWKSCacheTTL,
		JWKSFetchTimeout: cfg.JWKSFetchTimeout,
		ClockSkew:        cfg.ClockSkew,
		ScopesSupported:  cfg.ScopesSupported,
		ResourceName:     cfg.ResourceName,
		Logger:           logger,
	}

	if cfg.CapabilitiesFile != "" {
		table, err := oauth.LoadCapabilityTable(cfg.CapabilitiesFile)
		if err != nil {
			return fmt.Errorf("load capability table: %w", err)
		}
		oauthCfg.Capabilities = table
		logger.Info("capability table loaded", "path", cfg.CapabilitiesFile, "scopes", len(table))
	}

	if cfg.RedisURL != "" {
		client, err := newRedisClient(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		store, err := oauth.NewRedisKeySetStore(client)
		if err != nil {
			return fmt.Errorf("redis key-set store: %w", err)
		}
		oauthCfg.KeySetStore = store
		logger.Info("key-set cache shared through redis")
	}

	services, err := oauth.NewOAuthServices(oauthCfg)
	if err != nil {
		return fmt.Errorf("create oauth services: %w", err)
	}

	logger.Info("oauth services initialized",
		"jwks_cache_ttl", cfg.JWKSCacheTTL,
		"clock_skew", cfg.ClockSkew,
	)

	server, _, err := transport.NewTransportServices(&transport.Config{
		ServerConfig: cfg,
		OAuth:        services,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("create transport services: %w", err)
	}

	logger.Info("transport services initialized",
		"metadata_url", services.Metadata.GetMetadataURL(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping server gracefully")
	case err := <-serverErrCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("server stopped successfully")
	return nil
}

// newRedisClient connects to url and checks the connection.
func newRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}
