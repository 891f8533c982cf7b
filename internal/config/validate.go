package config

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := validateServer(cfg); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}

	if err := validateOAuth(cfg); err != nil {
		return fmt.Errorf("invalid oauth config: %w", err)
	}

	if err := validateInfra(cfg); err != nil {
		return fmt.Errorf("invalid infrastructure config: %w", err)
	}

	return nil
}

// isLocalhost reports whether host, with or without a port, is a loopback name.
func isLocalhost(host string) bool {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// parseWebURL parses an absolute http(s) URL; http is only accepted for
// loopback hosts.
func parseWebURL(name, raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", name, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("%s must be an absolute URL", name)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return nil, fmt.Errorf("%s must use http or https scheme", name)
	}
	if u.Scheme == "http" && !isLocalhost(u.Host) {
		return nil, fmt.Errorf("%s must use https scheme for non-localhost hosts", name)
	}
	return u, nil
}

func validateServer(cfg *Config) error {
	if cfg.Addr == "" {
		return fmt.Errorf("SERVER_ADDR is required")
	}

	if cfg.BaseURL == "" {
		return fmt.Errorf("SERVER_BASE_URL is required")
	}
	if _, err := parseWebURL("SERVER_BASE_URL", cfg.BaseURL); err != nil {
		return err
	}

	if cfg.ReadTimeout <= 0 {
		return fmt.Errorf("SERVER_READ_TIMEOUT must be positive")
	}
	if cfg.WriteTimeout <= 0 {
		return fmt.Errorf("SERVER_WRITE_TIMEOUT must be positive")
	}
	// 0 means no idle timeout.
	if cfg.IdleTimeout < 0 {
		return fmt.Errorf("SERVER_IDLE_TIMEOUT must be non-negative")
	}

	return nil
}

func validateOAuth(cfg *Config) error {
	if cfg.Issuer == "" {
		return fmt.Errorf("OAUTH_ISSUER is required")
	}
	if _, err := parseWebURL("OAUTH_ISSUER", cfg.Issuer); err != nil {
		return err
	}

	if cfg.Audience == "" {
		return fmt.Errorf("OAUTH_AUDIENCE is required")
	}

	if cfg.JWKSURI == "" {
		return fmt.Errorf("OAUTH_JWKS_URI is required")
	}
	jwksURL, err := url.Parse(cfg.JWKSURI)
	if err != nil {
		return fmt.Errorf("invalid OAUTH_JWKS_URI: %w", err)
	}
	if jwksURL.Scheme != "https" || jwksURL.Host == "" {
		return fmt.Errorf("OAUTH_JWKS_URI must be an absolute https URL")
	}
	if !hostAllowed(jwksURL, cfg.JWKSAllowedHosts) {
		return fmt.Errorf("OAUTH_JWKS_URI host %q is not in OAUTH_JWKS_ALLOWED_HOSTS", jwksURL.Host)
	}

	if cfg.JWKSCacheTTL <= 0 {
		return fmt.Errorf("OAUTH_JWKS_CACHE_TTL must be positive")
	}
	if cfg.JWKSFetchTimeout <= 0 {
		return fmt.Errorf("OAUTH_JWKS_FETCH_TIMEOUT must be positive")
	}
	if cfg.ClockSkew < 0 {
		return fmt.Errorf("OAUTH_CLOCK_SKEW must be non-negative")
	}

	return nil
}

func hostAllowed(u *url.URL, allowed []string) bool {
	for _, h := range allowed {
		if strings.EqualFold(h, u.Host) || strings.EqualFold(h, u.Hostname()) {
			return true
		}
	}
	return false
}

func validateInfra(cfg *Config) error {
	if cfg.RedisURL != "" {
		if _, err := redis.ParseURL(cfg.RedisURL); err != nil {
			return fmt.Errorf("invalid JWKS_REDIS_URL: %w", err)
		}
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q", cfg.LogLevel)
	}

	return nil
}
