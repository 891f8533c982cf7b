// Package config provides configuration management for the resource server.
// Configuration is read from environment variables, optionally seeded from a
// .env file, with defaults for everything but the trust anchors.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the complete server configuration in a flat structure.
type Config struct {
	// Server settings

	// Addr is the address to bind the HTTP server (e.g., ":8080").
	Addr string `env:"SERVER_ADDR" envDefault:":8080"`

	// BaseURL is the canonical URL of this protected resource.
	BaseURL string `env:"SERVER_BASE_URL"`

	// ResourceName is advertised in the protected resource metadata.
	ResourceName string `env:"SERVER_RESOURCE_NAME"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"120s"`

	// OAuth settings

	// Issuer is the single trusted authorization server.
	Issuer string `env:"OAUTH_ISSUER"`

	// Audience must appear in every accepted token's aud claim.
	Audience string `env:"OAUTH_AUDIENCE"`

	// JWKSURI is the issuer's key-set endpoint. It must be https.
	JWKSURI string `env:"OAUTH_JWKS_URI"`

	// JWKSAllowedHosts restricts key-set fetches. Defaults to the host of JWKSURI.
	JWKSAllowedHosts []string `env:"OAUTH_JWKS_ALLOWED_HOSTS" envSeparator:","`

	// JWKSCacheTTL applies when the key-set response carries no max-age.
	JWKSCacheTTL time.Duration `env:"OAUTH_JWKS_CACHE_TTL" envDefault:"1h"`

	// JWKSFetchTimeout bounds each key-set fetch.
	JWKSFetchTimeout time.Duration `env:"OAUTH_JWKS_FETCH_TIMEOUT" envDefault:"5s"`

	// ClockSkew is the tolerance applied to exp, nbf and iat.
	ClockSkew time.Duration `env:"OAUTH_CLOCK_SKEW" envDefault:"60s"`

	// Realm is rendered in every WWW-Authenticate challenge.
	Realm string `env:"OAUTH_REALM" envDefault:"mcp"`

	ScopesSupported []string `env:"OAUTH_SCOPES_SUPPORTED" envSeparator:"," envDefault:"mcp:read,mcp:write,mcp:admin"`

	// CapabilitiesFile is an optional YAML scope-to-capability table.
	CapabilitiesFile string `env:"OAUTH_CAPABILITIES_FILE"`

	// Infrastructure

	// RedisURL enables a shared key-set cache when set.
	RedisURL string `env:"JWKS_REDIS_URL"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from the process environment. Variables from
// the given .env files fill in anything the environment leaves unset; with
// no files, ./.env is read if it exists.
func Load(files ...string) (*Config, error) {
	environ := environMap(os.Environ())

	dotenv, err := readDotEnv(files)
	if err != nil {
		return nil, err
	}
	for k, v := range dotenv {
		if _, set := environ[k]; !set {
			environ[k] = v
		}
	}

	return Parse(environ)
}

// Parse builds and validates a Config from environ alone.
func Parse(environ map[string]string) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	cfg.normalize()

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readDotEnv(files []string) (map[string]string, error) {
	if len(files) > 0 {
		vars, err := godotenv.Read(files...)
		if err != nil {
			return nil, fmt.Errorf("read env file: %w", err)
		}
		return vars, nil
	}

	vars, err := godotenv.Read()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read .env: %w", err)
	}
	return vars, nil
}

func environMap(environ []string) map[string]string {
	m := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			m[k] = v
		}
	}
	return m
}

// normalize trims list entries and derives the JWKS allow-list.
func (c *Config) normalize() {
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	c.JWKSAllowedHosts = trimList(c.JWKSAllowedHosts)
	c.ScopesSupported = trimList(c.ScopesSupported)

	if len(c.JWKSAllowedHosts) == 0 && c.JWKSURI != "" {
		if u, err := url.Parse(c.JWKSURI); err == nil && u.Host != "" {
			c.JWKSAllowedHosts = []string{u.Host}
		}
	}
}

func trimList(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// SlogLevel returns LogLevel as a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// String returns a string representation of the configuration (for debugging).
// Redis credentials are redacted.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Addr: %s, BaseURL: %s, ReadTimeout: %v, WriteTimeout: %v, IdleTimeout: %v, "+
		"Issuer: %s, Audience: %s, JWKSURI: %s, JWKSAllowedHosts: %v, JWKSCacheTTL: %v, JWKSFetchTimeout: %v, "+
		"ClockSkew: %v, Realm: %s, ScopesSupported: %v, CapabilitiesFile: %s, RedisURL: %s, LogLevel: %s}",
		c.Addr, c.BaseURL, c.ReadTimeout, c.WriteTimeout, c.IdleTimeout,
		c.Issuer, c.Audience, c.JWKSURI, c.JWKSAllowedHosts, c.JWKSCacheTTL, c.JWKSFetchTimeout,
		c.ClockSkew, c.Realm, c.ScopesSupported, c.CapabilitiesFile, redactURL(c.RedisURL), c.LogLevel)
}

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid>"
	}
	return u.Redacted()
}
