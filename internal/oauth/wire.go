package oauth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jamesprial/mcp-resource-auth/internal/oauth/internal/capability"
	"github.com/jamesprial/mcp-resource-auth/internal/oauth/internal/jwks"
	"github.com/jamesprial/mcp-resource-auth/internal/oauth/internal/metadata"
	"github.com/jamesprial/mcp-resource-auth/internal/oauth/internal/token"
)

// tokenValidatorAdapter adds context building to token.Validator.
type tokenValidatorAdapter struct {
	validator *token.Validator
}

func (a *tokenValidatorAdapter) ValidateJWT(ctx context.Context, raw string) (map[string]any, error) {
	return a.validator.ValidateJWT(ctx, raw)
}

func (a *tokenValidatorAdapter) Authenticate(ctx context.Context, raw string) (*AuthContext, error) {
	claims, err := a.validator.ValidateJWT(ctx, raw)
	if err != nil {
		return nil, err
	}
	return token.NewAuthContext(claims), nil
}

// Config holds the configuration needed to construct OAuth services.
type Config struct {
	// BaseURL is the canonical URL of this protected resource.
	BaseURL string

	// Issuer is the trusted authorization server; tokens must carry it as iss.
	Issuer string

	// Audience must appear in the aud claim.
	Audience string

	// JWKSURI is the issuer's key-set endpoint.
	JWKSURI string

	// JWKSAllowedHosts restricts key-set fetches. JWKSURI's host must be listed.
	JWKSAllowedHosts []string

	// JWKSCacheTTL applies when the key-set response has no max-age.
	JWKSCacheTTL time.Duration

	// JWKSFetchTimeout bounds each key-set fetch.
	JWKSFetchTimeout time.Duration

	// ClockSkew is the tolerance applied to exp, nbf and iat.
	ClockSkew time.Duration

	// ScopesSupported is advertised in the metadata document.
	ScopesSupported []string

	// ResourceName is advertised in the metadata document.
	ResourceName string

	// Capabilities defaults to DefaultCapabilityTable.
	Capabilities CapabilityTable

	// KeySetStore defaults to an in-process store.
	KeySetStore KeySetStore

	// HTTPClient fetches key sets. Defaults to a plain http.Client.
	HTTPClient *http.Client

	Logger *slog.Logger
}

// Services is the assembled authentication core.
type Services struct {
	KeySets      KeySetCache
	Validator    TokenValidator
	Scopes       ScopeChecker
	Capabilities CapabilityMapper
	Metadata     MetadataService
}

// NewKeySetCache creates the key-set cache.
func NewKeySetCache(cfg *Config) KeySetCache {
	return jwks.NewClient(jwks.Options{
		AllowedHosts: cfg.JWKSAllowedHosts,
		DefaultTTL:   cfg.JWKSCacheTTL,
		FetchTimeout: cfg.JWKSFetchTimeout,
		HTTPClient:   cfg.HTTPClient,
		Store:        cfg.KeySetStore,
		Logger:       cfg.Logger,
	})
}

// NewTokenValidator creates a validator that resolves keys through keySets.
func NewTokenValidator(cfg *Config, keySets KeySetCache) TokenValidator {
	v := token.NewValidator(keySets, token.Options{
		JWKSURI:          cfg.JWKSURI,
		ExpectedIssuer:   cfg.Issuer,
		ExpectedAudience: cfg.Audience,
		ClockSkew:        cfg.ClockSkew,
	})
	return &tokenValidatorAdapter{validator: v}
}

// NewMetadataService creates the RFC 9728 metadata service.
func NewMetadataService(cfg *Config) MetadataService {
	return metadata.NewService(cfg.BaseURL, []string{cfg.Issuer}, cfg.ScopesSupported, cfg.ResourceName)
}

// NewScopeChecker creates a scope checker.
func NewScopeChecker() ScopeChecker {
	return token.NewScopeChecker()
}

// NewCapabilityMapper creates a mapper over a copy of table.
func NewCapabilityMapper(table CapabilityTable) CapabilityMapper {
	return capability.NewMapper(table)
}

// DefaultCapabilityTable returns the built-in table for the mcp:* scopes.
func DefaultCapabilityTable() CapabilityTable {
	return capability.DefaultTable()
}

// LoadCapabilityTable reads a YAML capability table.
func LoadCapabilityTable(path string) (CapabilityTable, error) {
	return capability.LoadTable(path)
}

// NewRedisKeySetStore shares key-set cache entries through Redis.
func NewRedisKeySetStore(client redis.UniversalClient) (KeySetStore, error) {
	return jwks.NewRedisStore(client, "")
}

// HasRequiredScopes reports whether granted contains every required scope.
func HasRequiredScopes(granted, required []string) bool {
	return token.HasRequiredScopes(granted, required)
}

// NewAuthContext builds an AuthContext from an already validated payload.
func NewAuthContext(claims map[string]any) *AuthContext {
	return token.NewAuthContext(claims)
}

// NewOAuthServices assembles every service from cfg.
func NewOAuthServices(cfg *Config) (*Services, error) {
	meta := metadata.NewService(cfg.BaseURL, []string{cfg.Issuer}, cfg.ScopesSupported, cfg.ResourceName)
	if err := meta.Validate(); err != nil {
		return nil, fmt.Errorf("protected resource metadata: %w", err)
	}

	table := cfg.Capabilities
	if table == nil {
		table = DefaultCapabilityTable()
	}

	keySets := NewKeySetCache(cfg)
	return &Services{
		KeySets:      keySets,
		Validator:    NewTokenValidator(cfg, keySets),
		Scopes:       NewScopeChecker(),
		Capabilities: NewCapabilityMapper(table),
		Metadata:     meta,
	}, nil
}
