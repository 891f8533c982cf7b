// Package token validates RS256 access tokens against a published key set
// and derives the per-request authorization context from their claims.
package token

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jamesprial/mcp-resource-auth/internal/oauth/internal/jwks"
	"github.com/jamesprial/mcp-resource-auth/internal/oauth/oautherr"
)

// KeySetFetcher returns the key set published at a URI.
type KeySetFetcher interface {
	FetchJWKS(ctx context.Context, uri string) (*jwks.JWKS, error)
}

// Options configures a Validator.
type Options struct {
	// JWKSURI is the key-set endpoint of the trusted issuer.
	JWKSURI string

	// ExpectedIssuer must equal iss exactly.
	ExpectedIssuer string

	// ExpectedAudience must equal aud, or be an element of it.
	ExpectedAudience string

	// ClockSkew is applied to exp, nbf and iat. Sub-second parts are dropped.
	ClockSkew time.Duration

	// Now overrides the clock in tests.
	Now func() time.Time
}

// Validator verifies access tokens. It holds no mutable state and is safe
// for concurrent use.
type Validator struct {
	keys     KeySetFetcher
	jwksURI  string
	issuer   string
	audience string
	skew     int64
	now      func() time.Time
	segments *jwt.Parser
}

// NewValidator creates a Validator that resolves signing keys through keys.
func NewValidator(keys KeySetFetcher, opts Options) *Validator {
	v := &Validator{
		keys:     keys,
		jwksURI:  opts.JWKSURI,
		issuer:   opts.ExpectedIssuer,
		audience: opts.ExpectedAudience,
		skew:     int64(opts.ClockSkew / time.Second),
		now:      opts.Now,
		segments: jwt.NewParser(),
	}
	if v.now == nil {
		v.now = time.Now
	}
	return v
}

// ValidateJWT verifies raw and returns its payload unchanged. Checks run in
// order and stop at the first failure:
//
//  1. three dot-separated segments
//  2. header and payload decode as JSON objects
//  3. alg is RS256, typ is absent or JWT, kid is set, crit is absent or empty
//  4. kid is present in the issuer's key set
//  5. the key is an RSA verification key
//  6. the RS256 signature covers the exact header.payload text
//  7. iss, aud, exp, nbf and iat
//
// Errors match oautherr.ErrInvalidToken, oautherr.ErrExpiredToken or
// oautherr.ErrTokenNotActive. Key-set failures match ErrInvalidToken and
// keep the key-set error in the chain.
func (v *Validator) ValidateJWT(ctx context.Context, raw string) (map[string]any, error) {
	const op = "ValidateJWT"

	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return nil, oautherr.NewInvalidTokenError(op, oautherr.ReasonMalformed,
			fmt.Errorf("token has %d segments", len(parts)))
	}

	header, err := v.decodeObject(parts[0])
	if err != nil {
		return nil, oautherr.NewInvalidTokenError(op, oautherr.ReasonMalformed,
			fmt.Errorf("header: %w", err))
	}
	claims, err := v.decodeObject(parts[1])
	if err != nil {
		return nil, oautherr.NewInvalidTokenError(op, oautherr.ReasonMalformed,
			fmt.Errorf("payload: %w", err))
	}

	kid, err := checkHeader(header)
	if err != nil {
		return nil, err
	}

	set, err := v.keys.FetchJWKS(ctx, v.jwksURI)
	if err != nil {
		return nil, oautherr.NewInvalidTokenError(op, oautherr.ReasonJWKSUnavailable, err)
	}
	jwk, ok := set.FindKey(kid)
	if !ok {
		return nil, oautherr.NewKeyNotFoundError(op, kid)
	}
	if err := jwk.CheckVerificationKey(); err != nil {
		return nil, oautherr.NewInvalidTokenError(op, oautherr.ReasonInvalidKey, err).
			WithContext("key_id", kid)
	}
	pub, err := jwk.RSAPublicKey()
	if err != nil {
		return nil, oautherr.NewInvalidTokenError(op, oautherr.ReasonInvalidKey, err).
			WithContext("key_id", kid)
	}

	sig, err := v.segments.DecodeSegment(parts[2])
	if err != nil {
		return nil, oautherr.NewInvalidTokenError(op, oautherr.ReasonMalformed,
			fmt.Errorf("signature: %w", err))
	}
	signingInput := raw[:len(parts[0])+1+len(parts[1])]
	if err := jwt.SigningMethodRS256.Verify(signingInput, sig, pub); err != nil {
		return nil, oautherr.NewInvalidTokenError(op, oautherr.ReasonInvalidSignature, err).
			WithContext("key_id", kid)
	}

	if err := v.checkClaims(claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func checkHeader(header map[string]any) (kid string, err error) {
	const op = "ValidateJWT"

	if alg, _ := header["alg"].(string); alg != jwt.SigningMethodRS256.Alg() {
		return "", oautherr.NewInvalidTokenError(op, oautherr.ReasonUnsupportedAlg, nil).
			WithContext("algorithm", header["alg"])
	}
	if typ, ok := header["typ"]; ok {
		if s, _ := typ.(string); s != "JWT" {
			return "", oautherr.NewInvalidTokenError(op, oautherr.ReasonUnsupportedType, nil).
				WithContext("typ", typ)
		}
	}
	kid, _ = header["kid"].(string)
	if kid == "" {
		return "", oautherr.NewInvalidTokenError(op, oautherr.ReasonMissingKeyID, nil)
	}
	if crit, ok := header["crit"]; ok {
		if list, isList := crit.([]any); !isList || len(list) > 0 {
			return "", oautherr.NewInvalidTokenError(op, oautherr.ReasonCriticalHeader, nil).
				WithContext("crit", crit)
		}
	}
	return kid, nil
}

func (v *Validator) checkClaims(claims map[string]any) error {
	const op = "ValidateJWT"
	now := v.now().Unix()

	if iss, ok := claims["iss"].(string); !ok || iss != v.issuer {
		return oautherr.NewInvalidIssuerError(op, v.issuer, claims["iss"])
	}
	if !audienceContains(claims["aud"], v.audience) {
		return oautherr.NewInvalidAudienceError(op, v.audience, claims["aud"])
	}

	exp, present, err := numericDate(claims, "exp")
	if err != nil || !present {
		return oautherr.NewInvalidTokenError(op, oautherr.ReasonMissingClaim, err).
			WithContext("claim", "exp")
	}
	if now-v.skew >= exp {
		return oautherr.NewTokenExpiredError(op, exp, now)
	}

	nbf, present, err := numericDate(claims, "nbf")
	if err != nil {
		return oautherr.NewInvalidTokenError(op, oautherr.ReasonMalformed, err)
	}
	if present && now+v.skew < nbf {
		return oautherr.NewTokenNotActiveError(op, nbf, now)
	}

	iat, present, err := numericDate(claims, "iat")
	if err != nil {
		return oautherr.NewInvalidTokenError(op, oautherr.ReasonMalformed, err)
	}
	if present && iat > now+v.skew {
		return oautherr.NewInvalidTokenError(op, oautherr.ReasonIssuedInFuture,
			fmt.Errorf("iat %d, now %d", iat, now))
	}
	return nil
}

// decodeObject base64url-decodes seg and parses it as a single JSON object.
// Numbers are kept as json.Number so the payload round-trips exactly.
func (v *Validator) decodeObject(seg string) (map[string]any, error) {
	b, err := v.segments.DecodeSegment(seg)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.New("not a JSON object")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after JSON object")
	}
	return obj, nil
}
