package token

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/jamesprial/mcp-resource-auth/internal/oauth/internal/jwks"
)

const (
	testIssuer   = "https://auth.example.com"
	testAudience = "mcp-api"
	testJWKSURI  = "https://auth.example.com/.well-known/jwks.json"
	testKID      = "key-1"
)

var testNow = time.Unix(1_700_000_000, 0)

func genRSA(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	pk, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return pk
}

func rsaJWK(kid string, pub *rsa.PublicKey) jwks.JWK {
	return jwks.JWK{
		KeyType:   "RSA",
		Use:       "sig",
		Algorithm: "RS256",
		KeyID:     kid,
		N:         base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
		E:         base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
	}
}

// stubKeySet serves a fixed key set or error and counts calls.
type stubKeySet struct {
	set   *jwks.JWKS
	err   error
	calls atomic.Int32
}

func (s *stubKeySet) FetchJWKS(_ context.Context, _ string) (*jwks.JWKS, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.set, nil
}

func newTestValidator(keys KeySetFetcher, skew time.Duration) *Validator {
	return NewValidator(keys, Options{
		JWKSURI:          testJWKSURI,
		ExpectedIssuer:   testIssuer,
		ExpectedAudience: testAudience,
		ClockSkew:        skew,
		Now:              func() time.Time { return testNow },
	})
}

func validClaims() map[string]any {
	now := testNow.Unix()
	return map[string]any{
		"iss":   testIssuer,
		"aud":   testAudience,
		"sub":   "user123",
		"exp":   now + 3600,
		"iat":   now,
		"jti":   "tok-1",
		"scope": "mcp:read mcp:write",
	}
}

func validHeader() map[string]any {
	return map[string]any{"alg": "RS256", "typ": "JWT", "kid": testKID}
}

// signRaw builds a compact RS256 JWS with exactly the given header.
func signRaw(t *testing.T, header, claims map[string]any, key *rsa.PrivateKey) string {
	t.Helper()
	h, err := json.Marshal(header)
	require.NoError(t, err)
	c, err := json.Marshal(claims)
	require.NoError(t, err)

	signingInput := base64.RawURLEncoding.EncodeToString(h) + "." + base64.RawURLEncoding.EncodeToString(c)
	sig, err := jwt.SigningMethodRS256.Sign(signingInput, key)
	require.NoError(t, err)
	return signingInput + "." + base64.RawURLEncoding.EncodeToString(sig)
}

func keySetFor(key *rsa.PrivateKey) *jwks.JWKS {
	return &jwks.JWKS{Keys: []jwks.JWK{rsaJWK(testKID, &key.PublicKey)}}
}
