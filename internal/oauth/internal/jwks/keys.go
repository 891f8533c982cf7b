package jwks

import (
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"math/big"
	"slices"
	"strings"
)

// JWKS is a JSON Web Key Set document.
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// JWK is a single JSON Web Key. Only the members needed to verify RS256
// signatures are decoded.
type JWK struct {
	KeyType   string `json:"kty"`
	Use       string `json:"use,omitempty"`
	Algorithm string `json:"alg,omitempty"`
	KeyID     string `json:"kid,omitempty"`

	// KeyOps distinguishes absent (nil) from present-but-empty.
	KeyOps []string `json:"key_ops"`

	N string `json:"n,omitempty"`
	E string `json:"e,omitempty"`
}

// FindKey returns the key whose kid equals keyID exactly.
func (s *JWKS) FindKey(keyID string) (*JWK, bool) {
	if s == nil {
		return nil, false
	}
	for i := range s.Keys {
		if s.Keys[i].KeyID == keyID {
			return &s.Keys[i], true
		}
	}
	return nil, false
}

// CheckVerificationKey reports whether k may be used to verify an RS256
// signature: an RSA key, usable for signatures, with an RS* algorithm hint
// and the verify operation when those members are present.
func (k *JWK) CheckVerificationKey() error {
	if k.KeyType != "RSA" {
		return fmt.Errorf("kty %q is not RSA", k.KeyType)
	}
	if k.Use != "" && k.Use != "sig" {
		return fmt.Errorf("use %q is not sig", k.Use)
	}
	if k.Algorithm != "" && !strings.HasPrefix(k.Algorithm, "RS") {
		return fmt.Errorf("alg %q is not an RS algorithm", k.Algorithm)
	}
	if k.KeyOps != nil && !slices.Contains(k.KeyOps, "verify") {
		return fmt.Errorf("key_ops %v does not include verify", k.KeyOps)
	}
	if k.N == "" || k.E == "" {
		return fmt.Errorf("missing RSA key parameters")
	}
	return nil
}

// RSAPublicKey builds the public key from the base64url-encoded big-endian
// modulus and exponent.
func (k *JWK) RSAPublicKey() (*rsa.PublicKey, error) {
	nBytes, err := base64URLDecode(k.N)
	if err != nil {
		return nil, fmt.Errorf("decode modulus: %w", err)
	}
	eBytes, err := base64URLDecode(k.E)
	if err != nil {
		return nil, fmt.Errorf("decode exponent: %w", err)
	}

	n := new(big.Int).SetBytes(nBytes)
	if n.Sign() == 0 {
		return nil, fmt.Errorf("modulus is zero")
	}
	e := new(big.Int).SetBytes(eBytes)
	if e.BitLen() > 31 || e.Int64() < 2 {
		return nil, fmt.Errorf("exponent out of range")
	}

	return &rsa.PublicKey{N: n, E: int(e.Int64())}, nil
}

// base64URLDecode decodes base64url with or without trailing padding.
func base64URLDecode(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}
