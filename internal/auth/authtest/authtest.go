// Package authtest issues signed tokens for tests. It plays the identity
// provider so verifier and HTTP tests can run without one.
package authtest

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultIssuer is the issuer stamped on tokens unless overridden.
const DefaultIssuer = "http://localhost:8080/realms/myrealm"

// Issuer signs RS256 tokens with a throwaway key pair.
type Issuer struct {
	Key       *rsa.PrivateKey
	PublicPEM []byte
	Name      string
}

// NewIssuer generates a fresh 2048-bit RSA key pair.
func NewIssuer(t testing.TB) *Issuer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	return &Issuer{
		Key:       key,
		PublicPEM: pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}),
		Name:      DefaultIssuer,
	}
}

// Claims builds a Keycloak-shaped claim set for username valid for ttl.
func (i *Issuer) Claims(username string, ttl time.Duration, roles ...string) jwt.MapClaims {
	now := time.Now()
	if roles == nil {
		roles = []string{}
	}
	return jwt.MapClaims{
		"sub":                "uid-" + username,
		"preferred_username": username,
		"iss":                i.Name,
		"iat":                now.Unix(),
		"exp":                now.Add(ttl).Unix(),
		"realm_access":       map[string]any{"roles": roles},
	}
}

// Sign signs claims with the issuer key.
func (i *Issuer) Sign(t testing.TB, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(i.Key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

// Token returns a signed token for username valid for one hour.
func (i *Issuer) Token(t testing.TB, username string, roles ...string) string {
	t.Helper()
	return i.Sign(t, i.Claims(username, time.Hour, roles...))
}

// Bearer returns an Authorization header value for username.
func (i *Issuer) Bearer(t testing.TB, username string, roles ...string) string {
	t.Helper()
	return "Bearer " + i.Token(t, username, roles...)
}
