package auth

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"docgate/internal/model"
)

// Verification failures. Each rejected credential maps to exactly one of these;
// callers match them with errors.Is.
var (
	ErrMissingCredential   = errors.New("missing credential")
	ErrMalformedCredential = errors.New("malformed credential")
	ErrExpiredCredential   = errors.New("expired credential")
	ErrInvalidSignature    = errors.New("invalid signature")
	ErrIssuerMismatch      = errors.New("issuer mismatch")
	ErrVerificationFailed  = errors.New("verification failed")
)

const bearerPrefix = "Bearer "

// Config configures a Verifier. Algorithm and PublicKeyPEM are fixed for the
// lifetime of the verifier.
type Config struct {
	// Algorithm is the single accepted JWS algorithm, e.g. "RS256".
	Algorithm string
	// PublicKeyPEM is the verification key matching Algorithm.
	PublicKeyPEM []byte
	// Issuer is the expected "iss" claim. Empty disables the comparison.
	Issuer string
	// StrictIssuer rejects foreign issuers instead of only flagging them.
	StrictIssuer bool
	// Leeway tolerates clock skew on exp/nbf/iat.
	Leeway time.Duration
	// Now overrides the clock. Defaults to time.Now.
	Now func() time.Time
}

// Verifier validates bearer tokens and turns their claims into a model.Identity.
// It holds no mutable state and is safe for concurrent use.
type Verifier struct {
	method jwt.SigningMethod
	key    any
	issuer string
	strict bool
	parser *jwt.Parser
}

type tokenClaims struct {
	PreferredUsername string `json:"preferred_username"`
	RealmAccess       struct {
		Roles []string `json:"roles"`
	} `json:"realm_access"`
	jwt.RegisteredClaims
}

// NewVerifier validates cfg and parses the verification key.
func NewVerifier(cfg Config) (*Verifier, error) {
	if cfg.Leeway < 0 || cfg.Leeway > 5*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	method, key, err := parseVerifyKey(cfg.Algorithm, cfg.PublicKeyPEM)
	if err != nil {
		return nil, err
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Leeway > 0 {
		options = append(options, jwt.WithLeeway(cfg.Leeway))
	}
	if cfg.Now != nil {
		options = append(options, jwt.WithTimeFunc(cfg.Now))
	}

	return &Verifier{
		method: method,
		key:    key,
		issuer: strings.TrimSpace(cfg.Issuer),
		strict: cfg.StrictIssuer,
		parser: jwt.NewParser(options...),
	}, nil
}

// Algorithm returns the accepted signing algorithm.
func (v *Verifier) Algorithm() string {
	return v.method.Alg()
}

// ExtractCredential pulls the token out of an Authorization header value.
// Only the exact "Bearer <token>" form is accepted.
func ExtractCredential(header string) (string, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", ErrMissingCredential
	}
	token := header[len(bearerPrefix):]
	if token == "" || strings.ContainsAny(token, " \t\r\n") {
		return "", ErrMissingCredential
	}
	return token, nil
}

// Verify checks shape, signature, expiry and issuer of token, in that order of
// classification, and returns the caller identity.
func (v *Verifier) Verify(token string) (model.Identity, error) {
	if strings.Count(token, ".") != 2 {
		return model.Identity{}, fmt.Errorf("%w: token must have three segments", ErrMalformedCredential)
	}

	claims := &tokenClaims{}
	parsed, err := v.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != v.method.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return v.key, nil
	})
	if err != nil {
		return model.Identity{}, classify(err)
	}
	if !parsed.Valid {
		return model.Identity{}, ErrVerificationFailed
	}

	subject := claims.PreferredUsername
	if subject == "" {
		subject = claims.Subject
	}
	if subject == "" {
		return model.Identity{}, fmt.Errorf("%w: token has no subject", ErrVerificationFailed)
	}

	id := model.Identity{
		Subject:       subject,
		Roles:         normalizeRoles(claims.RealmAccess.Roles),
		Issuer:        claims.Issuer,
		IssuerMatched: v.issuer == "" || claims.Issuer == v.issuer,
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	if claims.IssuedAt != nil {
		id.IssuedAt = claims.IssuedAt.Time
	}

	if !id.IssuerMatched && v.strict {
		return model.Identity{}, fmt.Errorf("%w: expected %q, got %q", ErrIssuerMismatch, v.issuer, claims.Issuer)
	}
	return id, nil
}

// ExpectedIssuer returns the issuer tokens are compared against.
func (v *Verifier) ExpectedIssuer() string {
	return v.issuer
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformedCredential, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpiredCredential, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	default:
		return fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}
}

func normalizeRoles(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, r := range in {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}
