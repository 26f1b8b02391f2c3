package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"docgate/internal/auth"
	"docgate/internal/model"
)

// IdentityLocalKey is the Fiber locals key holding the verified model.Identity.
const IdentityLocalKey = "identity"

// TokenVerifier turns a raw bearer token into an identity.
type TokenVerifier interface {
	Verify(token string) (model.Identity, error)
}

// AuthObserver is told about every rejected credential.
type AuthObserver interface {
	AuthFailed(reason string)
}

// Authenticate requires a valid bearer token. On success the identity is
// stored under IdentityLocalKey; on failure the classified auth error is
// returned for the app ErrorHandler to render. obs may be nil.
func Authenticate(v TokenVerifier, log zerolog.Logger, obs AuthObserver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		who, err := verifyRequest(v, c.Get(fiber.HeaderAuthorization))
		if err != nil {
			reason := FailureReason(err)
			log.Warn().
				Str("request_id", RequestIDFromCtx(c)).
				Str("reason", reason).
				Str("path", c.Path()).
				Msg("credential rejected")
			if obs != nil {
				obs.AuthFailed(reason)
			}
			return err
		}

		if !who.IssuerMatched {
			log.Warn().
				Str("request_id", RequestIDFromCtx(c)).
				Str("subject", who.Subject).
				Str("issuer", who.Issuer).
				Msg("token issuer does not match the expected issuer")
		}

		c.Locals(IdentityLocalKey, who)
		return c.Next()
	}
}

func verifyRequest(v TokenVerifier, header string) (model.Identity, error) {
	token, err := auth.ExtractCredential(header)
	if err != nil {
		return model.Identity{}, err
	}
	return v.Verify(token)
}

// IdentityFromCtx returns the identity stored by Authenticate.
func IdentityFromCtx(c *fiber.Ctx) (model.Identity, bool) {
	who, ok := c.Locals(IdentityLocalKey).(model.Identity)
	return who, ok
}

// FailureReason names an auth error for logs and metrics.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrMissingCredential):
		return "missing_credential"
	case errors.Is(err, auth.ErrMalformedCredential):
		return "malformed_credential"
	case errors.Is(err, auth.ErrExpiredCredential):
		return "expired_credential"
	case errors.Is(err, auth.ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, auth.ErrIssuerMismatch):
		return "issuer_mismatch"
	default:
		return "verification_failed"
	}
}
