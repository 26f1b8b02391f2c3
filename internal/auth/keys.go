package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// parseVerifyKey resolves the configured algorithm and parses pemBytes into the
// matching public key type. Only asymmetric algorithms are accepted.
func parseVerifyKey(alg string, pemBytes []byte) (jwt.SigningMethod, any, error) {
	alg = strings.TrimSpace(alg)
	if alg == "" {
		alg = jwt.SigningMethodRS256.Alg()
	}
	if len(pemBytes) == 0 {
		return nil, nil, errors.New("public key is required")
	}

	method := jwt.GetSigningMethod(alg)
	if method == nil {
		return nil, nil, fmt.Errorf("unsupported signing algorithm %q", alg)
	}

	var (
		key any
		err error
	)
	switch method.(type) {
	case *jwt.SigningMethodRSA, *jwt.SigningMethodRSAPSS:
		key, err = jwt.ParseRSAPublicKeyFromPEM(pemBytes)
	case *jwt.SigningMethodECDSA:
		key, err = jwt.ParseECPublicKeyFromPEM(pemBytes)
	case *jwt.SigningMethodEd25519:
		key, err = jwt.ParseEdPublicKeyFromPEM(pemBytes)
	default:
		return nil, nil, fmt.Errorf("signing algorithm %q is not asymmetric", alg)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("invalid %s public key: %w", alg, err)
	}
	return method, key, nil
}
