package model

import "time"

// Identity is the verified caller of a single request. It is built once by the
// token verifier and passed by value; nothing downstream re-reads raw claims.
type Identity struct {
	Subject   string    `json:"subject"`
	Roles     []string  `json:"roles"`
	Issuer    string    `json:"issuer"`
	ExpiresAt time.Time `json:"expiresAt"`
	IssuedAt  time.Time `json:"issuedAt"`

	// IssuerMatched is false when the verifier runs in report-only issuer mode
	// and the token came from a different issuer.
	IssuerMatched bool `json:"-"`
}

// HasRole reports whether role is among the identity's roles.
func (i Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}
