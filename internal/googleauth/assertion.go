package googleauth

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
)

// assertionLifetime is the validity window Google expects on a JWT-bearer
// assertion: exp = iat + 3600s.
const assertionLifetime = time.Hour

// AssertionBuilder produces signed JWT-bearer assertions for a service
// account. Scope is the OAuth scope being requested; Audience is the token
// endpoint the assertion will be redeemed at.
type AssertionBuilder struct {
	Scope    string
	Audience string
}

// Build signs an RS256 compact JWS over the standard service-account claim
// set. The result is the unpadded base64url header.claims.signature string
// the token endpoint accepts as an assertion.
func (b AssertionBuilder) Build(key *ServiceAccountKey, now time.Time) (string, error) {
	rsaKey, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(key.PrivateKey))
	if err != nil {
		return "", errors.Wrap(err, "parse service account private key")
	}

	claims := jwt.MapClaims{
		"iss":   key.ClientEmail,
		"scope": b.Scope,
		"aud":   b.Audience,
		"iat":   now.Unix(),
		"exp":   now.Add(assertionLifetime).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(rsaKey)
	if err != nil {
		return "", errors.Wrap(err, "sign assertion")
	}
	return signed, nil
}
