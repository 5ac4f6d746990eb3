// Package googleauth implements the service-account side of the OAuth2
// JWT-bearer grant: parsing the service-account key blob, building the signed
// RS256 assertion, and exchanging it for a short-lived access token.
//
// Tokens are never cached: every caller performs its own full sign-and-exchange
// cycle.
package googleauth

import (
	"encoding/json"

	"github.com/go-faster/errors"
)

// ServiceAccountKey is the subset of a Google service-account JSON key the
// relay needs. The private key is PEM-encoded PKCS8. The struct is never
// persisted or logged.
type ServiceAccountKey struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
}

// ParseServiceAccountKey parses a service-account key blob and verifies that
// both required fields are present.
func ParseServiceAccountKey(blob []byte) (*ServiceAccountKey, error) {
	var key ServiceAccountKey
	if err := json.Unmarshal(blob, &key); err != nil {
		return nil, errors.Wrap(err, "parse service account key")
	}
	if key.ClientEmail == "" {
		return nil, errors.New("service account key missing client_email")
	}
	if key.PrivateKey == "" {
		return nil, errors.New("service account key missing private_key")
	}
	return &key, nil
}
