package googleauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// GrantType is the OAuth2 JWT-bearer grant type identifier.
const GrantType = "urn:ietf:params:oauth:grant-type:jwt-bearer"

var tracer = otel.Tracer("prodsheet/server/internal/googleauth")

// TokenError is a rejection from the token endpoint: either a non-success
// status or a success response without an access token.
type TokenError struct {
	Status      int
	Description string
}

func (e *TokenError) Error() string {
	return e.Description
}

// TokenExchanger redeems signed assertions for bearer access tokens.
type TokenExchanger struct {
	tokenURL string
	client   *http.Client
}

// NewTokenExchanger creates an exchanger for the given token endpoint.
func NewTokenExchanger(tokenURL string) *TokenExchanger {
	return &TokenExchanger{
		tokenURL: tokenURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Exchange POSTs the assertion to the token endpoint and returns the access
// token. A single attempt, no retries: a rejected assertion will not become
// valid by asking again.
func (x *TokenExchanger) Exchange(ctx context.Context, assertion string) (string, error) {
	ctx, span := tracer.Start(ctx, "oauth.token_exchange", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	data := url.Values{}
	data.Set("grant_type", GrantType)
	data.Set("assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, "POST", x.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", errors.Wrap(err, "create token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := x.client.Do(req)
	if err != nil {
		span.RecordError(err)
		return "", errors.Wrap(err, "token endpoint request")
	}
	defer resp.Body.Close()

	var tokenResp struct {
		AccessToken      string `json:"access_token"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", errors.Wrap(err, "decode token response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		desc := tokenResp.ErrorDescription
		if desc == "" {
			desc = tokenResp.Error
		}
		if desc == "" {
			desc = http.StatusText(resp.StatusCode)
		}
		terr := &TokenError{Status: resp.StatusCode, Description: desc}
		span.RecordError(terr)
		return "", terr
	}

	if tokenResp.AccessToken == "" {
		return "", &TokenError{Status: resp.StatusCode, Description: "token endpoint returned no access_token"}
	}
	return tokenResp.AccessToken, nil
}
