/*
Package tokenprovider exchanges identity provider key files for OAuth access
tokens using the JWT bearer grant (RFC 7523), and makes calls authorized by
the resulting token.
*/
package tokenprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

// jwtBearerSource implements tokenSource for key file authentication.
type jwtBearerSource struct {
	record   *KeyRecord
	issuer   string
	tokenURL string
	scopes   []string
}

// NewJwtBearerAccessTokenProvider returns a token provider that signs an
// assertion with the key in record and exchanges it at the issuer's token
// endpoint. The HTTP client is taken from the context passed to GetToken
// (see oauth2.HTTPClient), falling back to http.DefaultClient.
func NewJwtBearerAccessTokenProvider(cfg Config, record *KeyRecord) (TokenProvider, error) {
	if record == nil {
		return nil, fmt.Errorf("key record cannot be nil")
	}

	scopes := cfg.Scopes
	if scopes == nil {
		scopes = strings.Fields(DefaultScopes)
	}

	issuer := cfg.Issuer
	if issuer == "" {
		issuer = DefaultIssuer
	}
	if _, err := url.ParseRequestURI(issuer); err != nil {
		return nil, fmt.Errorf("invalid issuer URL: %w", err)
	}

	return &tokenProviderImpl{
		tokenSource: &jwtBearerSource{
			record:   record,
			issuer:   issuer,
			tokenURL: strings.TrimSuffix(issuer, "/") + TokenPath,
			scopes:   scopes,
		},
	}, nil
}

// getToken signs a fresh assertion and exchanges it for an access token.
func (source *jwtBearerSource) getToken(ctx context.Context) (*oauth2.Token, error) {
	assertion, err := SignAssertion(source.record, source.issuer)
	if err != nil {
		return nil, err
	}

	tokenResp, err := exchangeAssertion(ctx, source.tokenURL, assertion, source.scopes)
	if err != nil {
		return nil, err
	}
	return tokenResp.Token(timeNow()), nil
}

func exchangeAssertion(ctx context.Context, tokenURL, assertion string, scopes []string) (*TokenResponse, error) {
	form := url.Values{
		"grant_type": {GrantTypeJWTBearer},
		"assertion":  {assertion},
		"scope":      {strings.Join(scopes, " ")},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	httpClient := oauth2.NewClient(ctx, nil)
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: token request failed: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	// The body is needed for both the error and the success case
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read token response: %w", ErrNetwork, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &TokenExchangeError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: failed to decode token response: invalid JSON: %s", ErrParse, string(body))
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode token response: %w", ErrParse, err)
	}
	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("%w: token response missing access_token", ErrParse)
	}

	return &tokenResp, nil
}
