package tokenprovider

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
)

// CallResult is the outcome of an authorized call.
type CallResult struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the call returned a 2xx status.
func (r *CallResult) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// CallWithToken sends a GET to target with the access token of token as a
// bearer credential. Non-2xx responses are returned, not treated as errors.
func CallWithToken(ctx context.Context, target string, token *oauth2.Token) (*CallResult, error) {
	if token == nil || token.AccessToken == "" {
		return nil, fmt.Errorf("access token is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Always present the token as a bearer token, whatever type the issuer reported
	bearer := &oauth2.Token{AccessToken: token.AccessToken, TokenType: "Bearer"}
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(bearer))

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request to %s failed: %w", ErrNetwork, target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response from %s: %w", ErrNetwork, target, err)
	}

	return &CallResult{StatusCode: resp.StatusCode, Body: body}, nil
}
