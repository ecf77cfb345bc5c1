package tokenprovider

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	// DefaultIssuer is the token issuer and assertion audience used when none is configured.
	DefaultIssuer = "https://auth.gsingh.io"
	// DefaultScopes are requested when no scopes are configured.
	DefaultScopes = "openid profile email"

	// TokenPath is appended to the issuer to form the token endpoint.
	TokenPath = "/oauth/v2/token"
	// GrantTypeJWTBearer is the RFC 7523 grant type.
	GrantTypeJWTBearer = "urn:ietf:params:oauth:grant-type:jwt-bearer"

	// AssertionLifetime is the validity window of a signed assertion.
	AssertionLifetime = time.Hour
)

// KeyType is the credential shape declared by a key file.
type KeyType string

const (
	KeyTypeServiceAccount KeyType = "serviceaccount"
	KeyTypeApplication    KeyType = "application"
)

// Config is the configuration for getting a TokenProvider.
type Config struct {
	// Issuer is both the assertion audience and the base of the token endpoint.
	// Defaults to DefaultIssuer if empty.
	Issuer string
	// Scopes are sent space separated in the scope form field. Not validated.
	// Nil means DefaultScopes; an empty non-nil slice sends an empty scope.
	Scopes []string
}

// KeyRecord is a key file issued by the identity provider for a service
// account or an application. Subject fields are pointers since their
// presence, not their value, decides how the subject is resolved.
type KeyRecord struct {
	Type     string  `json:"type"`
	KeyID    string  `json:"keyId"`
	Key      string  `json:"key"`
	UserID   *string `json:"userId,omitempty"`
	ClientID *string `json:"clientId,omitempty"`
	AppID    *string `json:"appId,omitempty"`
}

// KeyType returns the declared type lower-cased, or "" if absent.
func (r *KeyRecord) KeyType() KeyType {
	return KeyType(strings.ToLower(r.Type))
}

// TokenResponse is the successful response body of the token endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	ExpiresIn   int64  `json:"expires_in,omitempty"`
}

// UnmarshalJSON requires access_token to be a string. token_type and
// expires_in are informational: values of an unexpected shape are dropped.
func (r *TokenResponse) UnmarshalJSON(data []byte) error {
	var raw struct {
		AccessToken string          `json:"access_token"`
		TokenType   json.RawMessage `json:"token_type"`
		ExpiresIn   json.RawMessage `json:"expires_in"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = TokenResponse{AccessToken: raw.AccessToken}
	if len(raw.TokenType) > 0 {
		_ = json.Unmarshal(raw.TokenType, &r.TokenType)
	}
	r.ExpiresIn = parseExpiresIn(raw.ExpiresIn)
	return nil
}

// parseExpiresIn accepts a JSON number or a numeric string, in seconds.
func parseExpiresIn(raw json.RawMessage) int64 {
	if len(raw) == 0 {
		return 0
	}
	var seconds float64
	if err := json.Unmarshal(raw, &seconds); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0
		}
		if seconds, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return 0
		}
	}
	if seconds <= 0 {
		return 0
	}
	return int64(seconds)
}

// Token converts the response into an oauth2.Token. issuedAt anchors the expiry.
func (r *TokenResponse) Token(issuedAt time.Time) *oauth2.Token {
	token := &oauth2.Token{
		AccessToken: r.AccessToken,
		TokenType:   r.TokenType,
	}
	if r.ExpiresIn > 0 {
		token.Expiry = issuedAt.Add(time.Duration(r.ExpiresIn) * time.Second)
	}
	return token
}
