package tokenprovider

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// timeNow makes it possible to test usage of time
	timeNow = time.Now
)

// SignAssertion builds the JWT-bearer assertion for record and signs it with
// RS256 using the key's PEM private key. The audience is the issuer.
func SignAssertion(record *KeyRecord, issuer string) (string, error) {
	if record == nil {
		return "", fmt.Errorf("key record cannot be nil")
	}
	subject, err := ResolveSubject(record)
	if err != nil {
		return "", err
	}
	if record.KeyID == "" {
		return "", fmt.Errorf("%w: key file missing 'keyId' field", ErrMissingField)
	}
	if record.Key == "" {
		return "", fmt.Errorf("%w: empty private key in 'key' field", ErrSigning)
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(record.Key))
	if err != nil {
		return "", fmt.Errorf("%w: failed to parse RSA private key: %w", ErrSigning, err)
	}

	now := timeNow().Unix()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss": subject,
		"sub": subject,
		"aud": issuer,
		"iat": now,
		"exp": now + int64(AssertionLifetime/time.Second),
	})
	token.Header["kid"] = record.KeyID

	signed, err := token.SignedString(privateKey)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSigning, err)
	}
	return signed, nil
}
