package tokenprovider

import (
	"errors"
	"fmt"
)

var (
	// key file errors

	ErrFile           = errors.New("key file error")
	ErrParse          = errors.New("parse error")
	ErrMissingField   = errors.New("missing required field")
	ErrUnknownKeyType = errors.New("unknown key type")

	// assertion errors

	ErrSigning = errors.New("signing error")

	// transport errors

	ErrTokenExchange    = errors.New("token exchange failed")
	ErrNetwork          = errors.New("network error")
	ErrUnexpectedStatus = errors.New("unexpected response status")
)

// TokenExchangeError is returned when the token endpoint answers with a
// status other than 200. Body holds the raw response body.
type TokenExchangeError struct {
	StatusCode int
	Body       string
}

func (e *TokenExchangeError) Error() string {
	return fmt.Sprintf("token exchange failed with status %d: %s", e.StatusCode, e.Body)
}

// Is makes errors.Is(err, ErrTokenExchange) match.
func (e *TokenExchangeError) Is(target error) bool {
	return target == ErrTokenExchange
}
