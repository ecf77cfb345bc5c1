package tokenprovider

import (
	"errors"
	"fmt"

	"github.com/grafana/zitadel-token-go/pkg/utils"
)

// LoadKeyFile reads a service account or application key file.
func LoadKeyFile(path string) (*KeyRecord, error) {
	var record KeyRecord
	if err := utils.ReadJSONFile(path, &record); err != nil {
		if errors.Is(err, utils.ErrReadFile) {
			return nil, fmt.Errorf("%w: %w", ErrFile, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return &record, nil
}

// ResolveSubject returns the identifier used as both iss and sub of the
// assertion. A declared type requires its own field. Without a recognized
// type clientId wins over userId.
func ResolveSubject(record *KeyRecord) (string, error) {
	if record == nil {
		return "", fmt.Errorf("key record cannot be nil")
	}
	switch record.KeyType() {
	case KeyTypeApplication:
		if record.ClientID == nil {
			return "", fmt.Errorf("%w: application key missing 'clientId' field", ErrMissingField)
		}
		return *record.ClientID, nil
	case KeyTypeServiceAccount:
		if record.UserID == nil {
			return "", fmt.Errorf("%w: service account key missing 'userId' field", ErrMissingField)
		}
		return *record.UserID, nil
	}

	if record.ClientID != nil {
		return *record.ClientID, nil
	}
	if record.UserID != nil {
		return *record.UserID, nil
	}
	return "", fmt.Errorf("%w '%s' and cannot auto-detect, expected '%s' or '%s'",
		ErrUnknownKeyType, record.Type, KeyTypeServiceAccount, KeyTypeApplication)
}
