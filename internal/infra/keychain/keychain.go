package keychain

import (
	"errors"

	"github.com/zalando/go-keyring"
)

const DefaultService = "voice-relay"

// Get retrieves a secret from the system keychain. A missing entry yields
// "" with no error.
func Get(service, account string) (string, error) {
	secret, err := keyring.Get(service, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	return secret, err
}

// Set stores a secret in the system keychain.
func Set(service, account, value string) error {
	return keyring.Set(service, account, value)
}
