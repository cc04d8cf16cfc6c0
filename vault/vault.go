package vault

import (
	"errors"
	"fmt"

	"github.com/fnmock/fnmock/deferred"
	"github.com/fnmock/fnmock/internal/jsval"
)

// ErrInvalidKey is returned when a key is not a non-empty string.
var ErrInvalidKey = errors.New("non-empty string required")

// KeyError is the rejection for an invalid key. Handlers observe its message as a
// plain string.
type KeyError struct {
	Key any
}

// Error implements error.
func (e *KeyError) Error() string {
	return fmt.Sprintf("Invalid key [%s], %s", jsval.String(e.Key), ErrInvalidKey)
}

// Unwrap returns ErrInvalidKey.
func (e *KeyError) Unwrap() error { return ErrInvalidKey }

// RejectionValue implements deferred.Rejection.
func (e *KeyError) RejectionValue() any { return e.Error() }

// Config configures a Vault.
type Config struct {
	// Secrets maps keys to the secrets returned for them.
	Secrets map[string]string
}

// Vault resolves secrets by key.
type Vault struct {
	secrets map[string]string

	// Calls records every requested key.
	Calls []any
}

// New creates a Vault holding a copy of the configured secrets.
func New(cfg Config) *Vault {
	v := &Vault{secrets: make(map[string]string, len(cfg.Secrets)), Calls: []any{}}
	for k, s := range cfg.Secrets {
		v.secrets[k] = s
	}
	return v
}

// Get resolves the secret stored under key, or key itself when none is configured.
func (v *Vault) Get(key any) *deferred.Deferred {
	v.Calls = append(v.Calls, key)
	k, ok := key.(string)
	if !ok || k == "" {
		return deferred.Reject(&KeyError{Key: key})
	}
	if secret, ok := v.secrets[k]; ok {
		return deferred.Resolve(secret)
	}
	return deferred.Resolve(k)
}

// SetSecrets replaces the configured secrets.
func (v *Vault) SetSecrets(secrets map[string]string) {
	v.secrets = make(map[string]string, len(secrets))
	for k, s := range secrets {
		v.secrets[k] = s
	}
}
