package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

// Secrets live in the OS keyring under one service. Each ref holds a small
// JSON document so a session token can travel with the key.
const keyringService = "envshim"

var ErrEmptyRef = errors.New("storage: empty secret ref")

type keyringEntry struct {
	Secret string `json:"secret"`
	Token  string `json:"token,omitempty"`
}

// SaveSecret stores the S3 secret access key (and optional session token)
// under ref, replacing any previous value.
func SaveSecret(ref, secretKey, sessionToken string) error {
	ref, secretKey = strings.TrimSpace(ref), strings.TrimSpace(secretKey)
	switch {
	case ref == "":
		return ErrEmptyRef
	case secretKey == "":
		return errors.New("storage: empty secret")
	}
	raw, err := json.Marshal(keyringEntry{Secret: secretKey, Token: strings.TrimSpace(sessionToken)})
	if err != nil {
		return err
	}
	if err := keyring.Set(keyringService, ref, string(raw)); err != nil {
		return fmt.Errorf("keyring set %s: %w", ref, err)
	}
	return nil
}

// LoadSecret reports ok=false when nothing usable is stored under ref.
func LoadSecret(ref string) (secretKey, sessionToken string, ok bool, err error) {
	ref = strings.TrimSpace(ref)
	raw, err := keyring.Get(keyringService, ref)
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		return "", "", false, nil
	case err != nil:
		return "", "", false, fmt.Errorf("keyring get %s: %w", ref, err)
	case strings.TrimSpace(raw) == "":
		return "", "", false, nil
	}

	var e keyringEntry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return "", "", false, fmt.Errorf("keyring entry %s: %w", ref, err)
	}
	if strings.TrimSpace(e.Secret) == "" {
		return "", "", false, nil
	}
	return e.Secret, e.Token, true, nil
}

// DeleteSecret is a no-op for refs that were never stored.
func DeleteSecret(ref string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil
	}
	if err := keyring.Delete(keyringService, ref); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keyring delete %s: %w", ref, err)
	}
	return nil
}
