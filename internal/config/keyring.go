package config

import (
	"fmt"

	"github.com/99designs/keyring"
)

const (
	keyringService  = "fastmail-cli"
	keyringTokenKey = "api_token"
)

func openKeyring(fileDir string) (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: keyringService,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.FileBackend,
		},
		FileDir:          fileDir,
		FilePasswordFunc: keyring.FixedStringPrompt(keyringService),
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring %q: %w", keyringService, err)
	}
	return ring, nil
}

func tokenFromKeyring(fileDir string) (string, error) {
	ring, err := openKeyring(fileDir)
	if err != nil {
		return "", err
	}
	item, err := ring.Get(keyringTokenKey)
	if err != nil {
		return "", fmt.Errorf("getting %q from keyring: %w", keyringTokenKey, err)
	}
	return string(item.Data), nil
}

func storeTokenInKeyring(fileDir, token string) error {
	ring, err := openKeyring(fileDir)
	if err != nil {
		return err
	}
	if err := ring.Set(keyring.Item{
		Key:   keyringTokenKey,
		Label: "Fastmail API token",
		Data:  []byte(token),
	}); err != nil {
		return fmt.Errorf("storing %q in keyring: %w", keyringTokenKey, err)
	}
	return nil
}
