// Package config loads and persists the client configuration: the API token
// for JMAP and the username/app-password pair for CardDAV. Lookup order for
// every credential is environment, then the config file at
// ~/.config/fastmail-cli/config.toml, then the keyring.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/jmaptools/fastmail-cli/internal/apperr"
)

// Environment variables that override the config file.
const (
	EnvAPIToken    = "FASTMAIL_API_TOKEN"
	EnvUsername    = "FASTMAIL_USERNAME"
	EnvAppPassword = "FASTMAIL_APP_PASSWORD"
)

// Config mirrors the on-disk TOML layout.
type Config struct {
	Core     CoreConfig     `mapstructure:"core"`
	Contacts ContactsConfig `mapstructure:"contacts"`
}

// CoreConfig is the [core] section.
type CoreConfig struct {
	APIToken string `mapstructure:"api_token"`
}

// ContactsConfig is the [contacts] section. CardDAV needs an app password;
// API tokens do not work there.
type ContactsConfig struct {
	Username    string `mapstructure:"username"`
	AppPassword string `mapstructure:"app_password"`
}

// Store binds the parsed config file with the environment and keyring
// lookups.
type Store struct {
	path string
	cfg  Config
}

// DefaultPath returns the standard config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", apperr.Wrap(apperr.Config("cannot determine home directory"), err)
	}
	return filepath.Join(home, ".config", "fastmail-cli", "config.toml"), nil
}

// Load reads the config file at path. A missing file yields an empty
// configuration; a malformed one is a config error.
func Load(path string) (*Store, error) {
	s := &Store{path: path}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || os.IsNotExist(err) {
			return s, nil
		}
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			return s, nil
		}
		return nil, apperr.Wrap(apperr.Config(fmt.Sprintf("Failed to parse config: %v", err)), err)
	}

	if err := v.Unmarshal(&s.cfg); err != nil {
		return nil, apperr.Wrap(apperr.Config(fmt.Sprintf("Failed to parse config: %v", err)), err)
	}
	return s, nil
}

// Path returns the config file location backing this store.
func (s *Store) Path() string {
	return s.path
}

// Token returns the API token. Order: environment, config file, keyring.
// With no token anywhere the caller must authenticate first.
func (s *Store) Token() (string, error) {
	if token := os.Getenv(EnvAPIToken); token != "" {
		return token, nil
	}
	if s.cfg.Core.APIToken != "" {
		return s.cfg.Core.APIToken, nil
	}
	if token, err := tokenFromKeyring(s.keyringDir()); err == nil && token != "" {
		return token, nil
	}
	return "", apperr.NotAuthenticated()
}

// Username returns the CardDAV username from the environment or the
// [contacts] section.
func (s *Store) Username() (string, error) {
	if username := os.Getenv(EnvUsername); username != "" {
		return username, nil
	}
	if s.cfg.Contacts.Username != "" {
		return s.cfg.Contacts.Username, nil
	}
	return "", apperr.Config("Username not set in [contacts] config.")
}

// AppPassword returns the CardDAV app password from the environment or the
// [contacts] section.
func (s *Store) AppPassword() (string, error) {
	if password := os.Getenv(EnvAppPassword); password != "" {
		return password, nil
	}
	if s.cfg.Contacts.AppPassword != "" {
		return s.cfg.Contacts.AppPassword, nil
	}
	return "", apperr.Config("App password not set in [contacts] config.")
}

// SetToken stores the API token. With useKeyring it goes to the OS keychain
// and the file copy is cleared; otherwise it is written to the config file.
func (s *Store) SetToken(token string, useKeyring bool) error {
	if useKeyring {
		if err := storeTokenInKeyring(s.keyringDir(), token); err != nil {
			return err
		}
		s.cfg.Core.APIToken = ""
		return s.Save()
	}
	s.cfg.Core.APIToken = token
	return s.Save()
}

// SetContacts stores the CardDAV credentials in the config file.
func (s *Store) SetContacts(username, appPassword string) error {
	s.cfg.Contacts.Username = username
	s.cfg.Contacts.AppPassword = appPassword
	return s.Save()
}

// Save writes the config file, creating its directory with 0700 and the
// file itself with 0600. Credentials never get group or world bits.
func (s *Store) Save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return apperr.Wrap(apperr.Config(fmt.Sprintf("cannot create config directory: %v", err)), err)
	}
	if err := os.Chmod(dir, 0o700); err != nil {
		return apperr.Wrap(apperr.Config(fmt.Sprintf("cannot restrict config directory: %v", err)), err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.SetConfigPermissions(0o600)
	v.Set("core.api_token", s.cfg.Core.APIToken)
	v.Set("contacts.username", s.cfg.Contacts.Username)
	v.Set("contacts.app_password", s.cfg.Contacts.AppPassword)

	if err := v.WriteConfigAs(s.path); err != nil {
		return apperr.Wrap(apperr.Config(fmt.Sprintf("Failed to save config: %v", err)), err)
	}
	// WriteConfigAs honors the permission bits only on create.
	if err := os.Chmod(s.path, 0o600); err != nil {
		return apperr.Wrap(apperr.Config(fmt.Sprintf("cannot restrict config file: %v", err)), err)
	}
	return nil
}

func (s *Store) keyringDir() string {
	return filepath.Join(filepath.Dir(s.path), "keyring")
}
