// Package settings stores user settings in the data directory, with
// sensitive values encrypted under a machine-local key.
package settings

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	settingsFile = "settings.json"
	keyFile      = ".encryption_key"

	adsKeySetting = "ads_api_key_encrypted"
)

// ErrCorruptValue is returned when an encrypted value cannot be
// decrypted, usually because the key file was replaced.
var ErrCorruptValue = errors.New("encrypted value cannot be decrypted")

// Store reads and writes settings under a data directory.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dataDir. The directory is created
// on first write.
func NewStore(dataDir string) *Store {
	return &Store{dir: dataDir}
}

// ADSAPIKey returns the decrypted ADS API key, or "" if none is set.
func (s *Store) ADSAPIKey() (string, error) {
	data, err := s.load()
	if err != nil {
		return "", err
	}
	encrypted, ok := data[adsKeySetting]
	if !ok || encrypted == "" {
		return "", nil
	}
	return s.decrypt(encrypted)
}

// SetADSAPIKey encrypts and stores the ADS API key. An empty key
// removes the stored value.
func (s *Store) SetADSAPIKey(apiKey string) error {
	data, err := s.load()
	if err != nil {
		return err
	}
	if apiKey == "" {
		delete(data, adsKeySetting)
	} else {
		encrypted, err := s.encrypt(apiKey)
		if err != nil {
			return err
		}
		data[adsKeySetting] = encrypted
	}
	return s.save(data)
}

// HasADSAPIKey reports whether an ADS API key is configured.
func (s *Store) HasADSAPIKey() (bool, error) {
	key, err := s.ADSAPIKey()
	if err != nil {
		if errors.Is(err, ErrCorruptValue) {
			return false, nil
		}
		return false, err
	}
	return key != "", nil
}

// Get returns a non-sensitive setting, or "" if unset.
func (s *Store) Get(key string) (string, error) {
	data, err := s.load()
	if err != nil {
		return "", err
	}
	return data[key], nil
}

// Set stores a non-sensitive setting.
func (s *Store) Set(key, value string) error {
	data, err := s.load()
	if err != nil {
		return err
	}
	data[key] = value
	return s.save(data)
}

// Delete removes a setting.
func (s *Store) Delete(key string) error {
	data, err := s.load()
	if err != nil {
		return err
	}
	delete(data, key)
	return s.save(data)
}

// MaskKey renders an API key for display, keeping only the last four
// characters.
func MaskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}

func (s *Store) load() (map[string]string, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, settingsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	data := map[string]string{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}
	return data, nil
}

func (s *Store) save(data map[string]string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(s.dir, settingsFile), raw, 0o644); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	return nil
}

// encryptionKey returns the machine-local key, generating one on first
// use. The key file is owner-only.
func (s *Store) encryptionKey() ([]byte, error) {
	path := filepath.Join(s.dir, keyFile)
	key, err := os.ReadFile(path)
	if err == nil {
		if len(key) != chacha20poly1305.KeySize {
			return nil, fmt.Errorf("encryption key file %s has wrong size", path)
		}
		return key, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading encryption key: %w", err)
	}

	key = make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generating encryption key: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, fmt.Errorf("writing encryption key: %w", err)
	}
	return key, nil
}

func (s *Store) encrypt(plaintext string) (string, error) {
	key, err := s.encryptionKey()
	if err != nil {
		return "", err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.URLEncoding.EncodeToString(sealed), nil
}

func (s *Store) decrypt(encoded string) (string, error) {
	key, err := s.encryptionKey()
	if err != nil {
		return "", err
	}
	sealed, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrCorruptValue
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", err
	}
	if len(sealed) < aead.NonceSize() {
		return "", ErrCorruptValue
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrCorruptValue
	}
	return string(plaintext), nil
}
