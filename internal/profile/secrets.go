package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tmeckel/az-cli/internal/config"
	"github.com/zalando/go-keyring"
	"go.uber.org/zap"
)

const secretsFileName = "service_principal_entries.json"

var ErrSecretNotFound = errors.New("secret not found")

// SecretStore keeps service principal secrets.
type SecretStore interface {
	Get(tenantID, clientID string) (string, error)
	// Set stores secret in the OS keyring. When the keyring is unavailable, or insecure is true,
	// the secret is written to a file in the configuration directory instead.
	Set(tenantID, clientID, secret string, insecure bool) error
	Delete(tenantID, clientID string) error
}

type secretEntry struct {
	ClientID     string `json:"client_id"`
	TenantID     string `json:"tenant"`
	ClientSecret string `json:"client_secret"`
}

type secretStore struct {
	path string
	mu   sync.Mutex
}

func NewSecretStore(dir string) SecretStore {
	return &secretStore{path: filepath.Join(dir, secretsFileName)}
}

func keyringServiceName(tenantID string) string {
	return "az:" + strings.ToLower(tenantID)
}

func (s *secretStore) Get(tenantID, clientID string) (string, error) {
	secret, err := keyring.Get(keyringServiceName(tenantID), clientID)
	if err == nil {
		return secret, nil
	}
	if !errors.Is(err, keyring.ErrNotFound) {
		zap.L().Sugar().Debugf("keyring unavailable, falling back to %s: %v", s.path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.read()
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if e.matches(tenantID, clientID) {
			return e.ClientSecret, nil
		}
	}
	return "", fmt.Errorf("%w for %s in tenant %s", ErrSecretNotFound, clientID, tenantID)
}

func (s *secretStore) Set(tenantID, clientID, secret string, insecure bool) error {
	if !insecure {
		err := keyring.Set(keyringServiceName(tenantID), clientID, secret)
		if err == nil {
			return s.removeEntry(tenantID, clientID)
		}
		zap.L().Sugar().Warnf("failed to store secret in the keyring, storing it in %s: %v", s.path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.read()
	if err != nil {
		return err
	}
	entries = deleteEntry(entries, tenantID, clientID)
	entries = append(entries, secretEntry{ClientID: clientID, TenantID: tenantID, ClientSecret: secret})
	return s.write(entries)
}

func (s *secretStore) Delete(tenantID, clientID string) error {
	err := keyring.Delete(keyringServiceName(tenantID), clientID)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		zap.L().Sugar().Debugf("failed to delete secret from keyring: %v", err)
	}
	return s.removeEntry(tenantID, clientID)
}

func (s *secretStore) removeEntry(tenantID, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.read()
	if err != nil {
		return err
	}
	kept := deleteEntry(entries, tenantID, clientID)
	if len(kept) == len(entries) {
		return nil
	}
	return s.write(kept)
}

func (e secretEntry) matches(tenantID, clientID string) bool {
	return strings.EqualFold(e.TenantID, tenantID) && e.ClientID == clientID
}

func deleteEntry(entries []secretEntry, tenantID, clientID string) []secretEntry {
	kept := []secretEntry{}
	for _, e := range entries {
		if !e.matches(tenantID, clientID) {
			kept = append(kept, e)
		}
	}
	return kept
}

func (s *secretStore) read() ([]secretEntry, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []secretEntry{}, nil
	}
	if err != nil {
		return nil, err
	}
	var entries []secretEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	return entries, nil
}

func (s *secretStore) write(entries []secretEntry) error {
	b, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return config.AtomicWriteFile(s.path, b)
}
