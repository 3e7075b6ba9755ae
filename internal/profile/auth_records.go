package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/tmeckel/az-cli/internal/config"
	"go.uber.org/zap"
)

const authRecordsFileName = "authRecords.json"

// AuthRecordStore keeps the authentication records of user accounts. A record identifies the
// account in the persistent MSAL cache so tokens can be refreshed without signing in again.
type AuthRecordStore struct {
	path    string
	mu      sync.Mutex
	loaded  bool
	records map[string]azidentity.AuthenticationRecord
}

func NewAuthRecordStore(path string) *AuthRecordStore {
	return &AuthRecordStore{path: path}
}

func (s *AuthRecordStore) load() error {
	if s.loaded {
		return nil
	}
	s.records = map[string]azidentity.AuthenticationRecord{}
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.loaded = true
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, &s.records); err != nil {
		zap.L().Sugar().Debugf("ignoring unreadable authentication records %s: %v", s.path, err)
		s.records = map[string]azidentity.AuthenticationRecord{}
	}
	s.loaded = true
	return nil
}

func (s *AuthRecordStore) save() error {
	b, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return err
	}
	if err := config.AtomicWriteFile(s.path, b); err != nil {
		return fmt.Errorf("failed to save authentication records: %w", err)
	}
	return nil
}

// Get returns the record of userName. A nil store has no records.
func (s *AuthRecordStore) Get(userName string) (azidentity.AuthenticationRecord, bool) {
	if s == nil {
		return azidentity.AuthenticationRecord{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		zap.L().Sugar().Debugf("failed to read authentication records: %v", err)
		return azidentity.AuthenticationRecord{}, false
	}
	r, ok := s.records[strings.ToLower(userName)]
	return r, ok
}

func (s *AuthRecordStore) Put(userName string, record azidentity.AuthenticationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}
	s.records[strings.ToLower(userName)] = record
	return s.save()
}

func (s *AuthRecordStore) Remove(userName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}
	key := strings.ToLower(userName)
	if _, ok := s.records[key]; !ok {
		return nil
	}
	delete(s.records, key)
	return s.save()
}

func (s *AuthRecordStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = map[string]azidentity.AuthenticationRecord{}
	s.loaded = true
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
