// Package profile keeps the accounts az is logged in with: the subscriptions they can access, the
// default subscription, service principal secrets and cached access tokens.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/tmeckel/az-cli/internal/config"
	"go.uber.org/zap"
)

const (
	profileFileName = "azureProfile.json"

	UserTypeUser             = "user"
	UserTypeServicePrincipal = "servicePrincipal"

	// AssignedIdentity marks accounts that log in with a managed identity. The user name then holds
	// the kind of identity, the client id is kept in AssignedIdentityInfo.
	AssignedIdentitySystem = "systemAssignedIdentity"
	AssignedIdentityUser   = "userAssignedIdentity"

	StateEnabled = "Enabled"

	// TenantLevelAccountName is used for tenants without subscriptions when logging in with
	// --allow-no-subscriptions.
	TenantLevelAccountName = "N/A(tenant level account)"
)

var ErrNotLoggedIn = errors.New("not logged in")

// ErrNoDefaultSubscription is returned when subscriptions exist but none is marked as default.
var ErrNoDefaultSubscription = errors.New("no default subscription")

type SubscriptionNotFoundError struct {
	NameOrID string
}

func (e *SubscriptionNotFoundError) Error() string {
	return fmt.Sprintf("subscription %q not found", e.NameOrID)
}

type UserNotFoundError struct {
	Name string
}

func (e *UserNotFoundError) Error() string {
	return fmt.Sprintf("account %q is not logged in", e.Name)
}

type User struct {
	Name                 string `json:"name"`
	Type                 string `json:"type"`
	AssignedIdentityInfo string `json:"assignedIdentityInfo,omitempty"`
}

type ManagedByTenant struct {
	TenantID string `json:"tenantId"`
}

type Subscription struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	State            string            `json:"state"`
	TenantID         string            `json:"tenantId"`
	HomeTenantID     string            `json:"homeTenantId,omitempty"`
	IsDefault        bool              `json:"isDefault"`
	EnvironmentName  string            `json:"environmentName"`
	User             User              `json:"user"`
	ManagedByTenants []ManagedByTenant `json:"managedByTenants"`
}

// IsTenantLevel reports whether the entry stands for a tenant without subscriptions.
func (s Subscription) IsTenantLevel() bool {
	return s.Name == TenantLevelAccountName
}

func (s Subscription) sameAccount(o Subscription) bool {
	return strings.EqualFold(s.ID, o.ID) && strings.EqualFold(s.TenantID, o.TenantID)
}

// Store is the persisted profile.
type Store interface {
	InstallationID() string
	Subscriptions() []Subscription
	Default() (Subscription, error)
	Find(nameOrID string) (Subscription, error)
	SetDefault(nameOrID string) (Subscription, error)
	Replace(user User, subs []Subscription) error
	Logout(userName string) error
	Clear() error
	Save() error
	Secrets() SecretStore
	Tokens() *TokenCache
	AuthRecords() *AuthRecordStore
}

type profileData struct {
	InstallationID string         `json:"installationId"`
	Subscriptions  []Subscription `json:"subscriptions"`
}

// Profile is the file based Store. Reads happen once on Load; every Save rewrites the whole file.
type Profile struct {
	dir     string
	mu      sync.RWMutex
	data    profileData
	secrets SecretStore
	tokens  *TokenCache
	records *AuthRecordStore
}

// Load reads the profile stored in dir. A missing file yields an empty profile.
func Load(dir string) (*Profile, error) {
	p := &Profile{
		dir:     dir,
		secrets: NewSecretStore(dir),
		tokens:  NewTokenCache(filepath.Join(dir, tokenCacheFileName)),
		records: NewAuthRecordStore(filepath.Join(dir, authRecordsFileName)),
	}
	b, err := os.ReadFile(p.path())
	switch {
	case errors.Is(err, os.ErrNotExist):
		zap.L().Sugar().Debugf("no profile found at %s", p.path())
	case err != nil:
		return nil, fmt.Errorf("failed to read profile: %w", err)
	default:
		// files written by other tools may start with a BOM
		b = []byte(strings.TrimPrefix(string(b), "\ufeff"))
		if err := json.Unmarshal(b, &p.data); err != nil {
			return nil, fmt.Errorf("failed to parse profile %s: %w", p.path(), err)
		}
	}
	if p.data.InstallationID == "" {
		p.data.InstallationID = uuid.NewString()
	}
	if p.data.Subscriptions == nil {
		p.data.Subscriptions = []Subscription{}
	}
	return p, nil
}

func (p *Profile) path() string {
	return filepath.Join(p.dir, profileFileName)
}

func (p *Profile) InstallationID() string {
	return p.data.InstallationID
}

func (p *Profile) Secrets() SecretStore {
	return p.secrets
}

func (p *Profile) Tokens() *TokenCache {
	return p.tokens
}

func (p *Profile) AuthRecords() *AuthRecordStore {
	return p.records
}

func (p *Profile) Subscriptions() []Subscription {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Subscription(nil), p.data.Subscriptions...)
}

func (p *Profile) Default() (Subscription, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.data.Subscriptions) == 0 {
		return Subscription{}, ErrNotLoggedIn
	}
	for _, s := range p.data.Subscriptions {
		if s.IsDefault {
			return s, nil
		}
	}
	return Subscription{}, ErrNoDefaultSubscription
}

// Find looks a subscription up by id or name, ignoring case. Ids win over names.
func (p *Profile) Find(nameOrID string) (Subscription, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	i, err := p.find(nameOrID)
	if err != nil {
		return Subscription{}, err
	}
	return p.data.Subscriptions[i], nil
}

func (p *Profile) find(nameOrID string) (int, error) {
	if len(p.data.Subscriptions) == 0 {
		return -1, ErrNotLoggedIn
	}
	key := strings.TrimSpace(nameOrID)
	for i, s := range p.data.Subscriptions {
		if strings.EqualFold(s.ID, key) {
			return i, nil
		}
	}
	for i, s := range p.data.Subscriptions {
		if strings.EqualFold(s.Name, key) {
			return i, nil
		}
	}
	return -1, &SubscriptionNotFoundError{NameOrID: nameOrID}
}

// SetDefault marks the matching subscription as default. The change is not saved.
func (p *Profile) SetDefault(nameOrID string) (Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i, err := p.find(nameOrID)
	if err != nil {
		return Subscription{}, err
	}
	for j := range p.data.Subscriptions {
		p.data.Subscriptions[j].IsDefault = i == j
	}
	return p.data.Subscriptions[i], nil
}

// Replace stores the subscriptions found for user, dropping the ones previously stored for the
// same user. The previous default stays default when it is still present; otherwise the first of
// subs becomes the default.
func (p *Profile) Replace(user User, subs []Subscription) error {
	if len(subs) == 0 {
		return fmt.Errorf("no subscriptions found for %s", user.Name)
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	var previous *Subscription
	kept := []Subscription{}
	for _, s := range p.data.Subscriptions {
		if s.IsDefault {
			s := s
			previous = &s
		}
		if strings.EqualFold(s.User.Name, user.Name) && s.User.Type == user.Type {
			continue
		}
		kept = append(kept, s)
	}
	for _, s := range subs {
		s.User = user
		s.IsDefault = false
		if s.ManagedByTenants == nil {
			s.ManagedByTenants = []ManagedByTenant{}
		}
		kept = lo.Reject(kept, func(k Subscription, _ int) bool { return k.sameAccount(s) })
		kept = append(kept, s)
	}

	def := -1
	if previous != nil {
		for i, s := range kept {
			if s.sameAccount(*previous) && s.User == previous.User {
				def = i
				break
			}
		}
	}
	if def < 0 {
		for i, s := range kept {
			if s.sameAccount(subs[0]) {
				def = i
				break
			}
		}
	}
	for i := range kept {
		kept[i].IsDefault = i == def
	}
	p.data.Subscriptions = kept
	return nil
}

// Logout removes the subscriptions, secrets and tokens of userName. The change is saved.
func (p *Profile) Logout(userName string) error {
	p.mu.Lock()
	var (
		kept    []Subscription
		removed []Subscription
	)
	for _, s := range p.data.Subscriptions {
		if strings.EqualFold(s.User.Name, userName) {
			removed = append(removed, s)
			continue
		}
		kept = append(kept, s)
	}
	if len(removed) == 0 {
		p.mu.Unlock()
		return &UserNotFoundError{Name: userName}
	}
	if kept == nil {
		kept = []Subscription{}
	}
	p.data.Subscriptions = kept
	p.mu.Unlock()

	for _, s := range uniqueTenants(removed) {
		if s.User.Type == UserTypeServicePrincipal {
			if err := p.secrets.Delete(s.TenantID, s.User.Name); err != nil {
				zap.L().Sugar().Debugf("failed to delete secret of %s: %v", s.User.Name, err)
			}
		}
	}
	if err := p.tokens.Remove(userName); err != nil {
		return err
	}
	if err := p.records.Remove(userName); err != nil {
		return err
	}
	return p.Save()
}

// Clear removes all accounts, secrets and cached tokens.
func (p *Profile) Clear() error {
	p.mu.Lock()
	subs := p.data.Subscriptions
	p.data.Subscriptions = []Subscription{}
	p.mu.Unlock()

	for _, s := range uniqueTenants(subs) {
		if s.User.Type == UserTypeServicePrincipal {
			_ = p.secrets.Delete(s.TenantID, s.User.Name)
		}
	}
	if err := p.tokens.Clear(); err != nil {
		return err
	}
	if err := p.records.Clear(); err != nil {
		return err
	}
	return p.Save()
}

// Save rewrites the profile file.
func (p *Profile) Save() error {
	p.mu.RLock()
	b, err := json.MarshalIndent(p.data, "", "  ")
	p.mu.RUnlock()
	if err != nil {
		return err
	}
	if err := config.AtomicWriteFile(p.path(), b); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func uniqueTenants(subs []Subscription) []Subscription {
	return lo.UniqBy(subs, func(s Subscription) string {
		return strings.ToLower(s.TenantID + "|" + s.User.Name)
	})
}
