package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/tmeckel/az-cli/internal/config"
	"go.uber.org/zap"
)

const (
	tokenCacheFileName = "msal_token_cache.json"

	// RefreshWindow is the remaining lifetime below which a cached token is no longer served.
	RefreshWindow = 5 * time.Minute
)

type cachedToken struct {
	TenantID    string    `json:"tenantId"`
	Principal   string    `json:"principal"`
	Scope       string    `json:"scope"`
	AccessToken string    `json:"accessToken"`
	ExpiresOn   time.Time `json:"expiresOn"`
}

// TokenCache persists access tokens keyed by tenant, principal and scope. The cache file is read
// lazily and rewritten on every change.
type TokenCache struct {
	path    string
	mu      sync.Mutex
	loaded  bool
	entries map[string]cachedToken
	now     func() time.Time
}

func NewTokenCache(path string) *TokenCache {
	return &TokenCache{path: path, now: time.Now}
}

func cacheKey(tenantID, principal, scope string) string {
	return strings.ToLower(tenantID + "|" + principal + "|" + scope)
}

func (c *TokenCache) load() error {
	if c.loaded {
		return nil
	}
	c.entries = map[string]cachedToken{}
	b, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		c.loaded = true
		return nil
	}
	if err != nil {
		return err
	}
	var list []cachedToken
	if err := json.Unmarshal(b, &list); err != nil {
		// a corrupt cache only costs a new token request
		zap.L().Sugar().Debugf("ignoring unreadable token cache %s: %v", c.path, err)
		list = nil
	}
	for _, t := range list {
		c.entries[cacheKey(t.TenantID, t.Principal, t.Scope)] = t
	}
	c.loaded = true
	return nil
}

func (c *TokenCache) save() error {
	list := make([]cachedToken, 0, len(c.entries))
	now := c.now()
	for _, t := range c.entries {
		if t.ExpiresOn.After(now) {
			list = append(list, t)
		}
	}
	b, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	if err := config.AtomicWriteFile(c.path, b); err != nil {
		return fmt.Errorf("failed to save token cache: %w", err)
	}
	return nil
}

// Get returns a cached token that stays valid for longer than RefreshWindow.
func (c *TokenCache) Get(tenantID, principal, scope string) (azcore.AccessToken, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		zap.L().Sugar().Debugf("failed to read token cache: %v", err)
		return azcore.AccessToken{}, false
	}
	t, ok := c.entries[cacheKey(tenantID, principal, scope)]
	if !ok || !t.ExpiresOn.After(c.now().Add(RefreshWindow)) {
		return azcore.AccessToken{}, false
	}
	return azcore.AccessToken{Token: t.AccessToken, ExpiresOn: t.ExpiresOn}, true
}

func (c *TokenCache) Put(tenantID, principal, scope string, tok azcore.AccessToken) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return err
	}
	c.entries[cacheKey(tenantID, principal, scope)] = cachedToken{
		TenantID:    tenantID,
		Principal:   principal,
		Scope:       scope,
		AccessToken: tok.Token,
		ExpiresOn:   tok.ExpiresOn,
	}
	return c.save()
}

// Invalidate drops a single token, e.g. after the service rejected it.
func (c *TokenCache) Invalidate(tenantID, principal, scope string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return err
	}
	key := cacheKey(tenantID, principal, scope)
	if _, ok := c.entries[key]; !ok {
		return nil
	}
	delete(c.entries, key)
	return c.save()
}

// Remove drops all tokens of principal.
func (c *TokenCache) Remove(principal string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return err
	}
	changed := false
	for k, t := range c.entries {
		if strings.EqualFold(t.Principal, principal) {
			delete(c.entries, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return c.save()
}

func (c *TokenCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]cachedToken{}
	c.loaded = true
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
