package profile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func newProfile(t *testing.T) (*Profile, string) {
	t.Helper()
	keyring.MockInit()
	dir := t.TempDir()
	p, err := Load(dir)
	require.NoError(t, err)
	return p, dir
}

var alice = User{Name: "alice@contoso.com", Type: UserTypeUser}

func subs(ids ...string) []Subscription {
	out := []Subscription{}
	for _, id := range ids {
		out = append(out, Subscription{ID: id, Name: "sub-" + id, State: StateEnabled, TenantID: "t1", EnvironmentName: "AzureCloud"})
	}
	return out
}

func TestEmptyProfile(t *testing.T) {
	p, _ := newProfile(t)

	assert.NotEmpty(t, p.InstallationID())
	assert.Empty(t, p.Subscriptions())
	_, err := p.Default()
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	_, err = p.Find("x")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestReplaceMakesFirstDefault(t *testing.T) {
	p, _ := newProfile(t)

	require.NoError(t, p.Replace(alice, subs("a", "b")))

	def, err := p.Default()
	require.NoError(t, err)
	assert.Equal(t, "a", def.ID)
	assert.Equal(t, alice, def.User)
}

func TestReplaceKeepsPreviousDefault(t *testing.T) {
	p, _ := newProfile(t)
	require.NoError(t, p.Replace(alice, subs("a", "b")))
	_, err := p.SetDefault("b")
	require.NoError(t, err)

	require.NoError(t, p.Replace(alice, subs("c", "b")))

	def, err := p.Default()
	require.NoError(t, err)
	assert.Equal(t, "b", def.ID)
	assert.Len(t, p.Subscriptions(), 2)
}

func TestReplaceKeepsOtherUsers(t *testing.T) {
	p, _ := newProfile(t)
	sp := User{Name: "11111111-0000-0000-0000-000000000000", Type: UserTypeServicePrincipal}
	require.NoError(t, p.Replace(alice, subs("a")))
	require.NoError(t, p.Replace(sp, subs("b")))

	all := p.Subscriptions()
	require.Len(t, all, 2)
	def, err := p.Default()
	require.NoError(t, err)
	assert.Equal(t, "a", def.ID)
}

func TestReplaceWithoutSubscriptions(t *testing.T) {
	p, _ := newProfile(t)
	require.Error(t, p.Replace(alice, nil))
}

func TestFindAndSetDefault(t *testing.T) {
	p, _ := newProfile(t)
	require.NoError(t, p.Replace(alice, subs("AAAA", "bbbb")))

	s, err := p.Find("aaaa")
	require.NoError(t, err)
	assert.Equal(t, "AAAA", s.ID)

	s, err = p.Find("SUB-BBBB")
	require.NoError(t, err)
	assert.Equal(t, "bbbb", s.ID)

	_, err = p.Find("zzz")
	var notFound *SubscriptionNotFoundError
	require.ErrorAs(t, err, &notFound)

	s, err = p.SetDefault("sub-bbbb")
	require.NoError(t, err)
	assert.True(t, s.IsDefault)
	def, _ := p.Default()
	assert.Equal(t, "bbbb", def.ID)

	n := 0
	for _, s := range p.Subscriptions() {
		if s.IsDefault {
			n++
		}
	}
	assert.Equal(t, 1, n)
}

func TestSaveAndLoad(t *testing.T) {
	p, dir := newProfile(t)
	require.NoError(t, p.Replace(alice, subs("a")))
	require.NoError(t, p.Save())

	info, err := os.Stat(filepath.Join(dir, profileFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, p.InstallationID(), loaded.InstallationID())
	assert.Equal(t, p.Subscriptions(), loaded.Subscriptions())
}

func TestLoadWithByteOrderMark(t *testing.T) {
	dir := t.TempDir()
	data, err := json.Marshal(profileData{InstallationID: "id", Subscriptions: subs("a")})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, profileFileName), append([]byte("\ufeff"), data...), 0o600))

	p, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "id", p.InstallationID())
	assert.Len(t, p.Subscriptions(), 1)
}

func TestLoadCorruptProfile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, profileFileName), []byte("{"), 0o600))
	_, err := Load(dir)
	require.Error(t, err)
}

func TestLogout(t *testing.T) {
	p, dir := newProfile(t)
	sp := User{Name: "client-id", Type: UserTypeServicePrincipal}
	require.NoError(t, p.Replace(alice, subs("a")))
	require.NoError(t, p.Replace(sp, subs("b")))
	require.NoError(t, p.Secrets().Set("t1", "client-id", "s3cret", false))

	require.NoError(t, p.Logout("CLIENT-ID"))

	assert.Len(t, p.Subscriptions(), 1)
	_, err := p.Secrets().Get("t1", "client-id")
	assert.ErrorIs(t, err, ErrSecretNotFound)

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Len(t, loaded.Subscriptions(), 1)

	var notFound *UserNotFoundError
	require.ErrorAs(t, p.Logout("bob"), &notFound)
}

func TestClear(t *testing.T) {
	p, _ := newProfile(t)
	require.NoError(t, p.Replace(alice, subs("a", "b")))

	require.NoError(t, p.Clear())
	assert.Empty(t, p.Subscriptions())
}
