package repositories

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/database"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/session"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/store"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/pkg/config"
)

func openTestDB(t *testing.T) (*EntryRepository, *SessionEventRepository) {
	t.Helper()
	ctx := context.Background()

	db, driver, err := database.NewConnection(ctx, &config.StorageConfig{
		Type: "sqlite",
		Path: filepath.Join(t.TempDir(), "firefly.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.RunMigrations(ctx, db, driver))
	return NewEntryRepository(db, driver), NewSessionEventRepository(db, driver)
}

func TestEntryRepository(t *testing.T) {
	ctx := context.Background()
	entries, _ := openTestDB(t)

	_, ok, err := entries.Get(ctx, "firefly_token")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, entries.Set(ctx, "firefly_token", "a.b.c"))
	value, ok, err := entries.Get(ctx, "firefly_token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a.b.c", value)

	require.NoError(t, entries.Set(ctx, "firefly_token", "d.e.f"))
	entry, err := entries.GetEntry(ctx, "firefly_token")
	require.NoError(t, err)
	assert.Equal(t, "d.e.f", entry.Value)
	assert.False(t, entry.UpdatedAt.IsZero())

	require.NoError(t, entries.Delete(ctx, "firefly_token"))
	require.NoError(t, entries.Delete(ctx, "firefly_token"))
	_, ok, err = entries.Get(ctx, "firefly_token")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionEventRepository(t *testing.T) {
	ctx := context.Background()
	_, events := openTestDB(t)

	for _, name := range []string{"login", "logout", "login"} {
		e := &database.SessionEvent{Event: name, UserID: "u1", Details: "test"}
		require.NoError(t, events.InsertEvent(ctx, e))
		assert.NotZero(t, e.ID)
	}

	all, err := events.ListEvents(ctx, "", 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "login", all[0].Event)
	assert.Equal(t, "logout", all[1].Event)

	logins, err := events.ListEvents(ctx, "login", 10, 0)
	require.NoError(t, err)
	assert.Len(t, logins, 2)

	page, err := events.ListEvents(ctx, "", 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "logout", page[0].Event)
}

var (
	_ store.Backend         = (*EntryRepository)(nil)
	_ session.EventRecorder = (*SessionEventRepository)(nil)
)

func TestSessionEventRepository_Record(t *testing.T) {
	ctx := context.Background()
	_, events := openTestDB(t)

	require.NoError(t, events.Record(ctx, "expired", "u7", ""))

	got, err := events.ListEvents(ctx, "expired", 5, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "u7", got[0].UserID)
	assert.Empty(t, got[0].Details)
}

func TestEntryRepository_AsDurableTier(t *testing.T) {
	ctx := context.Background()
	entries, _ := openTestDB(t)

	s := store.New(store.DefaultKey, entries, store.NewMemoryBackend(), nil)
	s.Write(ctx, "a.b.c", true)

	tok, tier := s.Read(ctx)
	assert.Equal(t, "a.b.c", tok)
	assert.Equal(t, store.TierDurable, tier)

	s.Clear(ctx)
	_, ok, err := entries.Get(ctx, store.DefaultKey)
	require.NoError(t, err)
	assert.False(t, ok)
}
