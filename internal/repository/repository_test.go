package repository

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/okarabulut/xtivi/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Favorite{},
		&models.HistoryEntry{},
		&models.Settings{},
	)
	require.NoError(t, err)

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{Username: username}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))
	return user
}

func TestUserRepo_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{Username: "alice", DisplayName: "Alice", PanelHost: "http://panel:8080"}
	require.NoError(t, repo.Create(ctx, user))
	assert.False(t, user.ID.IsZero())

	found, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "alice", found.Username)

	byName, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, user.ID, byName.ID)
}

func TestUserRepo_NotFoundReturnsNil(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	found, err := repo.GetByID(ctx, models.NewULID())
	require.NoError(t, err)
	assert.Nil(t, found)

	byName, err := repo.GetByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, byName)
}

func TestUserRepo_ValidationRejected(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	err := repo.Create(context.Background(), &models.User{})
	assert.ErrorIs(t, err, models.ErrUsernameRequired)
}

func TestUserRepo_GetOrCreate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	first, err := repo.GetOrCreate(ctx, "bob", "http://panel-a")
	require.NoError(t, err)
	require.NotNil(t, first)

	// Same username returns the same row, updating the panel host.
	second, err := repo.GetOrCreate(ctx, "bob", "http://panel-b")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "http://panel-b", second.PanelHost)
}

func TestUserRepo_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "gone")
	require.NoError(t, repo.Delete(ctx, user.ID))

	found, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestFavoriteRepo_CRUD(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFavoriteRepository(db)
	ctx := context.Background()
	user := createTestUser(t, db, "alice")

	favorite := &models.Favorite{
		UserID:   user.ID,
		Kind:     "live",
		StreamID: "100",
		Name:     "News Channel",
	}
	require.NoError(t, repo.Create(ctx, favorite))

	list, err := repo.GetByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "News Channel", list[0].Name)

	found, err := repo.Find(ctx, user.ID, "live", "100")
	require.NoError(t, err)
	require.NotNil(t, found)

	missing, err := repo.Find(ctx, user.ID, "vod", "100")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.DeleteByItem(ctx, user.ID, "live", "100"))
	found, err = repo.Find(ctx, user.ID, "live", "100")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestFavoriteRepo_ScopedToUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFavoriteRepository(db)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	require.NoError(t, repo.Create(ctx, &models.Favorite{UserID: alice.ID, Kind: "live", StreamID: "1"}))

	bobList, err := repo.GetByUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, bobList)
}

func TestHistoryRepo_UpsertOverwrites(t *testing.T) {
	db := setupTestDB(t)
	repo := NewHistoryRepository(db)
	ctx := context.Background()
	user := createTestUser(t, db, "alice")

	first := &models.HistoryEntry{
		UserID:          user.ID,
		Kind:            "vod",
		StreamID:        "55",
		Name:            "Some Movie",
		ProgressSeconds: 30,
	}
	require.NoError(t, repo.Upsert(ctx, first))
	assert.False(t, first.LastWatchedAt.IsZero())

	// A re-watch overwrites the row rather than appending.
	second := &models.HistoryEntry{
		UserID:          user.ID,
		Kind:            "vod",
		StreamID:        "55",
		Name:            "Some Movie",
		ProgressSeconds: 900,
	}
	require.NoError(t, repo.Upsert(ctx, second))
	assert.Equal(t, first.ID, second.ID)

	entries, err := repo.GetByUser(ctx, user.ID, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 900, entries[0].ProgressSeconds)
}

func TestHistoryRepo_OrderAndLimit(t *testing.T) {
	db := setupTestDB(t)
	repo := NewHistoryRepository(db)
	ctx := context.Background()
	user := createTestUser(t, db, "alice")

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"1", "2", "3"} {
		entry := &models.HistoryEntry{
			UserID:        user.ID,
			Kind:          "live",
			StreamID:      id,
			LastWatchedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Upsert(ctx, entry))
	}

	entries, err := repo.GetByUser(ctx, user.ID, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "3", entries[0].StreamID, "most recent first")
	assert.Equal(t, "2", entries[1].StreamID)
}

func TestHistoryRepo_DeleteByUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewHistoryRepository(db)
	ctx := context.Background()
	user := createTestUser(t, db, "alice")

	require.NoError(t, repo.Upsert(ctx, &models.HistoryEntry{UserID: user.ID, Kind: "live", StreamID: "1"}))
	require.NoError(t, repo.DeleteByUser(ctx, user.ID))

	entries, err := repo.GetByUser(ctx, user.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSettingsRepo_Upsert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSettingsRepository(db)
	ctx := context.Background()
	user := createTestUser(t, db, "alice")

	missing, err := repo.GetByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	settings := &models.Settings{UserID: user.ID, Player: `{"volume":80}`}
	require.NoError(t, repo.Upsert(ctx, settings))

	update := &models.Settings{UserID: user.ID, Player: `{"volume":40}`, UI: `{"theme":"dark"}`}
	require.NoError(t, repo.Upsert(ctx, update))
	assert.Equal(t, settings.ID, update.ID, "one settings row per user")

	found, err := repo.GetByUser(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, `{"volume":40}`, found.Player)
	assert.Equal(t, `{"theme":"dark"}`, found.UI)
}
