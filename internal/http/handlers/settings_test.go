package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okarabulut/xtivi/internal/repository"
)

func TestSettingsHandler_GetEmptyForNewUser(t *testing.T) {
	db := setupTestDB(t)
	user := createHandlerTestUser(t, repository.NewUserRepository(db))
	handler := NewSettingsHandler(repository.NewSettingsRepository(db))

	output, err := handler.Get(context.Background(), &GetSettingsInput{UserID: user.ID.String()})
	require.NoError(t, err)

	assert.Equal(t, user.ID.String(), output.Body.UserID)
	assert.Empty(t, output.Body.Player)
	assert.Empty(t, output.Body.UI)
}

func TestSettingsHandler_SaveAndGet(t *testing.T) {
	db := setupTestDB(t)
	user := createHandlerTestUser(t, repository.NewUserRepository(db))
	handler := NewSettingsHandler(repository.NewSettingsRepository(db))
	ctx := context.Background()

	saved, err := handler.Save(ctx, &SaveSettingsInput{Body: SaveSettingsRequest{
		UserID: user.ID.String(),
		Player: `{"volume":0.8}`,
		UI:     `{"theme":"dark"}`,
	}})
	require.NoError(t, err)
	assert.Equal(t, `{"volume":0.8}`, saved.Body.Player)

	// Saving again replaces the single row.
	_, err = handler.Save(ctx, &SaveSettingsInput{Body: SaveSettingsRequest{
		UserID: user.ID.String(),
		Player: `{"volume":0.5}`,
	}})
	require.NoError(t, err)

	got, err := handler.Get(ctx, &GetSettingsInput{UserID: user.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, `{"volume":0.5}`, got.Body.Player)
}
