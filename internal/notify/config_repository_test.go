package notify

import (
	"context"
	"path/filepath"
	"testing"
	"time"
	"wxhm/internal/models"
	"wxhm/internal/providers"
	"wxhm/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *SQLConfigRepository {
	t.Helper()
	db, err := providers.OpenSQLite(filepath.Join(t.TempDir(), "notify.db"), 1)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.Local)
	repo := NewConfigRepository(db, &testutil.MockLogger{}).(*SQLConfigRepository)
	repo.now = func() time.Time {
		now = now.Add(time.Second)
		return now
	}
	return repo
}

func newChannelConfig() *models.ChannelConfig {
	return &models.ChannelConfig{AppID: " wx1 ", Secret: "sec", Recipient: "openid", TemplateID: "tpl"}
}

func TestConfigRepository_CurrentEmpty(t *testing.T) {
	repo := newTestRepository(t)

	cfg, err := repo.Current(context.Background())
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestConfigRepository_SaveDefaults(t *testing.T) {
	repo := newTestRepository(t)

	saved, err := repo.Save(context.Background(), newChannelConfig())
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)
	assert.Equal(t, "wx1", saved.AppID)
	assert.Equal(t, "配置_20240301080001", saved.Name)
	assert.Equal(t, DefaultTemplateFields, saved.TemplateFields)

	got, err := repo.Get(context.Background(), saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.Name, got.Name)
	assert.Equal(t, DefaultTemplateFields, got.TemplateFields)
	assert.True(t, saved.UpdatedAt.Equal(got.UpdatedAt))
}

func TestConfigRepository_CurrentFollowsLatestUpdate(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	first, err := repo.Save(ctx, newChannelConfig())
	require.NoError(t, err)
	second, err := repo.Save(ctx, newChannelConfig())
	require.NoError(t, err)

	cur, err := repo.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, cur.ID)

	first.Recipient = "other-openid"
	_, err = repo.Save(ctx, first)
	require.NoError(t, err)

	cur, err = repo.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, cur.ID)
	assert.Equal(t, "other-openid", cur.Recipient)
	assert.Equal(t, first.Name, cur.Name)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)
}

func TestConfigRepository_Validation(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.Save(ctx, nil)
	assert.ErrorIs(t, err, models.ErrValidation)

	missing := newChannelConfig()
	missing.TemplateID = "  "
	_, err = repo.Save(ctx, missing)
	assert.ErrorIs(t, err, models.ErrValidation)

	badURL := newChannelConfig()
	badURL.RedirectURL = "not a url"
	_, err = repo.Save(ctx, badURL)
	assert.ErrorIs(t, err, models.ErrValidation)

	badFields := newChannelConfig()
	badFields.TemplateFields = []string{"group", "group"}
	_, err = repo.Save(ctx, badFields)
	assert.ErrorIs(t, err, models.ErrValidation)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestConfigRepository_UpdateUnknown(t *testing.T) {
	repo := newTestRepository(t)

	cfg := newChannelConfig()
	cfg.ID = 404
	_, err := repo.Save(context.Background(), cfg)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestConfigRepository_Delete(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	saved, err := repo.Save(ctx, newChannelConfig())
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, saved.ID))
	assert.ErrorIs(t, repo.Delete(ctx, saved.ID), models.ErrNotFound)

	_, err = repo.Get(ctx, saved.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	cur, err := repo.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, cur)
}

func TestConfigRepository_DatabaseFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewConfigRepository(db, &testutil.MockLogger{})

	mock.ExpectQuery("SELECT (.+) FROM channel_config").WillReturnError(assert.AnError)
	_, err = repo.Current(context.Background())
	assert.ErrorIs(t, err, models.ErrTransientIO)

	mock.ExpectExec("INSERT INTO channel_config").WillReturnError(assert.AnError)
	_, err = repo.Save(context.Background(), newChannelConfig())
	assert.ErrorIs(t, err, models.ErrTransientIO)

	assert.NoError(t, mock.ExpectationsWereMet())
}
