package senderrepo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yusufsyaifudin/ngirim/internal/storage"
	"github.com/yusufsyaifudin/ngirim/internal/svc/senderrepo"
)

func newRepo(t *testing.T) *senderrepo.RepoSQLite {
	t.Helper()

	db, err := storage.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	repo, err := senderrepo.SQLite(senderrepo.RepoSQLiteConfig{Connection: db})
	require.NoError(t, err)
	return repo
}

func senderFixture(id, name string) senderrepo.SenderConfig {
	now := time.Now().UTC().UnixMicro()
	return senderrepo.SenderConfig{
		ID:          id,
		Name:        name,
		SMTPHost:    "smtp.example.com",
		SMTPPort:    465,
		SenderEmail: "noreply@example.com",
		UseSSL:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestRepoSQLite_Save(t *testing.T) {
	t.Run("insert new", func(t *testing.T) {
		repo := newRepo(t)

		out, err := repo.Save(context.Background(), senderrepo.InputSave{
			SenderConfig: senderFixture("cfg-1", "work"),
		})
		assert.NoError(t, err)
		assert.Equal(t, "cfg-1", out.SenderConfig.ID)
	})

	t.Run("same name keeps original id", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Save(context.Background(), senderrepo.InputSave{
			SenderConfig: senderFixture("cfg-1", "work"),
		})
		require.NoError(t, err)

		update := senderFixture("cfg-2", "work")
		update.SMTPHost = "smtp.other.com"

		out, err := repo.Save(context.Background(), senderrepo.InputSave{SenderConfig: update})
		assert.NoError(t, err)
		assert.Equal(t, "cfg-1", out.SenderConfig.ID)
		assert.Equal(t, "smtp.other.com", out.SenderConfig.SMTPHost)
	})
}

func TestRepoSQLite_DelByID(t *testing.T) {
	t.Run("missing row", func(t *testing.T) {
		repo := newRepo(t)

		out, err := repo.DelByID(context.Background(), senderrepo.InputDelByID{ID: "none"})
		assert.NoError(t, err)
		assert.False(t, out.Success)
	})

	t.Run("protected preset rejected", func(t *testing.T) {
		repo := newRepo(t)

		now := time.Now().UTC().UnixMicro()
		_, err := repo.SeedPresets(context.Background(), senderrepo.InputSeedPresets{
			Presets: senderrepo.DefaultPresets(now),
		})
		require.NoError(t, err)

		_, err = repo.DelByID(context.Background(), senderrepo.InputDelByID{ID: "preset-qq"})
		assert.ErrorIs(t, err, senderrepo.ErrProtected)

		// row is still there
		out, err := repo.GetByID(context.Background(), senderrepo.InputGetByID{ID: "preset-qq"})
		assert.NoError(t, err)
		assert.True(t, out.SenderConfig.Protected)
	})

	t.Run("user config deleted", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Save(context.Background(), senderrepo.InputSave{
			SenderConfig: senderFixture("cfg-1", "work"),
		})
		require.NoError(t, err)

		out, err := repo.DelByID(context.Background(), senderrepo.InputDelByID{ID: "cfg-1"})
		assert.NoError(t, err)
		assert.True(t, out.Success)
	})
}

func TestRepoSQLite_SeedPresets(t *testing.T) {
	t.Run("idempotent", func(t *testing.T) {
		repo := newRepo(t)

		now := time.Now().UTC().UnixMicro()
		out, err := repo.SeedPresets(context.Background(), senderrepo.InputSeedPresets{
			Presets: senderrepo.DefaultPresets(now),
		})
		assert.NoError(t, err)
		assert.Equal(t, 4, out.Inserted)

		// second run must not duplicate or overwrite
		out, err = repo.SeedPresets(context.Background(), senderrepo.InputSeedPresets{
			Presets: senderrepo.DefaultPresets(now),
		})
		assert.NoError(t, err)
		assert.Zero(t, out.Inserted)

		list, err := repo.List(context.Background(), senderrepo.InputList{Limit: 10})
		assert.NoError(t, err)
		assert.EqualValues(t, 4, list.Total)
	})
}
