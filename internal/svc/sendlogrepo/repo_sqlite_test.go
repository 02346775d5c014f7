package sendlogrepo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yusufsyaifudin/ngirim/internal/storage"
	"github.com/yusufsyaifudin/ngirim/internal/svc/sendlogrepo"
)

func newRepo(t *testing.T) *sendlogrepo.RepoSQLite {
	t.Helper()

	db, err := storage.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	repo, err := sendlogrepo.SQLite(sendlogrepo.RepoSQLiteConfig{Connection: db})
	require.NoError(t, err)
	return repo
}

func logFixture(batchID, email, status string) sendlogrepo.SendLog {
	return sendlogrepo.SendLog{
		BatchID:        batchID,
		RecipientEmail: email,
		RecipientName:  "Recipient",
		Subject:        "Hello",
		Status:         status,
		SentAt:         time.Now().UTC().UnixMicro(),
	}
}

func TestRepoSQLite_Append(t *testing.T) {
	t.Run("unknown status rejected", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Append(context.Background(), sendlogrepo.InputAppend{
			Log: logFixture("batch-1", "a@example.com", "pending"),
		})
		assert.ErrorIs(t, err, sendlogrepo.ErrValidation)
	})

	t.Run("assigns id", func(t *testing.T) {
		repo := newRepo(t)

		out, err := repo.Append(context.Background(), sendlogrepo.InputAppend{
			Log: logFixture("batch-1", "a@example.com", sendlogrepo.StatusSuccess),
		})
		assert.NoError(t, err)
		assert.NotZero(t, out.Log.ID)
	})
}

func TestRepoSQLite_ListByBatch(t *testing.T) {
	t.Run("only requested batch", func(t *testing.T) {
		repo := newRepo(t)

		for _, l := range []sendlogrepo.SendLog{
			logFixture("batch-1", "a@example.com", sendlogrepo.StatusSuccess),
			logFixture("batch-1", "b@example.com", sendlogrepo.StatusFailed),
			logFixture("batch-2", "c@example.com", sendlogrepo.StatusSuccess),
		} {
			_, err := repo.Append(context.Background(), sendlogrepo.InputAppend{Log: l})
			require.NoError(t, err)
		}

		out, err := repo.ListByBatch(context.Background(), sendlogrepo.InputListByBatch{
			BatchID: "batch-1",
			Limit:   10,
		})
		assert.NoError(t, err)
		assert.EqualValues(t, 2, out.Total)
		assert.Len(t, out.Logs, 2)
		assert.Equal(t, "a@example.com", out.Logs[0].RecipientEmail)
	})
}

func TestRepoSQLite_StatsByBatch(t *testing.T) {
	t.Run("grouped by status", func(t *testing.T) {
		repo := newRepo(t)

		for _, l := range []sendlogrepo.SendLog{
			logFixture("batch-1", "a@example.com", sendlogrepo.StatusSuccess),
			logFixture("batch-1", "b@example.com", sendlogrepo.StatusSuccess),
			logFixture("batch-1", "c@example.com", sendlogrepo.StatusFailed),
			logFixture("batch-1", "d@example.com", sendlogrepo.StatusSkipped),
		} {
			_, err := repo.Append(context.Background(), sendlogrepo.InputAppend{Log: l})
			require.NoError(t, err)
		}

		out, err := repo.StatsByBatch(context.Background(), sendlogrepo.InputStatsByBatch{BatchID: "batch-1"})
		assert.NoError(t, err)
		assert.EqualValues(t, 4, out.Stats.Total)
		assert.EqualValues(t, 2, out.Stats.Success)
		assert.EqualValues(t, 1, out.Stats.Failed)
		assert.EqualValues(t, 1, out.Stats.Skipped)
	})

	t.Run("empty batch", func(t *testing.T) {
		repo := newRepo(t)

		out, err := repo.StatsByBatch(context.Background(), sendlogrepo.InputStatsByBatch{BatchID: "nope"})
		assert.NoError(t, err)
		assert.Zero(t, out.Stats.Total)
	})
}
