package attachstore_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yusufsyaifudin/ngirim/internal/svc/attachstore"
)

func newStore(t *testing.T) *attachstore.FSStore {
	t.Helper()

	store, err := attachstore.NewFS(attachstore.FSStoreConfig{Dir: t.TempDir()})
	require.NoError(t, err)
	return store
}

func TestFSStore_Save(t *testing.T) {
	t.Run("strips directory part", func(t *testing.T) {
		store := newStore(t)

		out, err := store.Save(context.Background(), attachstore.InputSave{
			Filename: `C:\docs\report.pdf`,
			Content:  strings.NewReader("pdf bytes"),
		})
		assert.NoError(t, err)
		assert.Equal(t, "report.pdf", out.Filename)
		assert.EqualValues(t, 9, out.Size)
	})

	t.Run("missing content", func(t *testing.T) {
		store := newStore(t)

		_, err := store.Save(context.Background(), attachstore.InputSave{Filename: "a.txt"})
		assert.ErrorIs(t, err, attachstore.ErrValidation)
	})
}

func TestFSStore_List(t *testing.T) {
	t.Run("sorted ascending", func(t *testing.T) {
		store := newStore(t)

		for _, name := range []string{"zeta.txt", "alpha.txt", "mid.txt"} {
			_, err := store.Save(context.Background(), attachstore.InputSave{
				Filename: name,
				Content:  strings.NewReader("x"),
			})
			require.NoError(t, err)
		}

		out, err := store.List(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, []string{"alpha.txt", "mid.txt", "zeta.txt"}, out.Filenames)
	})
}

func TestFSStore_Open(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		store := newStore(t)

		_, err := store.Open(context.Background(), attachstore.InputOpen{Filename: "nope.txt"})
		assert.ErrorIs(t, err, attachstore.ErrNotFound)
	})

	t.Run("roundtrip", func(t *testing.T) {
		store := newStore(t)

		_, err := store.Save(context.Background(), attachstore.InputSave{
			Filename: "a.txt",
			Content:  strings.NewReader("hello"),
		})
		require.NoError(t, err)

		out, err := store.Open(context.Background(), attachstore.InputOpen{Filename: "a.txt"})
		assert.NoError(t, err)
		defer func() {
			_ = out.Content.Close()
		}()

		content, err := io.ReadAll(out.Content)
		assert.NoError(t, err)
		assert.Equal(t, "hello", string(content))
		assert.EqualValues(t, 5, out.Size)
	})
}

func TestFSStore_Clear(t *testing.T) {
	t.Run("removes everything", func(t *testing.T) {
		store := newStore(t)

		for _, name := range []string{"a.txt", "b.txt"} {
			_, err := store.Save(context.Background(), attachstore.InputSave{
				Filename: name,
				Content:  strings.NewReader("x"),
			})
			require.NoError(t, err)
		}

		out, err := store.Clear(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, 2, out.Removed)

		list, err := store.List(context.Background())
		assert.NoError(t, err)
		assert.Empty(t, list.Filenames)
	})
}
