package sheetsvc_test

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yusufsyaifudin/ngirim/internal/svc/attachstore"
	"github.com/yusufsyaifudin/ngirim/internal/svc/sheetsvc"
)

var sheetHeader = []string{"Group", "SubGroup", "Attachment", "Names", "Emails"}

func newService(t *testing.T, poolFiles ...string) (sheetsvc.Service, attachstore.Store) {
	t.Helper()

	store, err := attachstore.NewFS(attachstore.FSStoreConfig{Dir: t.TempDir()})
	require.NoError(t, err)

	for _, name := range poolFiles {
		_, err = store.Save(context.Background(), attachstore.InputSave{
			Filename: name,
			Content:  strings.NewReader("content"),
		})
		require.NoError(t, err)
	}

	svc, err := sheetsvc.New(sheetsvc.DefaultServiceConfig{AttachStore: store})
	require.NoError(t, err)
	return svc, store
}

func writeSheet(t *testing.T, rows [][]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "recipients.csv")
	file, err := os.Create(path)
	require.NoError(t, err)

	w := csv.NewWriter(file)
	require.NoError(t, w.WriteAll(rows))
	require.NoError(t, file.Close())
	return path
}

func TestDefaultService_ParseSheet(t *testing.T) {
	t.Run("multi email row fans out", func(t *testing.T) {
		svc, _ := newService(t, "report.xlsx")

		path := writeSheet(t, [][]string{
			sheetHeader,
			{"NW Branch", "Dept1", `D:\x\report.xlsx`, "Alice、Bob", "alice@x.com、bob@x.com"},
		})

		out, err := svc.ParseSheet(context.Background(), sheetsvc.InputParseSheet{SheetPath: path})
		assert.NoError(t, err)
		assert.Zero(t, out.Skipped)
		require.Len(t, out.Recipients, 2)
		assert.Equal(t, 2, out.Total)

		assert.Equal(t, "alice@x.com", out.Recipients[0].Email)
		assert.Equal(t, "Alice", out.Recipients[0].Name)
		assert.Equal(t, "report.xlsx", out.Recipients[0].Attachment)
		assert.Equal(t, "NW Branch Dept1", out.Recipients[0].Department)

		assert.Equal(t, "bob@x.com", out.Recipients[1].Email)
		assert.Equal(t, "Bob", out.Recipients[1].Name)
		assert.Equal(t, out.Recipients[0].AllAttachments, out.Recipients[1].AllAttachments)
	})

	t.Run("empty attachment cell skips the row", func(t *testing.T) {
		svc, _ := newService(t, "report.xlsx")

		path := writeSheet(t, [][]string{
			sheetHeader,
			{"NW Branch", "Dept1", "", "Alice", "alice@x.com"},
		})

		out, err := svc.ParseSheet(context.Background(), sheetsvc.InputParseSheet{SheetPath: path})
		assert.NoError(t, err)
		assert.Empty(t, out.Recipients)
		assert.Equal(t, 1, out.Skipped)
	})

	t.Run("no email in row skips the row", func(t *testing.T) {
		svc, _ := newService(t, "report.xlsx")

		path := writeSheet(t, [][]string{
			sheetHeader,
			{"NW Branch", "Dept1", `D:\x\report.xlsx`, "Alice", "ask reception for address"},
		})

		out, err := svc.ParseSheet(context.Background(), sheetsvc.InputParseSheet{SheetPath: path})
		assert.NoError(t, err)
		assert.Empty(t, out.Recipients)
		assert.Equal(t, 1, out.Skipped)
	})

	t.Run("overflow emails default name to local part", func(t *testing.T) {
		svc, _ := newService(t, "report.xlsx")

		path := writeSheet(t, [][]string{
			sheetHeader,
			{"NW Branch", "", `D:\x\report.xlsx`, "Alice", "alice@x.com; carol@x.com"},
		})

		out, err := svc.ParseSheet(context.Background(), sheetsvc.InputParseSheet{SheetPath: path})
		assert.NoError(t, err)
		require.Len(t, out.Recipients, 2)
		assert.Equal(t, "Alice", out.Recipients[0].Name)
		assert.Equal(t, "carol", out.Recipients[1].Name)
	})

	t.Run("emails embedded in prose are extracted", func(t *testing.T) {
		svc, _ := newService(t, "report.xlsx")

		path := writeSheet(t, [][]string{
			sheetHeader,
			{"NW Branch", "", `D:\x\report.xlsx`, "", "send to alice@x.com and cc bob@x.com please"},
		})

		out, err := svc.ParseSheet(context.Background(), sheetsvc.InputParseSheet{SheetPath: path})
		assert.NoError(t, err)
		require.Len(t, out.Recipients, 2)
		assert.Equal(t, "alice@x.com", out.Recipients[0].Email)
		assert.Equal(t, "bob@x.com", out.Recipients[1].Email)
	})

	t.Run("short rows are padded not fatal", func(t *testing.T) {
		svc, _ := newService(t, "report.xlsx")

		path := writeSheet(t, [][]string{
			sheetHeader,
			{"NW Branch", "Dept1"},
			{"NW Branch", "Dept1", `D:\x\report.xlsx`, "Alice", "alice@x.com"},
		})

		out, err := svc.ParseSheet(context.Background(), sheetsvc.InputParseSheet{SheetPath: path})
		assert.NoError(t, err)
		assert.Len(t, out.Recipients, 1)
		assert.Equal(t, 1, out.Skipped)
	})

	t.Run("unreadable file aborts", func(t *testing.T) {
		svc, _ := newService(t)

		_, err := svc.ParseSheet(context.Background(), sheetsvc.InputParseSheet{
			SheetPath: filepath.Join(t.TempDir(), "missing.csv"),
		})
		assert.ErrorIs(t, err, sheetsvc.ErrParse)
	})
}

func TestDefaultService_ValidateForSend(t *testing.T) {
	t.Run("removed attachment excludes without raising", func(t *testing.T) {
		svc, store := newService(t, "report.xlsx")

		recipients := []sheetsvc.Recipient{
			{
				Email:          "alice@x.com",
				Name:           "Alice",
				Attachment:     "report.xlsx",
				AllAttachments: []string{"report.xlsx"},
			},
		}

		_, err := store.Clear(context.Background())
		require.NoError(t, err)

		out, err := svc.ValidateForSend(context.Background(), sheetsvc.InputValidateForSend{Recipients: recipients})
		assert.NoError(t, err)
		assert.Empty(t, out.Valid)
		assert.Len(t, out.Excluded, 1)
	})

	t.Run("partial loss keeps recipient with remaining files", func(t *testing.T) {
		svc, store := newService(t, "a.pdf", "b.pdf")

		recipients := []sheetsvc.Recipient{
			{
				Email:          "alice@x.com",
				Name:           "Alice",
				Attachment:     "a.pdf",
				AllAttachments: []string{"a.pdf", "b.pdf"},
			},
		}

		_, err := store.Delete(context.Background(), attachstore.InputDelete{Filename: "a.pdf"})
		require.NoError(t, err)

		out, err := svc.ValidateForSend(context.Background(), sheetsvc.InputValidateForSend{Recipients: recipients})
		assert.NoError(t, err)
		require.Len(t, out.Valid, 1)
		assert.Equal(t, "b.pdf", out.Valid[0].Attachment)
		assert.Equal(t, []string{"b.pdf"}, out.Valid[0].AllAttachments)
	})

	t.Run("strict email check is anchored", func(t *testing.T) {
		svc, _ := newService(t, "report.xlsx")

		recipients := []sheetsvc.Recipient{
			{
				Email:          "see alice@x.com for details",
				Name:           "Alice",
				Attachment:     "report.xlsx",
				AllAttachments: []string{"report.xlsx"},
			},
		}

		out, err := svc.ValidateForSend(context.Background(), sheetsvc.InputValidateForSend{Recipients: recipients})
		assert.NoError(t, err)
		assert.Empty(t, out.Valid)
		assert.Len(t, out.Excluded, 1)
	})
}
