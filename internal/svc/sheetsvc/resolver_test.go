package sheetsvc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileIndex_Resolve(t *testing.T) {
	ix := newFileIndex([]string{"Report.xlsx", "summary.pdf", "nw-branch-2025.docx"})

	t.Run("exact match is case insensitive", func(t *testing.T) {
		got := ix.resolve(`D:\Share\2025\report.XLSX`, "", "")
		assert.Equal(t, []string{"Report.xlsx"}, got)
	})

	t.Run("unix separators accepted", func(t *testing.T) {
		got := ix.resolve("/mnt/share/summary.pdf", "", "")
		assert.Equal(t, []string{"summary.pdf"}, got)
	})

	t.Run("extension insensitive fallback", func(t *testing.T) {
		got := ix.resolve(`D:\docs\summary.docx`, "", "")
		assert.Equal(t, []string{"summary.pdf"}, got)
	})

	t.Run("fuzzy match against group label", func(t *testing.T) {
		got := ix.resolve(`D:\gone\other.xlsx`, "NW-Branch", "")
		assert.Equal(t, []string{"nw-branch-2025.docx"}, got)
	})

	t.Run("empty declared path", func(t *testing.T) {
		assert.Nil(t, ix.resolve("", "NW-Branch", ""))
		assert.Nil(t, ix.resolve("   ", "", ""))
	})

	t.Run("no rule matches", func(t *testing.T) {
		assert.Nil(t, ix.resolve(`D:\gone\other.xlsx`, "Finance", "East"))
	})

	t.Run("multi path resolves each exactly, first is primary", func(t *testing.T) {
		got := ix.resolve(`D:\a\report.xlsx；C:\b\summary.pdf`, "", "")
		assert.Equal(t, []string{"Report.xlsx", "summary.pdf"}, got)
	})

	t.Run("multi path never falls back to fuzzy", func(t *testing.T) {
		got := ix.resolve(`D:\a\missing-one.xlsx;D:\b\summary.pdf`, "NW-Branch", "")
		assert.Equal(t, []string{"summary.pdf"}, got)
	})

	t.Run("idempotent for unchanged pool", func(t *testing.T) {
		first := ix.resolve(`D:\gone\other.xlsx`, "NW-Branch", "")
		second := ix.resolve(`D:\gone\other.xlsx`, "NW-Branch", "")
		assert.Equal(t, first, second)
	})
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "file.xlsx", baseName(`D:\Share\2025\file.xlsx`))
	assert.Equal(t, "file.xlsx", baseName("/srv/data/file.xlsx"))
	assert.Equal(t, "file.xlsx", baseName("file.xlsx"))
	assert.Equal(t, "", baseName(`\\`))
}
