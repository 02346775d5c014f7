package batchsvc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yusufsyaifudin/ngirim/internal/svc/batchsvc"
	"github.com/yusufsyaifudin/ngirim/internal/svc/sheetsvc"
)

func TestCompose(t *testing.T) {
	recipient := sheetsvc.Recipient{
		Email:      "alice@x.com",
		Name:       "Alice",
		Department: "NW Branch Dept1",
	}

	t.Run("replaces all tokens", func(t *testing.T) {
		got := batchsvc.Compose("Dear {{name}} ({{email}}) of {{department}}", recipient)
		assert.Equal(t, "Dear Alice (alice@x.com) of NW Branch Dept1", got)
	})

	t.Run("repeated tokens", func(t *testing.T) {
		got := batchsvc.Compose("{{name}}, yes you {{name}}", recipient)
		assert.Equal(t, "Alice, yes you Alice", got)
	})

	t.Run("absent fields become empty", func(t *testing.T) {
		got := batchsvc.Compose("Dept: {{department}}.", sheetsvc.Recipient{Email: "a@x.com"})
		assert.Equal(t, "Dept: .", got)
	})

	t.Run("no tokens passes through", func(t *testing.T) {
		got := batchsvc.Compose("plain text", recipient)
		assert.Equal(t, "plain text", got)
	})
}
