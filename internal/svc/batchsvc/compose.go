package batchsvc

import (
	"strings"

	"github.com/yusufsyaifudin/ngirim/internal/svc/sheetsvc"
)

// Compose substitutes the literal tokens {{name}}, {{email}} and
// {{department}} with the recipient's fields. Pure function, the
// recipient itself is never mutated.
func Compose(template string, recipient sheetsvc.Recipient) string {
	replacer := strings.NewReplacer(
		"{{name}}", recipient.Name,
		"{{email}}", recipient.Email,
		"{{department}}", recipient.Department,
	)

	return replacer.Replace(template)
}
