package sheetsvc

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/yusufsyaifudin/ngirim/internal/svc/attachstore"
	"github.com/yusufsyaifudin/ngirim/pkg/logger"
	"github.com/yusufsyaifudin/ngirim/pkg/tracer"
	"github.com/yusufsyaifudin/ngirim/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

// column positions are the contract, the header row carries no meaning
const (
	colGroup = iota
	colSubGroup
	colAttachment
	colNames
	colEmails
)

var (
	// emailScan is deliberately permissive: the email cell may be
	// prose with several addresses embedded.
	emailScan = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	// emailStrict is the anchored form used right before sending.
	emailStrict = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

	// nameSplit accepts Chinese and Western commas and semicolons.
	nameSplit = regexp.MustCompile(`[、，,;；]`)
)

type DefaultServiceConfig struct {
	AttachStore attachstore.Store `validate:"required"`
}

type DefaultService struct {
	Config DefaultServiceConfig
}

var _ Service = (*DefaultService)(nil)

func New(dep DefaultServiceConfig) (*DefaultService, error) {
	if err := validator.Validate(dep); err != nil {
		return nil, err
	}

	return &DefaultService{
		Config: dep,
	}, nil
}

// ParseSheet turns a spreadsheet into recipients. A row only survives
// when at least one declared attachment resolves against the pool and
// at least one email address can be found, otherwise it is counted as
// skipped and processing continues. Only a whole-file read failure
// aborts.
func (d *DefaultService) ParseSheet(ctx context.Context, input InputParseSheet) (out OutParseSheet, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "sheetsvc.ParseSheet")
	defer span.End()

	err = validator.Validate(input)
	if err != nil {
		err = fmt.Errorf("validation error, missing required field: %w", err)
		return
	}

	rows, err := readRows(input.SheetPath)
	if err != nil {
		return
	}

	pool, err := d.Config.AttachStore.List(ctx)
	if err != nil {
		err = fmt.Errorf("cannot list attachment pool: %w", err)
		return
	}

	ix := newFileIndex(pool.Filenames)

	recipients := make([]Recipient, 0)
	skipped := 0

	// first row is the header
	for rowNum, row := range rows {
		if rowNum == 0 {
			continue
		}

		rowRecipients, ok := buildRecipients(ix, row)
		if !ok {
			skipped++
			logger.Debug(ctx, fmt.Sprintf("row %d skipped: no resolvable attachment or email", rowNum+1))
			continue
		}

		recipients = append(recipients, rowRecipients...)
	}

	out = OutParseSheet{
		Recipients: recipients,
		Total:      len(recipients),
		Skipped:    skipped,
	}
	return
}

// buildRecipients fans one raw row out into zero or more recipients.
// The second return value is false when the row must be skipped.
func buildRecipients(ix *fileIndex, row []string) ([]Recipient, bool) {
	attachments := ix.resolve(cell(row, colAttachment), cell(row, colGroup), cell(row, colSubGroup))
	if len(attachments) == 0 {
		return nil, false
	}

	emails := emailScan.FindAllString(cell(row, colEmails), -1)
	if len(emails) == 0 {
		return nil, false
	}

	names := make([]string, 0, len(emails))
	for _, name := range nameSplit.Split(cell(row, colNames), -1) {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}

	department := strings.TrimSpace(cell(row, colGroup) + " " + cell(row, colSubGroup))

	recipients := make([]Recipient, 0, len(emails))
	for i, email := range emails {
		name := localPart(email)
		if i < len(names) {
			name = names[i]
		}

		recipients = append(recipients, Recipient{
			Email:          email,
			Name:           name,
			Department:     department,
			Attachment:     attachments[0],
			AllAttachments: attachments,
		})
	}

	return recipients, true
}

// ValidateForSend re-checks each recipient with the strict anchored
// email pattern and re-verifies attachment existence, since the pool
// may have been cleared between parse and send. Attachments that
// disappeared are dropped from the recipient, and a recipient with
// none left is excluded.
func (d *DefaultService) ValidateForSend(ctx context.Context, input InputValidateForSend) (out OutValidateForSend, err error) {
	err = validator.Validate(input)
	if err != nil {
		err = fmt.Errorf("validation error, missing required field: %w", err)
		return
	}

	pool, err := d.Config.AttachStore.List(ctx)
	if err != nil {
		err = fmt.Errorf("cannot list attachment pool: %w", err)
		return
	}

	present := make(map[string]struct{}, len(pool.Filenames))
	for _, name := range pool.Filenames {
		present[name] = struct{}{}
	}

	out = OutValidateForSend{
		Valid:    make([]Recipient, 0, len(input.Recipients)),
		Excluded: make([]Recipient, 0),
	}

	for _, recipient := range input.Recipients {
		if !emailStrict.MatchString(recipient.Email) || recipient.Name == "" {
			out.Excluded = append(out.Excluded, recipient)
			continue
		}

		remaining := make([]string, 0, len(recipient.AllAttachments))
		for _, name := range recipient.AllAttachments {
			if _, ok := present[name]; ok {
				remaining = append(remaining, name)
			}
		}

		if len(remaining) == 0 {
			logger.Warn(ctx, fmt.Sprintf("recipient %s excluded: attachments no longer in pool", recipient.Email))
			out.Excluded = append(out.Excluded, recipient)
			continue
		}

		recipient.Attachment = remaining[0]
		recipient.AllAttachments = remaining
		out.Valid = append(out.Valid, recipient)
	}

	return
}

func localPart(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}

	return email
}
