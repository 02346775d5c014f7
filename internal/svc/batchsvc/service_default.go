package batchsvc

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/satori/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/yusufsyaifudin/ngirim/internal/svc/attachstore"
	"github.com/yusufsyaifudin/ngirim/internal/svc/sendlogrepo"
	"github.com/yusufsyaifudin/ngirim/internal/svc/senderrepo"
	"github.com/yusufsyaifudin/ngirim/internal/svc/sheetsvc"
	"github.com/yusufsyaifudin/ngirim/pkg/logger"
	"github.com/yusufsyaifudin/ngirim/pkg/mailclient"
	"github.com/yusufsyaifudin/ngirim/pkg/tracer"
	"github.com/yusufsyaifudin/ngirim/pkg/validator"
)

type DefaultServiceConfig struct {
	SheetService sheetsvc.Service  `validate:"required"`
	SenderRepo   senderrepo.Repo   `validate:"required"`
	SendLogRepo  sendlogrepo.Repo  `validate:"required"`
	AttachStore  attachstore.Store `validate:"required"`
	Dialer       mailclient.Dialer `validate:"required"`

	ConnectTimeout time.Duration      `validate:"-"`
	Overrides      []ProviderOverride `validate:"-"`
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

// SendBatch runs one batch fully sequentially over a single SMTP
// connection: filter recipients, connect and authenticate once, then
// compose and transmit per recipient recording each outcome. Connect
// or auth failure aborts the whole batch with one consolidated error
// and zero per-recipient results.
func (d *DefaultService) SendBatch(ctx context.Context, input InputSendBatch) (out OutSendBatch, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "batchsvc.SendBatch")
	defer span.End()

	err = validator.Validate(input)
	if err != nil {
		err = fmt.Errorf("validation error, missing required field: %w", err)
		return
	}

	if len(input.Recipients) == 0 {
		err = ErrEmptyRecipients
		return
	}

	filtered, err := d.Config.SheetService.ValidateForSend(ctx, sheetsvc.InputValidateForSend{
		Recipients: input.Recipients,
	})
	if err != nil {
		err = fmt.Errorf("cannot re-validate recipients: %w", err)
		return
	}

	if len(filtered.Valid) == 0 {
		err = ErrEmptyRecipients
		return
	}

	senderCfg, err := d.resolveSender(ctx, input.SenderConfigID, input.Sender)
	if err != nil {
		return
	}

	cred := buildCredential(senderCfg, input.Password, d.Config.Overrides)
	cred.ConnectTimeout = d.Config.ConnectTimeout

	sess, err := d.Config.Dialer.Dial(ctx, cred)
	if err != nil {
		// nothing was sent, the caller gets one consolidated failure
		return
	}

	defer func() {
		// best effort, closure problems never surface to the caller
		if closeErr := sess.Close(); closeErr != nil {
			logger.Warn(ctx, "smtp session close error", logger.KV("error", closeErr))
		}
	}()

	batchID := uuid.NewV4().String()
	from := &mail.Address{Name: senderCfg.SenderName, Address: senderCfg.SenderEmail}

	out = OutSendBatch{
		BatchID: batchID,
		Total:   len(filtered.Valid),
		Results: make([]RecipientResult, 0, len(filtered.Valid)),
	}

	for _, recipient := range filtered.Valid {
		result := d.sendOne(ctx, sess, from, input, recipient)
		out.Results = append(out.Results, result)

		switch result.Status {
		case sendlogrepo.StatusSuccess:
			out.SuccessCount++
		case sendlogrepo.StatusFailed:
			out.FailedCount++
		case sendlogrepo.StatusSkipped:
			out.SkippedCount++
		}

		d.appendLog(ctx, batchID, input, result)
	}

	return
}

// sendOne composes and transmits for a single recipient. It never
// returns an error: every failure mode maps to a status so the batch
// always continues.
func (d *DefaultService) sendOne(
	ctx context.Context,
	sess mailclient.Session,
	from *mail.Address,
	input InputSendBatch,
	recipient sheetsvc.Recipient,
) RecipientResult {
	result := RecipientResult{
		Email: recipient.Email,
		Name:  recipient.Name,
	}

	subject := Compose(input.Subject, recipient)
	body := Compose(input.Content, recipient)

	personalized := d.loadAttachments(ctx, recipient.AllAttachments)
	if len(personalized) == 0 {
		// every personal file vanished mid-batch, do not transmit
		result.Status = sendlogrepo.StatusSkipped
		result.Message = "no attachment could be attached"
		return result
	}

	attachments := append(personalized, d.loadAttachments(ctx, input.CommonAttachments)...)

	to := &mail.Address{Name: recipient.Name, Address: recipient.Email}
	msg, err := buildMessage(from, to, subject, body, input.HTMLMode, attachments)
	if err != nil {
		result.Status = sendlogrepo.StatusFailed
		result.Message = fmt.Sprintf("compose error: %s", err)
		return result
	}

	err = sess.Send(ctx, from.Address, recipient.Email, msg)
	if err != nil {
		result.Status = sendlogrepo.StatusFailed
		result.Message = fmt.Sprintf("transmit error: %s", err)
		return result
	}

	result.Status = sendlogrepo.StatusSuccess
	result.Message = subject
	return result
}

// loadAttachments reads pool files into memory. A file that fails to
// open is logged and omitted, never fatal here.
func (d *DefaultService) loadAttachments(ctx context.Context, names []string) []attachment {
	loaded := make([]attachment, 0, len(names))
	for _, name := range names {
		opened, err := d.Config.AttachStore.Open(ctx, attachstore.InputOpen{Filename: name})
		if err != nil {
			logger.Warn(ctx, fmt.Sprintf("attachment %s omitted", name), logger.KV("error", err))
			continue
		}

		content, err := io.ReadAll(opened.Content)
		_ = opened.Content.Close()
		if err != nil {
			logger.Warn(ctx, fmt.Sprintf("attachment %s omitted", name), logger.KV("error", err))
			continue
		}

		loaded = append(loaded, attachment{
			Filename: name,
			Content:  content,
		})
	}

	return loaded
}

// resolveSender prefers the inline account when the caller sends one,
// otherwise reads the stored config.
func (d *DefaultService) resolveSender(ctx context.Context, id string, inline *InlineSender) (cfg senderrepo.SenderConfig, err error) {
	if inline != nil {
		return senderrepo.SenderConfig{
			SMTPHost:    inline.SMTPHost,
			SMTPPort:    inline.SMTPPort,
			SenderEmail: inline.SenderEmail,
			SenderName:  inline.SenderName,
			UseSSL:      inline.UseSSL,
			UseTLS:      inline.UseTLS,
		}, nil
	}

	senderOut, err := d.Config.SenderRepo.GetByID(ctx, senderrepo.InputGetByID{ID: id})
	if err != nil {
		return senderrepo.SenderConfig{}, fmt.Errorf("cannot load sender config: %w", err)
	}

	return senderOut.SenderConfig, nil
}

func (d *DefaultService) appendLog(ctx context.Context, batchID string, input InputSendBatch, result RecipientResult) {
	subject := input.Subject
	if result.Status == sendlogrepo.StatusSuccess {
		subject = result.Message
	}

	_, err := d.Config.SendLogRepo.Append(ctx, sendlogrepo.InputAppend{
		Log: sendlogrepo.SendLog{
			BatchID:        batchID,
			RecipientEmail: result.Email,
			RecipientName:  result.Name,
			Subject:        subject,
			Status:         result.Status,
			Message:        result.Message,
			SentAt:         time.Now().UTC().UnixMicro(),
		},
	})

	if err != nil {
		logger.Error(ctx, fmt.Sprintf("cannot append send log for %s", result.Email), logger.KV("error", err))
	}
}

// TestConnection dials and authenticates with the stored sender config
// plus the per-request password, then closes immediately.
func (d *DefaultService) TestConnection(ctx context.Context, input InputTestConnection) (out OutTestConnection, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "batchsvc.TestConnection")
	defer span.End()

	err = validator.Validate(input)
	if err != nil {
		err = fmt.Errorf("validation error, missing required field: %w", err)
		return
	}

	senderCfg, err := d.resolveSender(ctx, input.SenderConfigID, input.Sender)
	if err != nil {
		return
	}

	cred := buildCredential(senderCfg, input.Password, d.Config.Overrides)
	cred.ConnectTimeout = d.Config.ConnectTimeout

	sess, err := d.Config.Dialer.Dial(ctx, cred)
	if err != nil {
		return
	}

	if closeErr := sess.Close(); closeErr != nil {
		logger.Warn(ctx, "smtp session close error", logger.KV("error", closeErr))
	}

	out = OutTestConnection{
		Success: true,
		Host:    cred.Host,
		Port:    cred.Port,
	}
	return
}

func (d *DefaultService) BatchLogs(ctx context.Context, input InputBatchLogs) (out OutBatchLogs, err error) {
	err = validator.Validate(input)
	if err != nil {
		err = fmt.Errorf("validation error, missing required field: %w", err)
		return
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 500
	}

	logsOut, err := d.Config.SendLogRepo.ListByBatch(ctx, sendlogrepo.InputListByBatch{
		BatchID: input.BatchID,
		Limit:   limit,
	})
	if err != nil {
		return
	}

	out = OutBatchLogs{
		Total: logsOut.Total,
		Logs:  logsOut.Logs,
	}
	return
}

func (d *DefaultService) BatchStats(ctx context.Context, input InputBatchStats) (out OutBatchStats, err error) {
	err = validator.Validate(input)
	if err != nil {
		err = fmt.Errorf("validation error, missing required field: %w", err)
		return
	}

	statsOut, err := d.Config.SendLogRepo.StatsByBatch(ctx, sendlogrepo.InputStatsByBatch{
		BatchID: input.BatchID,
	})
	if err != nil {
		return
	}

	out = OutBatchStats{
		Stats: statsOut.Stats,
	}
	return
}
