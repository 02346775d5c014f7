package batchsvc

import (
	"context"
	"errors"

	"github.com/yusufsyaifudin/ngirim/internal/svc/sendlogrepo"
	"github.com/yusufsyaifudin/ngirim/internal/svc/sheetsvc"
)

var (
	// ErrEmptyRecipients means nothing survived filtering, so no
	// connection was even attempted. Distinguishable from a connect
	// failure.
	ErrEmptyRecipients = errors.New("no valid recipients to send to")
)

// Service is an interface of final business logic.
// Any input and output from/to this function should be SAFE for external party to consume,
// i.e: request or response from HTTP handler
type Service interface {
	SendBatch(ctx context.Context, input InputSendBatch) (out OutSendBatch, err error)
	TestConnection(ctx context.Context, input InputTestConnection) (out OutTestConnection, err error)
	BatchLogs(ctx context.Context, input InputBatchLogs) (out OutBatchLogs, err error)
	BatchStats(ctx context.Context, input InputBatchStats) (out OutBatchStats, err error)
}

// RecipientResult is one recipient's outcome in processing order.
type RecipientResult struct {
	Email   string
	Name    string
	Status  string
	Message string
}

// InlineSender is a sender account supplied in the request itself
// instead of referencing a stored config. It is never persisted.
type InlineSender struct {
	SMTPHost    string `validate:"required"`
	SMTPPort    int    `validate:"required,min=1,max=65535"`
	SenderEmail string `validate:"required,email"`
	SenderName  string `validate:"-"`
	UseSSL      bool   `validate:"-"`
	UseTLS      bool   `validate:"-"`
}

// InputSendBatch sends one personalized message per recipient over a
// single SMTP connection. The sender account comes from the stored
// config id or inline; the password is supplied per request and never
// persisted with the sender config.
type InputSendBatch struct {
	SenderConfigID string        `validate:"required_without=Sender"`
	Sender         *InlineSender `validate:"omitempty"`
	Password       string        `validate:"required"`

	Subject  string `validate:"required"`
	Content  string `validate:"-"`
	HTMLMode bool   `validate:"-"`

	Recipients []sheetsvc.Recipient `validate:"-"`

	// CommonAttachments are pool filenames attached to every message
	// of the batch in addition to the recipient's own files.
	CommonAttachments []string `validate:"-"`
}

type OutSendBatch struct {
	BatchID      string
	Total        int
	SuccessCount int
	FailedCount  int
	SkippedCount int
	Results      []RecipientResult
}

// InputTestConnection dials and authenticates without sending anything.
type InputTestConnection struct {
	SenderConfigID string        `validate:"required_without=Sender"`
	Sender         *InlineSender `validate:"omitempty"`
	Password       string        `validate:"required"`
}

type OutTestConnection struct {
	Success bool
	Host    string
	Port    int
}

type InputBatchLogs struct {
	BatchID string `validate:"required"`
	Limit   int64  `validate:"min=0"`
}

type OutBatchLogs struct {
	Total int64
	Logs  []sendlogrepo.SendLog
}

type InputBatchStats struct {
	BatchID string `validate:"required"`
}

type OutBatchStats struct {
	Stats sendlogrepo.BatchStats
}
