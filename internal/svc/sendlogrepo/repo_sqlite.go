package sendlogrepo

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/yusufsyaifudin/ngirim/pkg/tracer"
	"github.com/yusufsyaifudin/ngirim/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

const (
	sqlAppendLog = `
		INSERT INTO send_logs (batch_id, recipient_email, recipient_name, subject, status, message, sent_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING *;
`

	sqlCountLogsByBatch = `SELECT COUNT(*) as total FROM send_logs WHERE batch_id = ?;`
	sqlListLogsByBatch  = `SELECT * FROM send_logs WHERE batch_id = ? ORDER BY id ASC LIMIT ?;`
	sqlStatsByBatch     = `SELECT status, COUNT(*) as total FROM send_logs WHERE batch_id = ? GROUP BY status;`
)

type RepoSQLiteConfig struct {
	Connection sqlx.QueryerContext `validate:"required"`
}

type RepoSQLite struct {
	Config RepoSQLiteConfig
}

var _ Repo = (*RepoSQLite)(nil)

// SQLite return repo interface which implements using SQLite
func SQLite(conf RepoSQLiteConfig) (service *RepoSQLite, err error) {
	err = validator.Validate(conf)
	if err != nil {
		return nil, err
	}

	service = &RepoSQLite{
		Config: conf,
	}
	return
}

func (p *RepoSQLite) Append(ctx context.Context, in InputAppend) (out OutAppend, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "sendlogrepo.Append")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	logRow := SendLog{}
	err = sqlx.GetContext(ctx, p.Config.Connection, &logRow, sqlAppendLog,
		in.Log.BatchID, in.Log.RecipientEmail, in.Log.RecipientName,
		in.Log.Subject, in.Log.Status, in.Log.Message, in.Log.SentAt,
	)

	if err != nil {
		return
	}

	out = OutAppend{
		Log: logRow,
	}
	return
}

func (p *RepoSQLite) ListByBatch(ctx context.Context, in InputListByBatch) (out OutListByBatch, err error) {
	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	count := struct {
		Total int64 `db:"total"`
	}{}
	err = sqlx.GetContext(ctx, p.Config.Connection, &count, sqlCountLogsByBatch, in.BatchID)
	if err != nil {
		err = fmt.Errorf("cannot count send logs of batch %s: %w", in.BatchID, err)
		return
	}

	if count.Total <= 0 {
		return
	}

	logRows := make([]SendLog, 0)
	err = sqlx.SelectContext(ctx, p.Config.Connection, &logRows, sqlListLogsByBatch, in.BatchID, in.Limit)
	if err != nil {
		err = fmt.Errorf("cannot get send logs of batch %s: %w", in.BatchID, err)
		return
	}

	out = OutListByBatch{
		Total: count.Total,
		Logs:  logRows,
	}
	return
}

func (p *RepoSQLite) StatsByBatch(ctx context.Context, in InputStatsByBatch) (out OutStatsByBatch, err error) {
	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	rows := make([]struct {
		Status string `db:"status"`
		Total  int64  `db:"total"`
	}, 0)

	err = sqlx.SelectContext(ctx, p.Config.Connection, &rows, sqlStatsByBatch, in.BatchID)
	if err != nil {
		err = fmt.Errorf("cannot get stats of batch %s: %w", in.BatchID, err)
		return
	}

	stats := BatchStats{
		BatchID: in.BatchID,
	}

	for _, row := range rows {
		stats.Total += row.Total

		switch row.Status {
		case StatusSuccess:
			stats.Success = row.Total
		case StatusFailed:
			stats.Failed = row.Total
		case StatusSkipped:
			stats.Skipped = row.Total
		}
	}

	out = OutStatsByBatch{
		Stats: stats,
	}
	return
}
