package senderrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/yusufsyaifudin/ngirim/pkg/tracer"
	"github.com/yusufsyaifudin/ngirim/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

const (
	sqlSaveSender = `
		INSERT INTO sender_configs
			(id, name, smtp_host, smtp_port, sender_email, sender_name, use_ssl, use_tls, html_mode, protected, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (name)
		DO UPDATE SET
			smtp_host    = excluded.smtp_host,
			smtp_port    = excluded.smtp_port,
			sender_email = excluded.sender_email,
			sender_name  = excluded.sender_name,
			use_ssl      = excluded.use_ssl,
			use_tls      = excluded.use_tls,
			html_mode    = excluded.html_mode,
			updated_at   = excluded.updated_at
		RETURNING *;
`

	sqlSeedSender = `
		INSERT INTO sender_configs
			(id, name, smtp_host, smtp_port, sender_email, sender_name, use_ssl, use_tls, html_mode, protected, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (name) DO NOTHING
		RETURNING *;
`

	sqlGetSenderByID   = `SELECT * FROM sender_configs WHERE id = ? LIMIT 1;`
	sqlListSenderCount = `SELECT COUNT(*) as total FROM sender_configs;`
	sqlListSenders     = `SELECT * FROM sender_configs ORDER BY protected DESC, name ASC LIMIT ?;`
	sqlDelSenderByID   = `DELETE FROM sender_configs WHERE id = ? AND protected = 0 RETURNING *;`
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

func (p *RepoSQLite) Save(ctx context.Context, in InputSave) (out OutSave, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "senderrepo.Save")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	cfg := in.SenderConfig
	cfg.Name = strings.TrimSpace(cfg.Name)

	savedCfg := SenderConfig{}
	err = sqlx.GetContext(ctx, p.Config.Connection, &savedCfg, sqlSaveSender,
		cfg.ID, cfg.Name, cfg.SMTPHost, cfg.SMTPPort, cfg.SenderEmail, cfg.SenderName,
		cfg.UseSSL, cfg.UseTLS, cfg.HTMLMode, cfg.Protected, cfg.CreatedAt, cfg.UpdatedAt,
	)

	if err != nil {
		return
	}

	out = OutSave{
		SenderConfig: savedCfg,
	}
	return
}

func (p *RepoSQLite) GetByID(ctx context.Context, in InputGetByID) (out OutGetByID, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "senderrepo.GetByID")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	cfgData := SenderConfig{}
	err = sqlx.GetContext(ctx, p.Config.Connection, &cfgData, sqlGetSenderByID, in.ID)
	if errors.Is(err, sql.ErrNoRows) {
		err = fmt.Errorf("%w: id %s", ErrNotFound, in.ID)
		return
	}

	if err != nil {
		return
	}

	out = OutGetByID{
		SenderConfig: cfgData,
	}
	return
}

func (p *RepoSQLite) List(ctx context.Context, in InputList) (out OutList, err error) {
	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	count := struct {
		Total int64 `db:"total"`
	}{}
	err = sqlx.GetContext(ctx, p.Config.Connection, &count, sqlListSenderCount)
	if err != nil {
		err = fmt.Errorf("cannot count list of sender configs: %w", err)
		return
	}

	if count.Total <= 0 {
		return
	}

	cfgData := make([]SenderConfig, 0)
	err = sqlx.SelectContext(ctx, p.Config.Connection, &cfgData, sqlListSenders, in.Limit)
	if err != nil {
		err = fmt.Errorf("cannot get list of sender configs: %w", err)
		return
	}

	out = OutList{
		Total:         count.Total,
		SenderConfigs: cfgData,
	}
	return
}

func (p *RepoSQLite) DelByID(ctx context.Context, in InputDelByID) (out OutDelByID, err error) {
	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	existing, err := p.GetByID(ctx, InputGetByID{ID: in.ID})
	if errors.Is(err, ErrNotFound) {
		out = OutDelByID{
			Success: false,
		}

		err = nil // discard error
		return
	}

	if err != nil {
		return
	}

	if existing.SenderConfig.Protected {
		err = fmt.Errorf("%w: %s is a built-in preset", ErrProtected, existing.SenderConfig.Name)
		return
	}

	cfgData := SenderConfig{}
	err = sqlx.GetContext(ctx, p.Config.Connection, &cfgData, sqlDelSenderByID, in.ID)
	if errors.Is(err, sql.ErrNoRows) {
		out = OutDelByID{
			Success: false,
		}

		err = nil
		return
	}

	if err != nil {
		return
	}

	out = OutDelByID{
		Success: cfgData.ID == in.ID,
	}
	return
}

func (p *RepoSQLite) SeedPresets(ctx context.Context, in InputSeedPresets) (out OutSeedPresets, err error) {
	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	for _, preset := range in.Presets {
		seeded := SenderConfig{}
		_err := sqlx.GetContext(ctx, p.Config.Connection, &seeded, sqlSeedSender,
			preset.ID, preset.Name, preset.SMTPHost, preset.SMTPPort, preset.SenderEmail, preset.SenderName,
			preset.UseSSL, preset.UseTLS, preset.HTMLMode, preset.Protected, preset.CreatedAt, preset.UpdatedAt,
		)

		// no rows means the preset already exists, leave it as is
		if errors.Is(_err, sql.ErrNoRows) {
			continue
		}

		if _err != nil {
			err = fmt.Errorf("cannot seed preset %s: %w", preset.Name, _err)
			return
		}

		out.Inserted++
	}

	return
}
