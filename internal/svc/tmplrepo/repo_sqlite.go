package tmplrepo

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
	sqlSaveTemplate = `
		INSERT INTO email_templates (id, name, subject, content, html_mode, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (name)
		DO UPDATE SET
			subject    = excluded.subject,
			content    = excluded.content,
			html_mode  = excluded.html_mode,
			updated_at = excluded.updated_at
		RETURNING *;
`

	sqlGetTemplateByID   = `SELECT * FROM email_templates WHERE id = ? LIMIT 1;`
	sqlGetTemplateByName = `SELECT * FROM email_templates WHERE name = ? LIMIT 1;`
	sqlListTemplateCount = `SELECT COUNT(*) as total FROM email_templates;`
	sqlListTemplates     = `SELECT * FROM email_templates ORDER BY updated_at DESC LIMIT ?;`
	sqlDelTemplateByID   = `DELETE FROM email_templates WHERE id = ? RETURNING *;`
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
	ctx, span = tracer.StartSpan(ctx, "tmplrepo.Save")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	tmpl := in.Template
	tmpl.Name = strings.TrimSpace(tmpl.Name)

	savedTmpl := Template{}
	err = sqlx.GetContext(ctx, p.Config.Connection, &savedTmpl, sqlSaveTemplate,
		tmpl.ID, tmpl.Name, tmpl.Subject, tmpl.Content, tmpl.HTMLMode, tmpl.CreatedAt, tmpl.UpdatedAt,
	)

	if err != nil {
		return
	}

	out = OutSave{
		Template: savedTmpl,
	}
	return
}

func (p *RepoSQLite) GetByID(ctx context.Context, in InputGetByID) (out OutGetByID, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "tmplrepo.GetByID")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	tmplData := Template{}
	err = sqlx.GetContext(ctx, p.Config.Connection, &tmplData, sqlGetTemplateByID, in.ID)
	if errors.Is(err, sql.ErrNoRows) {
		err = fmt.Errorf("%w: id %d", ErrNotFound, in.ID)
		return
	}

	if err != nil {
		return
	}

	out = OutGetByID{
		Template: tmplData,
	}
	return
}

func (p *RepoSQLite) GetByName(ctx context.Context, in InputGetByName) (out OutGetByName, err error) {
	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	tmplData := Template{}
	err = sqlx.GetContext(ctx, p.Config.Connection, &tmplData, sqlGetTemplateByName, strings.TrimSpace(in.Name))
	if errors.Is(err, sql.ErrNoRows) {
		err = fmt.Errorf("%w: name %s", ErrNotFound, in.Name)
		return
	}

	if err != nil {
		return
	}

	out = OutGetByName{
		Template: tmplData,
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
	err = sqlx.GetContext(ctx, p.Config.Connection, &count, sqlListTemplateCount)
	if err != nil {
		err = fmt.Errorf("cannot count list of templates: %w", err)
		return
	}

	if count.Total <= 0 {
		return
	}

	tmplData := make([]Template, 0)
	err = sqlx.SelectContext(ctx, p.Config.Connection, &tmplData, sqlListTemplates, in.Limit)
	if err != nil {
		err = fmt.Errorf("cannot get list of templates: %w", err)
		return
	}

	out = OutList{
		Total:     count.Total,
		Templates: tmplData,
	}
	return
}

func (p *RepoSQLite) DelByID(ctx context.Context, in InputDelByID) (out OutDelByID, err error) {
	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	tmplData := Template{}
	err = sqlx.GetContext(ctx, p.Config.Connection, &tmplData, sqlDelTemplateByID, in.ID)
	if errors.Is(err, sql.ErrNoRows) {
		out = OutDelByID{
			Success: false,
		}

		err = nil // discard error
		return
	}

	if err != nil {
		return
	}

	out = OutDelByID{
		Success: tmplData.ID == in.ID,
	}
	return
}
