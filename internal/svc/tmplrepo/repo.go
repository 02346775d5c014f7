package tmplrepo

import (
	"context"
	"errors"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("template not found")
)

// Repo is the email template repository service
type Repo interface {
	Save(ctx context.Context, in InputSave) (out OutSave, err error)
	GetByID(ctx context.Context, in InputGetByID) (out OutGetByID, err error)
	GetByName(ctx context.Context, in InputGetByName) (out OutGetByName, err error)
	List(ctx context.Context, in InputList) (out OutList, err error)
	DelByID(ctx context.Context, in InputDelByID) (out OutDelByID, err error)
}

// InputSave inserts a new template, or when the name already exists,
// updates that row in place keeping its original id.
type InputSave struct {
	Template Template `validate:"required"`
}

type OutSave struct {
	Template Template
}

type InputGetByID struct {
	ID int64 `validate:"required"`
}

type OutGetByID struct {
	Template Template
}

type InputGetByName struct {
	Name string `validate:"required"`
}

type OutGetByName struct {
	Template Template
}

type InputList struct {
	Limit int64 `validate:"required"`
}

type OutList struct {
	Total     int64
	Templates []Template
}

type InputDelByID struct {
	ID int64 `validate:"required"`
}

type OutDelByID struct {
	Success bool
}
