package senderrepo

import (
	"context"
	"errors"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("sender config not found")
	ErrProtected  = errors.New("sender config is protected")
)

// Repo is the sender config repository service
type Repo interface {
	Save(ctx context.Context, in InputSave) (out OutSave, err error)
	GetByID(ctx context.Context, in InputGetByID) (out OutGetByID, err error)
	List(ctx context.Context, in InputList) (out OutList, err error)
	DelByID(ctx context.Context, in InputDelByID) (out OutDelByID, err error)
	SeedPresets(ctx context.Context, in InputSeedPresets) (out OutSeedPresets, err error)
}

// InputSave inserts a new sender config, or when the name already
// exists, updates that row in place keeping its original id.
type InputSave struct {
	SenderConfig SenderConfig `validate:"required"`
}

type OutSave struct {
	SenderConfig SenderConfig
}

type InputGetByID struct {
	ID string `validate:"required"`
}

type OutGetByID struct {
	SenderConfig SenderConfig
}

type InputList struct {
	Limit int64 `validate:"required"`
}

type OutList struct {
	Total         int64
	SenderConfigs []SenderConfig
}

// InputDelByID removes one sender config. Deleting a protected preset
// fails with ErrProtected.
type InputDelByID struct {
	ID string `validate:"required"`
}

type OutDelByID struct {
	Success bool
}

// InputSeedPresets writes the built-in provider presets that are
// missing, leaving already present rows untouched.
type InputSeedPresets struct {
	Presets []SenderConfig `validate:"required,dive"`
}

type OutSeedPresets struct {
	Inserted int
}
