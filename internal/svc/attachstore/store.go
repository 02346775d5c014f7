package attachstore

import (
	"context"
	"errors"
	"io"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("attachment not found")
)

// Store is the uploaded attachment pool. Filenames are flat, there is
// no directory hierarchy inside the pool.
type Store interface {
	Save(ctx context.Context, in InputSave) (out OutSave, err error)
	List(ctx context.Context) (out OutList, err error)
	Open(ctx context.Context, in InputOpen) (out OutOpen, err error)
	Delete(ctx context.Context, in InputDelete) (out OutDelete, err error)
	Clear(ctx context.Context) (out OutClear, err error)
}

type InputSave struct {
	Filename string    `validate:"required"`
	Content  io.Reader `validate:"required"`
}

type OutSave struct {
	Filename string
	Size     int64
}

type OutList struct {
	// Filenames is sorted ascending so matching is deterministic.
	Filenames []string
}

type InputOpen struct {
	Filename string `validate:"required"`
}

type OutOpen struct {
	Content io.ReadCloser
	Size    int64
}

type InputDelete struct {
	Filename string `validate:"required"`
}

type OutDelete struct {
	Success bool
}

type OutClear struct {
	Removed int
}
