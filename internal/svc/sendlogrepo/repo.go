package sendlogrepo

import (
	"context"
	"errors"
)

var (
	ErrValidation = errors.New("validation error")
)

// Repo is the send log repository service
type Repo interface {
	Append(ctx context.Context, in InputAppend) (out OutAppend, err error)
	ListByBatch(ctx context.Context, in InputListByBatch) (out OutListByBatch, err error)
	StatsByBatch(ctx context.Context, in InputStatsByBatch) (out OutStatsByBatch, err error)
}

type InputAppend struct {
	Log SendLog `validate:"required"`
}

type OutAppend struct {
	Log SendLog
}

type InputListByBatch struct {
	BatchID string `validate:"required"`
	Limit   int64  `validate:"required"`
}

type OutListByBatch struct {
	Total int64
	Logs  []SendLog
}

type InputStatsByBatch struct {
	BatchID string `validate:"required"`
}

type OutStatsByBatch struct {
	Stats BatchStats
}
