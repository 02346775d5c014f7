package uid

import (
	"fmt"
	"time"

	"github.com/sony/sonyflake"
)

// UID generates process-wide unique numeric id.
type UID interface {
	NextID() (uint64, error)
}

type Sonyflake struct {
	generator *sonyflake.Sonyflake
}

var _ UID = (*Sonyflake)(nil)

func NewSonyflake() (*Sonyflake, error) {
	gen := sonyflake.NewSonyflake(sonyflake.Settings{
		StartTime: time.Date(2021, 6, 28, 00, 00, 00, 00, time.UTC),
	})

	if gen == nil {
		return nil, fmt.Errorf("cannot create sonyflake generator")
	}

	return &Sonyflake{generator: gen}, nil
}

func (s *Sonyflake) NextID() (uint64, error) {
	return s.generator.NextID()
}
