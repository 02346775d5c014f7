package sheetsvc

import (
	"context"
	"errors"
)

var (
	ErrValidation = errors.New("validation error")

	// ErrParse means the whole file is unreadable as tabular data.
	// Single bad rows never raise it, they are counted as skipped.
	ErrParse = errors.New("cannot parse sheet")
)

// Service is an interface of final business logic.
// Any input and output from/to this function should be SAFE for external party to consume,
// i.e: request or response from HTTP handler
type Service interface {
	ParseSheet(ctx context.Context, input InputParseSheet) (out OutParseSheet, err error)
	ValidateForSend(ctx context.Context, input InputValidateForSend) (out OutValidateForSend, err error)
}

// Recipient is one person to mail, produced by fanning out a sheet row
// per email address found in it.
type Recipient struct {
	Email      string `validate:"required"`
	Name       string `validate:"-"`
	Department string `validate:"-"`

	// Attachment is the primary resolved file, AllAttachments keeps
	// every resolved file in declaration order with Attachment first.
	Attachment     string   `validate:"-"`
	AllAttachments []string `validate:"-"`
}

// InputParseSheet reads the first sheet of the file at SheetPath.
// Column positions are the contract: 0 primary-group, 1 sub-group,
// 2 attachment path, 3 names, 4 emails. The header row is skipped.
type InputParseSheet struct {
	SheetPath string `validate:"required"`
}

type OutParseSheet struct {
	Recipients []Recipient
	Total      int
	Skipped    int
}

// InputValidateForSend re-checks recipients right before sending:
// strict anchored email, non-empty name, and at least one attachment
// still present in the pool. Excluded recipients are not re-counted
// into the parse-time skip statistics.
type InputValidateForSend struct {
	Recipients []Recipient `validate:"required"`
}

type OutValidateForSend struct {
	Valid    []Recipient
	Excluded []Recipient
}
