package sendlogrepo

// Statuses for one recipient outcome within a batch.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// SendLog is one per-recipient outcome row.
type SendLog struct {
	ID             int64  `db:"id"`
	BatchID        string `db:"batch_id" validate:"required"`
	RecipientEmail string `db:"recipient_email" validate:"required"`
	RecipientName  string `db:"recipient_name" validate:"-"`
	Subject        string `db:"subject" validate:"-"`
	Status         string `db:"status" validate:"required,oneof=success failed skipped"`
	Message        string `db:"message" validate:"-"`

	// Timestamp using integer as unix microsecond in UTC
	SentAt int64 `db:"sent_at" validate:"required"`
}

// BatchStats aggregates one batch by status.
type BatchStats struct {
	BatchID string
	Total   int64
	Success int64
	Failed  int64
	Skipped int64
}
