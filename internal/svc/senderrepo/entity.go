package senderrepo

// SenderConfig is one saved SMTP account. Protected rows are the
// built-in provider presets and cannot be deleted.
// Json tag is used for caching.
type SenderConfig struct {
	ID          string `json:"id" db:"id" validate:"required"`
	Name        string `json:"name" db:"name" validate:"required"`
	SMTPHost    string `json:"smtp_host" db:"smtp_host" validate:"required"`
	SMTPPort    int    `json:"smtp_port" db:"smtp_port" validate:"required,min=1,max=65535"`
	SenderEmail string `json:"sender_email" db:"sender_email" validate:"-"`
	SenderName  string `json:"sender_name" db:"sender_name" validate:"-"`
	UseSSL      bool   `json:"use_ssl" db:"use_ssl" validate:"-"`
	UseTLS      bool   `json:"use_tls" db:"use_tls" validate:"-"`
	HTMLMode    bool   `json:"html_mode" db:"html_mode" validate:"-"`
	Protected   bool   `json:"protected" db:"protected" validate:"-"`

	// Timestamp using integer as unix microsecond in UTC
	CreatedAt int64 `json:"created_at" db:"created_at" validate:"required"`
	UpdatedAt int64 `json:"updated_at" db:"updated_at" validate:"required"`
}
