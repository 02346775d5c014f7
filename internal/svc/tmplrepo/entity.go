package tmplrepo

// Template is one reusable email template. Subject and Content may
// carry {{name}}, {{email}} and {{department}} placeholders which are
// substituted per recipient at send time.
// Json tag is used for caching.
type Template struct {
	ID       int64  `json:"id" db:"id" validate:"required"`
	Name     string `json:"name" db:"name" validate:"required"`
	Subject  string `json:"subject" db:"subject" validate:"-"`
	Content  string `json:"content" db:"content" validate:"-"`
	HTMLMode bool   `json:"html_mode" db:"html_mode" validate:"-"`

	// Timestamp using integer as unix microsecond in UTC
	CreatedAt int64 `json:"created_at" db:"created_at" validate:"required"`
	UpdatedAt int64 `json:"updated_at" db:"updated_at" validate:"required"`
}
