package senderrepo

// DefaultPresets are the built-in provider accounts seeded on startup.
// They carry stable ids so reseeding is idempotent across restarts.
func DefaultPresets(now int64) []SenderConfig {
	return []SenderConfig{
		{
			ID:        "preset-qq",
			Name:      "QQ Mail",
			SMTPHost:  "smtp.qq.com",
			SMTPPort:  465,
			UseSSL:    true,
			Protected: true,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:        "preset-163",
			Name:      "163 Mail",
			SMTPHost:  "smtp.163.com",
			SMTPPort:  465,
			UseSSL:    true,
			Protected: true,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:        "preset-139",
			Name:      "139 Mail",
			SMTPHost:  "smtp.139.com",
			SMTPPort:  465,
			UseSSL:    true,
			Protected: true,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:        "preset-gmail",
			Name:      "Gmail",
			SMTPHost:  "smtp.gmail.com",
			SMTPPort:  587,
			UseTLS:    true,
			Protected: true,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}
