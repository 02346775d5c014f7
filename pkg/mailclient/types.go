package mailclient

import (
	"errors"
	"time"
)

var (
	// ErrConnect means the TCP or TLS handshake with the server failed.
	ErrConnect = errors.New("cannot connect to smtp server")

	// ErrAuth means the server rejected the credentials.
	ErrAuth = errors.New("smtp authentication failed")
)

// Credential holds everything needed to open one SMTP session.
// When both UseSSL and UseTLS are set, UseSSL wins: the connection is
// TLS from the first byte and no STARTTLS upgrade is attempted.
type Credential struct {
	Host     string `validate:"required"`
	Port     int    `validate:"required,min=1,max=65535"`
	Username string `validate:"required"`
	Password string `validate:"required"`
	UseSSL   bool
	UseTLS   bool

	// ConnectTimeout bounds dialing only, not the whole session.
	ConnectTimeout time.Duration
}
