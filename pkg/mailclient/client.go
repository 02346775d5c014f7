package mailclient

import (
	"context"
	"io"
)

// Session is one authenticated SMTP connection. It is reused for every
// message of a batch and must be closed exactly once by the owner.
type Session interface {
	io.Closer

	// Send transmits one already-composed RFC 5322 message.
	Send(ctx context.Context, from string, to string, msg []byte) error

	// Noop checks the connection is still alive.
	Noop() error
}

// Dialer opens and authenticates a Session. Connect and authentication
// failures are distinguishable via ErrConnect and ErrAuth.
type Dialer interface {
	Dial(ctx context.Context, cred Credential) (Session, error)
}
