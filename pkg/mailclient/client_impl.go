package mailclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"go.uber.org/multierr"

	"github.com/yusufsyaifudin/ngirim/pkg/validator"
)

// SMTPDialer opens sessions against a real SMTP server using the
// security mode declared by the Credential.
type SMTPDialer struct{}

var _ Dialer = (*SMTPDialer)(nil)

func NewSMTPDialer() *SMTPDialer {
	return &SMTPDialer{}
}

func (s *SMTPDialer) Dial(ctx context.Context, cred Credential) (sess Session, err error) {
	err = validator.Validate(cred)
	if err != nil {
		err = fmt.Errorf("%w: invalid credential: %s", ErrConnect, err)
		return
	}

	addr := fmt.Sprintf("%s:%d", cred.Host, cred.Port)
	netDialer := &net.Dialer{
		Timeout: cred.ConnectTimeout,
	}

	var conn net.Conn
	if cred.UseSSL {
		tlsDialer := &tls.Dialer{
			NetDialer: netDialer,
			Config: &tls.Config{
				ServerName: cred.Host,
			},
		}

		conn, err = tlsDialer.DialContext(ctx, "tcp", addr)
	} else {
		conn, err = netDialer.DialContext(ctx, "tcp", addr)
	}

	if err != nil {
		err = fmt.Errorf("%w: dial %s: %s", ErrConnect, addr, err)
		return
	}

	smtpClient, err := smtp.NewClient(conn, cred.Host)
	if err != nil {
		err = multierr.Append(
			fmt.Errorf("%w: smtp handshake %s: %s", ErrConnect, addr, err),
			conn.Close(),
		)
		return
	}

	if !cred.UseSSL && cred.UseTLS {
		err = smtpClient.StartTLS(&tls.Config{
			ServerName: cred.Host,
		})
		if err != nil {
			err = multierr.Append(
				fmt.Errorf("%w: starttls %s: %s", ErrConnect, addr, err),
				smtpClient.Close(),
			)
			return
		}
	}

	saslClient := sasl.NewPlainClient("", cred.Username, cred.Password)
	err = smtpClient.Auth(saslClient)
	if err != nil {
		err = multierr.Append(
			fmt.Errorf("%w: user %s: %s", ErrAuth, cred.Username, err),
			smtpClient.Close(),
		)
		return
	}

	err = smtpClient.Noop()
	if err != nil {
		err = multierr.Append(
			fmt.Errorf("%w: noop after auth %s: %s", ErrConnect, addr, err),
			smtpClient.Close(),
		)
		return
	}

	sess = &smtpSession{client: smtpClient}
	return
}

type smtpSession struct {
	client *smtp.Client
}

var _ Session = (*smtpSession)(nil)

func (s *smtpSession) Send(ctx context.Context, from string, to string, msg []byte) (err error) {
	select {
	case <-ctx.Done():
		err = fmt.Errorf("cannot send mail to %s: %w", to, ctx.Err())
		return
	default:
	}

	err = s.client.Reset()
	if err != nil {
		err = fmt.Errorf("cannot reset smtp session: %w", err)
		return
	}

	err = s.client.Mail(from, nil)
	if err != nil {
		err = fmt.Errorf("cannot issue mail command for %s: %w", from, err)
		return
	}

	err = s.client.Rcpt(to)
	if err != nil {
		err = fmt.Errorf("cannot issue rcpt command for %s: %w", to, err)
		return
	}

	w, err := s.client.Data()
	if err != nil {
		err = fmt.Errorf("cannot open data stream for %s: %w", to, err)
		return
	}

	_, err = w.Write(msg)
	if err != nil {
		err = multierr.Append(
			fmt.Errorf("cannot write message body for %s: %w", to, err),
			w.Close(),
		)
		return
	}

	err = w.Close()
	if err != nil {
		err = fmt.Errorf("cannot close data stream for %s: %w", to, err)
		return
	}

	return
}

func (s *smtpSession) Noop() error {
	return s.client.Noop()
}

// Close ends the session politely with Quit and only tears the
// connection down by force when the server does not answer it.
func (s *smtpSession) Close() error {
	var err error
	_err := s.client.Quit()
	if _err == nil {
		return nil
	}

	err = multierr.Append(err, fmt.Errorf("quit command error: %w", _err))
	_err = s.client.Close()
	if _err != nil {
		err = multierr.Append(err, fmt.Errorf("close command error: %w", _err))
	}

	return err
}
