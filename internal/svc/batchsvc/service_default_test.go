package batchsvc_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yusufsyaifudin/ngirim/internal/storage"
	"github.com/yusufsyaifudin/ngirim/internal/svc/attachstore"
	"github.com/yusufsyaifudin/ngirim/internal/svc/batchsvc"
	"github.com/yusufsyaifudin/ngirim/internal/svc/sendlogrepo"
	"github.com/yusufsyaifudin/ngirim/internal/svc/senderrepo"
	"github.com/yusufsyaifudin/ngirim/internal/svc/sheetsvc"
	"github.com/yusufsyaifudin/ngirim/pkg/mailclient"
)

// fakeStore is an in-memory attachment pool where individual files
// can be made unopenable to exercise the mid-batch disappearance path.
type fakeStore struct {
	files     map[string][]byte
	openFails map[string]bool
}

var _ attachstore.Store = (*fakeStore)(nil)

func newFakeStore(names ...string) *fakeStore {
	s := &fakeStore{
		files:     make(map[string][]byte),
		openFails: make(map[string]bool),
	}

	for _, name := range names {
		s.files[name] = []byte("content of " + name)
	}

	return s
}

func (s *fakeStore) Save(ctx context.Context, in attachstore.InputSave) (attachstore.OutSave, error) {
	content, err := io.ReadAll(in.Content)
	if err != nil {
		return attachstore.OutSave{}, err
	}

	s.files[in.Filename] = content
	return attachstore.OutSave{Filename: in.Filename, Size: int64(len(content))}, nil
}

func (s *fakeStore) List(ctx context.Context) (attachstore.OutList, error) {
	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, name)
	}

	return attachstore.OutList{Filenames: names}, nil
}

func (s *fakeStore) Open(ctx context.Context, in attachstore.InputOpen) (attachstore.OutOpen, error) {
	if s.openFails[in.Filename] {
		return attachstore.OutOpen{}, fmt.Errorf("%w: %s", attachstore.ErrNotFound, in.Filename)
	}

	content, ok := s.files[in.Filename]
	if !ok {
		return attachstore.OutOpen{}, fmt.Errorf("%w: %s", attachstore.ErrNotFound, in.Filename)
	}

	return attachstore.OutOpen{
		Content: io.NopCloser(bytes.NewReader(content)),
		Size:    int64(len(content)),
	}, nil
}

func (s *fakeStore) Delete(ctx context.Context, in attachstore.InputDelete) (attachstore.OutDelete, error) {
	_, ok := s.files[in.Filename]
	delete(s.files, in.Filename)
	return attachstore.OutDelete{Success: ok}, nil
}

func (s *fakeStore) Clear(ctx context.Context) (attachstore.OutClear, error) {
	removed := len(s.files)
	s.files = make(map[string][]byte)
	return attachstore.OutClear{Removed: removed}, nil
}

type sentMessage struct {
	From string
	To   string
	Msg  []byte
}

type fakeSession struct {
	sent     []sentMessage
	sendErr  map[string]error // keyed by recipient email
	closed   int
	closeErr error
}

var _ mailclient.Session = (*fakeSession)(nil)

func (s *fakeSession) Send(ctx context.Context, from, to string, msg []byte) error {
	if err, ok := s.sendErr[to]; ok {
		return err
	}

	s.sent = append(s.sent, sentMessage{From: from, To: to, Msg: msg})
	return nil
}

func (s *fakeSession) Noop() error { return nil }

func (s *fakeSession) Close() error {
	s.closed++
	return s.closeErr
}

type fakeDialer struct {
	session *fakeSession
	err     error
	dials   int
}

var _ mailclient.Dialer = (*fakeDialer)(nil)

func (d *fakeDialer) Dial(ctx context.Context, cred mailclient.Credential) (mailclient.Session, error) {
	d.dials++
	if d.err != nil {
		return nil, d.err
	}

	return d.session, nil
}

type testEnv struct {
	svc    batchsvc.Service
	store  *fakeStore
	dialer *fakeDialer
	logs   sendlogrepo.Repo
}

func newEnv(t *testing.T, dialer *fakeDialer, store *fakeStore) testEnv {
	t.Helper()

	db, err := storage.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	senderRepo, err := senderrepo.SQLite(senderrepo.RepoSQLiteConfig{Connection: db})
	require.NoError(t, err)

	now := time.Now().UTC().UnixMicro()
	_, err = senderRepo.Save(context.Background(), senderrepo.InputSave{
		SenderConfig: senderrepo.SenderConfig{
			ID:          "cfg-1",
			Name:        "work",
			SMTPHost:    "smtp.example.com",
			SMTPPort:    465,
			SenderEmail: "noreply@example.com",
			SenderName:  "No Reply",
			UseSSL:      true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	})
	require.NoError(t, err)

	logRepo, err := sendlogrepo.SQLite(sendlogrepo.RepoSQLiteConfig{Connection: db})
	require.NoError(t, err)

	sheetSvc, err := sheetsvc.New(sheetsvc.DefaultServiceConfig{AttachStore: store})
	require.NoError(t, err)

	svc, err := batchsvc.New(batchsvc.DefaultServiceConfig{
		SheetService: sheetSvc,
		SenderRepo:   senderRepo,
		SendLogRepo:  logRepo,
		AttachStore:  store,
		Dialer:       dialer,
		Overrides:    batchsvc.BuiltinOverrides(),
	})
	require.NoError(t, err)

	return testEnv{svc: svc, store: store, dialer: dialer, logs: logRepo}
}

func recipientFixture(email, name, file string) sheetsvc.Recipient {
	return sheetsvc.Recipient{
		Email:          email,
		Name:           name,
		Department:     "NW Branch",
		Attachment:     file,
		AllAttachments: []string{file},
	}
}

func inputFixture(recipients ...sheetsvc.Recipient) batchsvc.InputSendBatch {
	return batchsvc.InputSendBatch{
		SenderConfigID: "cfg-1",
		Password:       "secret",
		Subject:        "Hello {{name}}",
		Content:        "Dear {{name}} of {{department}}",
		Recipients:     recipients,
	}
}

func TestDefaultService_SendBatch(t *testing.T) {
	t.Run("empty recipient set fails before connecting", func(t *testing.T) {
		dialer := &fakeDialer{session: &fakeSession{}}
		env := newEnv(t, dialer, newFakeStore("report.xlsx"))

		_, err := env.svc.SendBatch(context.Background(), inputFixture())
		assert.ErrorIs(t, err, batchsvc.ErrEmptyRecipients)
		assert.Zero(t, dialer.dials)
	})

	t.Run("all recipients filtered out fails before connecting", func(t *testing.T) {
		dialer := &fakeDialer{session: &fakeSession{}}
		env := newEnv(t, dialer, newFakeStore()) // pool is empty

		_, err := env.svc.SendBatch(context.Background(), inputFixture(
			recipientFixture("alice@x.com", "Alice", "report.xlsx"),
		))
		assert.ErrorIs(t, err, batchsvc.ErrEmptyRecipients)
		assert.Zero(t, dialer.dials)
	})

	t.Run("auth failure aborts with zero results", func(t *testing.T) {
		dialer := &fakeDialer{err: fmt.Errorf("%w: bad password", mailclient.ErrAuth)}
		env := newEnv(t, dialer, newFakeStore("report.xlsx"))

		out, err := env.svc.SendBatch(context.Background(), inputFixture(
			recipientFixture("alice@x.com", "Alice", "report.xlsx"),
		))
		assert.ErrorIs(t, err, mailclient.ErrAuth)
		assert.Empty(t, out.Results)
	})

	t.Run("happy path sends all and closes once", func(t *testing.T) {
		session := &fakeSession{}
		dialer := &fakeDialer{session: session}
		env := newEnv(t, dialer, newFakeStore("report.xlsx"))

		out, err := env.svc.SendBatch(context.Background(), inputFixture(
			recipientFixture("alice@x.com", "Alice", "report.xlsx"),
			recipientFixture("bob@x.com", "Bob", "report.xlsx"),
		))
		assert.NoError(t, err)
		assert.Equal(t, 2, out.Total)
		assert.Equal(t, 2, out.SuccessCount)
		assert.Zero(t, out.FailedCount)
		assert.Equal(t, 1, dialer.dials)
		assert.Equal(t, 1, session.closed)

		require.Len(t, session.sent, 2)
		assert.Equal(t, "noreply@example.com", session.sent[0].From)
		assert.Equal(t, "alice@x.com", session.sent[0].To)
		assert.Contains(t, string(session.sent[0].Msg), "report.xlsx")

		stats, err := env.logs.StatsByBatch(context.Background(), sendlogrepo.InputStatsByBatch{BatchID: out.BatchID})
		assert.NoError(t, err)
		assert.EqualValues(t, 2, stats.Stats.Success)
	})

	t.Run("transmit failure does not stop the batch", func(t *testing.T) {
		session := &fakeSession{
			sendErr: map[string]error{"bob@x.com": fmt.Errorf("mailbox full")},
		}
		dialer := &fakeDialer{session: session}
		env := newEnv(t, dialer, newFakeStore("report.xlsx"))

		out, err := env.svc.SendBatch(context.Background(), inputFixture(
			recipientFixture("alice@x.com", "Alice", "report.xlsx"),
			recipientFixture("bob@x.com", "Bob", "report.xlsx"),
			recipientFixture("carol@x.com", "Carol", "report.xlsx"),
		))
		assert.NoError(t, err)
		assert.Equal(t, 2, out.SuccessCount)
		assert.Equal(t, 1, out.FailedCount)

		require.Len(t, out.Results, 3)
		assert.Equal(t, sendlogrepo.StatusFailed, out.Results[1].Status)
		assert.Equal(t, sendlogrepo.StatusSuccess, out.Results[2].Status)
	})

	t.Run("unopenable attachment with another valid one still succeeds", func(t *testing.T) {
		session := &fakeSession{}
		dialer := &fakeDialer{session: session}
		store := newFakeStore("a.pdf", "b.pdf")
		store.openFails["a.pdf"] = true
		env := newEnv(t, dialer, store)

		recipient := recipientFixture("alice@x.com", "Alice", "a.pdf")
		recipient.AllAttachments = []string{"a.pdf", "b.pdf"}

		out, err := env.svc.SendBatch(context.Background(), inputFixture(recipient))
		assert.NoError(t, err)
		assert.Equal(t, 1, out.SuccessCount)

		require.Len(t, session.sent, 1)
		assert.Contains(t, string(session.sent[0].Msg), "b.pdf")
		assert.NotContains(t, string(session.sent[0].Msg), "content of a.pdf")
	})

	t.Run("no attachable file at all skips without transmitting", func(t *testing.T) {
		session := &fakeSession{}
		dialer := &fakeDialer{session: session}
		store := newFakeStore("a.pdf")
		store.openFails["a.pdf"] = true
		env := newEnv(t, dialer, store)

		out, err := env.svc.SendBatch(context.Background(), inputFixture(
			recipientFixture("alice@x.com", "Alice", "a.pdf"),
		))
		assert.NoError(t, err)
		assert.Zero(t, out.SuccessCount)
		assert.Equal(t, 1, out.SkippedCount)
		assert.Empty(t, session.sent)

		require.Len(t, out.Results, 1)
		assert.Equal(t, sendlogrepo.StatusSkipped, out.Results[0].Status)
	})

	t.Run("close error is swallowed", func(t *testing.T) {
		session := &fakeSession{closeErr: fmt.Errorf("connection reset")}
		dialer := &fakeDialer{session: session}
		env := newEnv(t, dialer, newFakeStore("report.xlsx"))

		out, err := env.svc.SendBatch(context.Background(), inputFixture(
			recipientFixture("alice@x.com", "Alice", "report.xlsx"),
		))
		assert.NoError(t, err)
		assert.Equal(t, 1, out.SuccessCount)
	})
}

func TestDefaultService_TestConnection(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		session := &fakeSession{}
		dialer := &fakeDialer{session: session}
		env := newEnv(t, dialer, newFakeStore())

		out, err := env.svc.TestConnection(context.Background(), batchsvc.InputTestConnection{
			SenderConfigID: "cfg-1",
			Password:       "secret",
		})
		assert.NoError(t, err)
		assert.True(t, out.Success)
		assert.Equal(t, "smtp.example.com", out.Host)
		assert.Equal(t, 1, session.closed)
	})

	t.Run("inline sender skips the stored config", func(t *testing.T) {
		session := &fakeSession{}
		dialer := &fakeDialer{session: session}
		env := newEnv(t, dialer, newFakeStore())

		out, err := env.svc.TestConnection(context.Background(), batchsvc.InputTestConnection{
			Sender: &batchsvc.InlineSender{
				SMTPHost:    "mail.inline.test",
				SMTPPort:    587,
				SenderEmail: "me@inline.test",
				UseTLS:      true,
			},
			Password: "secret",
		})
		assert.NoError(t, err)
		assert.True(t, out.Success)
		assert.Equal(t, "mail.inline.test", out.Host)
		assert.Equal(t, 587, out.Port)
	})

	t.Run("connect failure propagates", func(t *testing.T) {
		dialer := &fakeDialer{err: fmt.Errorf("%w: refused", mailclient.ErrConnect)}
		env := newEnv(t, dialer, newFakeStore())

		_, err := env.svc.TestConnection(context.Background(), batchsvc.InputTestConnection{
			SenderConfigID: "cfg-1",
			Password:       "secret",
		})
		assert.ErrorIs(t, err, mailclient.ErrConnect)
	})
}
