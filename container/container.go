package container

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/multierr"

	"github.com/yusufsyaifudin/ngirim/config"
	"github.com/yusufsyaifudin/ngirim/internal/storage"
	"github.com/yusufsyaifudin/ngirim/internal/svc/attachstore"
	"github.com/yusufsyaifudin/ngirim/internal/svc/sendlogrepo"
	"github.com/yusufsyaifudin/ngirim/internal/svc/senderrepo"
	"github.com/yusufsyaifudin/ngirim/internal/svc/tmplrepo"
	"github.com/yusufsyaifudin/ngirim/pkg/cache"
)

const senderCacheExpiry = 10 * time.Minute

// Container is an abstraction layer to be used in use-case to stitch all business logic.
// Use this when you pass into another struct.
type Container interface {
	TemplateRepo() (tmplrepo.Repo, error)
	SenderRepo() (senderrepo.Repo, error)
	SendLogRepo() (sendlogrepo.Repo, error)
	AttachStore() (attachstore.Store, error)
}

// DefaultContainerImpl the real implementation of Container
type DefaultContainerImpl struct {
	ctx     context.Context     `validate:"required"`
	cfg     *config.Config      `validate:"required,structonly"`
	dbConn  *sqlx.DB            `validate:"required"`
	query   sqlx.QueryerContext `validate:"required"`
	mem     cache.Cache         `validate:"required"`
	closers []Closer            `validate:"-"`
}

// Ensure that DefaultContainerImpl implements Container
var _ Container = (*DefaultContainerImpl)(nil)

// Setup return pointer because it heavily used.
// This will initialize all required dependencies to run.
// This will return DefaultContainerImpl instead Container,
// the reason is when Setup called it must be close in deferred mode, any passed value using interface
// won't let user Close any dependencies during run-time.
func Setup(ctx context.Context, conf *config.Config) (*DefaultContainerImpl, error) {
	dbConn, err := storage.OpenSQLite(ctx, conf.Database.DSN)
	if err != nil {
		return nil, err
	}

	var query sqlx.QueryerContext = dbConn
	if conf.Database.Debug {
		query, err = storage.WrapWithLog(dbConn)
		if err != nil {
			return nil, multierr.Append(err, dbConn.Close())
		}
	}

	mem, err := cache.NewInMemory()
	if err != nil {
		return nil, multierr.Append(err, dbConn.Close())
	}

	dep := &DefaultContainerImpl{
		ctx:    ctx,
		cfg:    conf,
		dbConn: dbConn,
		query:  query,
		mem:    mem,
		closers: []Closer{
			NewNamedCloser("sqlite", dbConn),
		},
	}

	err = validator.New().Struct(dep)
	if err != nil {
		return nil, multierr.Append(err, dbConn.Close())
	}

	return dep, nil
}

func (a *DefaultContainerImpl) TemplateRepo() (tmplrepo.Repo, error) {
	return tmplrepo.SQLite(tmplrepo.RepoSQLiteConfig{
		Connection: a.query,
	})
}

// SenderRepo layers the in-memory cache over the sqlite rows since
// sender configs are read on every batch but rarely change.
func (a *DefaultContainerImpl) SenderRepo() (senderrepo.Repo, error) {
	persistent, err := senderrepo.SQLite(senderrepo.RepoSQLiteConfig{
		Connection: a.query,
	})
	if err != nil {
		return nil, err
	}

	return senderrepo.NewCached(senderrepo.CachedConfig{
		Persistent:     persistent,
		CacheExpiry:    senderCacheExpiry,
		CachePrefixKey: "sendercfg",
		Cache:          a.mem,
	})
}

func (a *DefaultContainerImpl) SendLogRepo() (sendlogrepo.Repo, error) {
	return sendlogrepo.SQLite(sendlogrepo.RepoSQLiteConfig{
		Connection: a.query,
	})
}

func (a *DefaultContainerImpl) AttachStore() (attachstore.Store, error) {
	return attachstore.NewFS(attachstore.FSStoreConfig{
		Dir: a.cfg.Dirs.Attachments,
	})
}

// Close will close all dependencies.
func (a *DefaultContainerImpl) Close() error {
	var err error
	for _, closer := range a.closers {
		if _err := closer.Close(); _err != nil {
			err = multierr.Append(err, fmt.Errorf("close %s error: %w", closer.Name(), _err))
		}
	}

	return err
}
