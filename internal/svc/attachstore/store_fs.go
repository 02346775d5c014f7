package attachstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/yusufsyaifudin/ngirim/pkg/validator"
)

type FSStoreConfig struct {
	Dir string `validate:"required"`
}

// FSStore keeps attachments as flat files under one directory.
type FSStore struct {
	Config FSStoreConfig
}

var _ Store = (*FSStore)(nil)

func NewFS(conf FSStoreConfig) (store *FSStore, err error) {
	err = validator.Validate(conf)
	if err != nil {
		return nil, err
	}

	err = os.MkdirAll(conf.Dir, 0o755)
	if err != nil {
		err = fmt.Errorf("cannot create attachment dir %s: %w", conf.Dir, err)
		return nil, err
	}

	store = &FSStore{
		Config: conf,
	}
	return
}

func (f *FSStore) Save(ctx context.Context, in InputSave) (out OutSave, err error) {
	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	// drop any client-supplied directory part
	name := filepath.Base(filepath.ToSlash(in.Filename))
	if name == "." || name == "/" || name == "" {
		err = fmt.Errorf("%w: unusable filename %q", ErrValidation, in.Filename)
		return
	}

	dst, err := os.Create(filepath.Join(f.Config.Dir, name))
	if err != nil {
		err = fmt.Errorf("cannot create attachment file %s: %w", name, err)
		return
	}

	size, err := io.Copy(dst, in.Content)
	if err != nil {
		_ = dst.Close()
		err = fmt.Errorf("cannot write attachment file %s: %w", name, err)
		return
	}

	err = dst.Close()
	if err != nil {
		err = fmt.Errorf("cannot close attachment file %s: %w", name, err)
		return
	}

	out = OutSave{
		Filename: name,
		Size:     size,
	}
	return
}

func (f *FSStore) List(ctx context.Context) (out OutList, err error) {
	entries, err := os.ReadDir(f.Config.Dir)
	if err != nil {
		err = fmt.Errorf("cannot read attachment dir %s: %w", f.Config.Dir, err)
		return
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		names = append(names, entry.Name())
	}

	sort.Strings(names)
	out = OutList{
		Filenames: names,
	}
	return
}

func (f *FSStore) Open(ctx context.Context, in InputOpen) (out OutOpen, err error) {
	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	name := filepath.Base(filepath.ToSlash(in.Filename))
	file, err := os.Open(filepath.Join(f.Config.Dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		err = fmt.Errorf("%w: %s", ErrNotFound, name)
		return
	}

	if err != nil {
		err = fmt.Errorf("cannot open attachment file %s: %w", name, err)
		return
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		err = fmt.Errorf("cannot stat attachment file %s: %w", name, err)
		return
	}

	out = OutOpen{
		Content: file,
		Size:    info.Size(),
	}
	return
}

func (f *FSStore) Delete(ctx context.Context, in InputDelete) (out OutDelete, err error) {
	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	name := filepath.Base(filepath.ToSlash(in.Filename))
	err = os.Remove(filepath.Join(f.Config.Dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		out = OutDelete{
			Success: false,
		}

		err = nil // discard error
		return
	}

	if err != nil {
		err = fmt.Errorf("cannot remove attachment file %s: %w", name, err)
		return
	}

	out = OutDelete{
		Success: true,
	}
	return
}

func (f *FSStore) Clear(ctx context.Context) (out OutClear, err error) {
	list, err := f.List(ctx)
	if err != nil {
		return
	}

	for _, name := range list.Filenames {
		_err := os.Remove(filepath.Join(f.Config.Dir, name))
		if _err != nil {
			err = fmt.Errorf("cannot remove attachment file %s: %w", name, _err)
			return
		}

		out.Removed++
	}

	return
}
