package downloader

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Caches downloaded files on disk, one file per URL, so large static
// archives survive restarts. The file's modification time is when it
// was retrieved.
type Filesystem struct {
	Path    string
	TimeNow func() time.Time
	Logger  *slog.Logger

	mutex sync.Mutex
}

func NewFilesystem(path string) (*Filesystem, error) {
	err := os.MkdirAll(path, 0755)
	if err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	return &Filesystem{
		Path:    path,
		TimeNow: time.Now,
		Logger:  slog.Default(),
	}, nil
}

func (f *Filesystem) filename(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(f.Path, hex.EncodeToString(sum[:]))
}

func (f *Filesystem) Get(
	ctx context.Context,
	url string,
	headers map[string]string,
	options GetOptions,
) ([]byte, error) {

	f.mutex.Lock()
	defer f.mutex.Unlock()

	path := f.filename(url)

	if options.Cache {
		info, err := os.Stat(path)
		if err == nil {
			if info.ModTime().Add(options.CacheTTL).After(f.TimeNow()) {
				body, err := os.ReadFile(path)
				if err != nil {
					return nil, fmt.Errorf("reading cached file: %w", err)
				}
				f.Logger.Debug("archive cache hit", "url", url)
				return body, nil
			}
			f.Logger.Debug("archive cache expired", "url", url)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("checking cached file: %w", err)
		}
	}

	body, err := HTTPGet(ctx, url, headers, options)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}

	if options.Cache {
		err = f.save(path, body)
		if err != nil {
			return nil, fmt.Errorf("saving: %w", err)
		}
	}

	return body, nil
}

func (f *Filesystem) save(path string, body []byte) error {
	tmp := path + ".tmp"

	err := os.WriteFile(tmp, body, 0644)
	if err != nil {
		return fmt.Errorf("writing: %w", err)
	}

	now := f.TimeNow()
	err = os.Chtimes(tmp, now, now)
	if err != nil {
		return fmt.Errorf("setting mtime: %w", err)
	}

	err = os.Rename(tmp, path)
	if err != nil {
		return fmt.Errorf("renaming: %w", err)
	}

	return nil
}

// Removes the cached copy of url, if any.
func (f *Filesystem) Forget(url string) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	err := os.Remove(f.filename(url))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing cached file: %w", err)
	}
	return nil
}
