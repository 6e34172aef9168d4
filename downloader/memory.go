package downloader

import (
	"context"
	"sync"
	"time"
)

// Keeps downloaded files in process memory. Expired copies are swept
// whenever a new one is stored.
type MemoryDownloader struct {
	TimeNow func() time.Time

	mutex sync.RWMutex
	files map[string]memoryFile
}

type memoryFile struct {
	body      []byte
	expiresAt time.Time
}

func NewMemoryDownloader() *MemoryDownloader {
	return &MemoryDownloader{
		TimeNow: time.Now,
		files:   map[string]memoryFile{},
	}
}

func (d *MemoryDownloader) lookup(url string) ([]byte, bool) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	file, found := d.files[url]
	if !found || !d.TimeNow().Before(file.expiresAt) {
		return nil, false
	}
	return file.body, true
}

func (d *MemoryDownloader) store(url string, body []byte, ttl time.Duration) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	now := d.TimeNow()
	for u, file := range d.files {
		if !now.Before(file.expiresAt) {
			delete(d.files, u)
		}
	}

	d.files[url] = memoryFile{body: body, expiresAt: now.Add(ttl)}
}

func (d *MemoryDownloader) Get(
	ctx context.Context,
	url string,
	headers map[string]string,
	options GetOptions,
) ([]byte, error) {
	if options.Cache {
		if body, ok := d.lookup(url); ok {
			return body, nil
		}
	}

	body, err := HTTPGet(ctx, url, headers, options)
	if err != nil {
		return nil, err
	}

	if options.Cache {
		d.store(url, body, options.CacheTTL)
	}

	return body, nil
}

func (d *MemoryDownloader) Forget(url string) error {
	d.mutex.Lock()
	delete(d.files, url)
	d.mutex.Unlock()
	return nil
}

// Number of copies held, expired or not.
func (d *MemoryDownloader) Len() int {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	return len(d.files)
}
