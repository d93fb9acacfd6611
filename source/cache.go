package source

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// Cache memoizes file contents and flattened results. A Cache may be
// shared by resolvers running concurrently, provided they share the same
// syntax row and suffix.
type Cache struct {
	files sync.Map // path -> file
	flat  sync.Map // flatKey -> string
}

type file struct {
	once sync.Once
	text string
	hash uint64
	err  error
}

// flatKey identifies a flattened body: the same content at the same path,
// resolved against the same base directory, flattens identically.
type flatKey struct {
	path string
	base string
	hash uint64
}

// NewCache returns an empty cache.
func NewCache() *Cache { return &Cache{} }

// exists reports whether path names a regular file.
func (c *Cache) exists(path string) (bool, error) {
	if _, ok := c.files.Load(path); ok {
		return true, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}

		return false, ErrReadSource.With(slog.String("path", path)).Wrap(err)
	}

	return info.Mode().IsRegular(), nil
}

// read returns the content of path and its xxh3 hash, reading the file at
// most once per cache.
func (c *Cache) read(ctx context.Context, path string) (string, uint64, error) {
	v, _ := c.files.LoadOrStore(path, &file{})
	f := v.(*file)

	f.once.Do(func() {
		if err := ctx.Err(); err != nil {
			f.err = err
			return
		}

		f.text, f.err = readFile(path)
		if f.err == nil {
			f.hash = xxh3.HashString(f.text)
		}
	})

	if f.err != nil {
		// Canceled reads are retried by the next caller.
		if errors.Is(f.err, context.Canceled) ||
			errors.Is(f.err, context.DeadlineExceeded) {
			c.files.CompareAndDelete(path, f)
		}

		return "", 0, f.err
	}

	return f.text, f.hash, nil
}

func (c *Cache) flattened(k flatKey) (string, bool) {
	if v, ok := c.flat.Load(k); ok {
		return v.(string), true
	}

	return "", false
}

func (c *Cache) store(k flatKey, text string) {
	c.flat.Store(k, text)
}

func readFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", ErrReadSource.With(slog.String("path", path)).Wrap(err)
	}
	defer f.Close()

	ra := readahead.NewReader(f)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return "", ErrReadSource.With(slog.String("path", path)).Wrap(err)
	}

	return string(data), nil
}
