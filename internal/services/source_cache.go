package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"ordersdash/internal/dataprocessing"
	apperrors "ordersdash/internal/errors"
	"ordersdash/pkg/contracts/domain"
)

// Source is one input file: either a path on disk or uploaded content
type Source struct {
	// Name is the file name used to pick the format, e.g. "Summary.xlsx"
	Name  string
	Path  string
	Data  []byte
	Sheet string
}

// FileSource describes a source read from disk
func FileSource(path, sheet string) Source {
	return Source{Name: filepath.Base(path), Path: path, Sheet: sheet}
}

// UploadSource describes uploaded content
func UploadSource(name string, data []byte) Source {
	return Source{Name: name, Data: data}
}

// identity keys the cache: files by absolute path, size and modification
// time, uploads by content hash. A changed file gets a new identity.
func (s Source) identity() (string, error) {
	if s.Path == "" {
		sum := sha256.Sum256(s.Data)
		return fmt.Sprintf("upload:%s:%s:%s", hex.EncodeToString(sum[:]), filepath.Ext(s.Name), s.Sheet), nil
	}

	abs, err := filepath.Abs(s.Path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", apperrors.NewNotFoundError("source file " + s.Path)
		}
		return "", apperrors.NewStorageError("failed to stat source", err).WithContext("path", s.Path)
	}
	return fmt.Sprintf("file:%s:%d:%d:%s", abs, info.Size(), info.ModTime().UnixNano(), s.Sheet), nil
}

// CacheRecorder counts cache hits and misses
type CacheRecorder interface {
	RecordCacheLookup(ctx context.Context, hit bool)
}

// SourceCache memoizes raw source loads. Concurrent loads of the same source
// share one read. Cached tables are shared between callers and must not be
// modified.
type SourceCache struct {
	entries  *lru.Cache[string, domain.Table]
	group    singleflight.Group
	recorder CacheRecorder
	logger   *slog.Logger
}

// NewSourceCache creates a cache holding up to capacity tables. A capacity
// below one disables caching but still collapses concurrent loads.
func NewSourceCache(capacity int, recorder CacheRecorder, logger *slog.Logger) (*SourceCache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &SourceCache{
		recorder: recorder,
		logger:   logger.With(slog.String("component", "source_cache")),
	}
	if capacity > 0 {
		entries, err := lru.New[string, domain.Table](capacity)
		if err != nil {
			return nil, fmt.Errorf("failed to create source cache: %w", err)
		}
		c.entries = entries
	}
	return c, nil
}

// Load returns the raw table of src
func (c *SourceCache) Load(ctx context.Context, src Source) (domain.Table, error) {
	key, err := src.identity()
	if err != nil {
		return domain.Table{}, err
	}

	if c.entries != nil {
		if t, ok := c.entries.Get(key); ok {
			c.record(ctx, true)
			return t, nil
		}
	}
	c.record(ctx, false)

	ch := c.group.DoChan(key, func() (any, error) {
		start := time.Now()
		t, err := loadSource(src)
		if err != nil {
			return domain.Table{}, err
		}
		if c.entries != nil {
			c.entries.Add(key, t)
		}
		c.logger.Info("source loaded",
			slog.String("name", src.Name),
			slog.Int("rows", t.Len()),
			slog.Int("columns", len(t.Columns)),
			slog.Duration("duration", time.Since(start)))
		return t, nil
	})

	select {
	case <-ctx.Done():
		return domain.Table{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.Table{}, res.Err
		}
		return res.Val.(domain.Table), nil
	}
}

// Len returns the number of cached tables
func (c *SourceCache) Len() int {
	if c.entries == nil {
		return 0
	}
	return c.entries.Len()
}

// Purge drops every cached table
func (c *SourceCache) Purge() {
	if c.entries != nil {
		c.entries.Purge()
	}
}

func (c *SourceCache) record(ctx context.Context, hit bool) {
	if c.recorder != nil {
		c.recorder.RecordCacheLookup(ctx, hit)
	}
}

func loadSource(src Source) (domain.Table, error) {
	opts := dataprocessing.LoadOptions{Sheet: src.Sheet}
	if src.Path != "" {
		return dataprocessing.LoadFile(src.Path, opts)
	}
	return dataprocessing.LoadReader(src.Name, bytes.NewReader(src.Data), opts)
}
