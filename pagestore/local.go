// Package pagestore provides a filesystem-backed PageStore implementation
// for pagecache.Manager: one file per logical object, created with
// O_RDWR|O_CREATE|O_EXCL on Put, os.MkdirAll on first touch. Each page body gets its own
// file under <dir>/<file_id>/<page_index>.page, so bodies of different
// sizes can coexist without a slotted page format.
package pagestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tuannm99/pagecache/pagecache"
)

const fileMode0644 = 0o644

// Local stores each page body as its own file under a root directory.
type Local struct {
	dir           string
	overheadRatio float64
	counter       byteCounter
	closed        bool
}

// NewLocal opens (creating if needed) a Local page store rooted at dir.
// overheadRatio is a configured estimate of filesystem/format overhead
// consumed once at Manager construction to size the effective cache
// budget.
func NewLocal(dir string, overheadRatio float64) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("pagestore: create root dir: %w", err)
	}
	s := &Local{dir: dir, overheadRatio: overheadRatio}

	pages, err := s.Pages()
	if err != nil {
		return nil, fmt.Errorf("pagestore: enumerate existing pages: %w", err)
	}
	var total int64
	for _, p := range pages {
		total += int64(p.PageSize)
	}
	s.counter.add(int(total))
	return s, nil
}

func (s *Local) pathFor(id pagecache.PageID) string {
	return filepath.Join(s.dir, id.FileID, strconv.FormatInt(id.PageIndex, 10)+".page")
}

// Put writes exactly len(body) bytes for id. Overwriting an existing page
// is disallowed.
func (s *Local) Put(id pagecache.PageID, body []byte) error {
	if s.closed {
		return pagecache.ErrClosed
	}
	path := s.pathFor(id)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("pagestore: mkdir for %s: %w", id, err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, fileMode0644)
	if err != nil {
		if os.IsExist(err) {
			return pagecache.ErrAlreadyExists
		}
		return fmt.Errorf("pagestore: open %s: %w", id, err)
	}
	defer closeFile(f)

	if _, err := f.Write(body); err != nil {
		return fmt.Errorf("pagestore: write %s: %w", id, err)
	}
	s.counter.add(len(body))
	return nil
}

// pageReader closes the backing *os.File when the caller is done reading.
type pageReader struct {
	f *os.File
	io.Reader
}

func (r *pageReader) Close() error { return r.f.Close() }

// Get returns a stream over id's body starting at offset.
func (s *Local) Get(id pagecache.PageID, offset int) (io.ReadCloser, error) {
	if s.closed {
		return nil, pagecache.ErrClosed
	}
	f, err := os.Open(s.pathFor(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, pagecache.ErrNotFound
		}
		return nil, fmt.Errorf("pagestore: open %s: %w", id, err)
	}
	if offset > 0 {
		if _, err := f.Seek(int64(offset), io.SeekStart); err != nil {
			f.Close()
			return nil, fmt.Errorf("pagestore: seek %s: %w", id, err)
		}
	}
	return &pageReader{f: f, Reader: f}, nil
}

// Delete removes the body stored for id. expectedSize guards against a
// stale caller acting on a size it no longer agrees with.
func (s *Local) Delete(id pagecache.PageID, expectedSize int) error {
	if s.closed {
		return pagecache.ErrClosed
	}
	path := s.pathFor(id)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return pagecache.ErrNotFound
		}
		return fmt.Errorf("pagestore: stat %s: %w", id, err)
	}
	if info.Size() != int64(expectedSize) {
		return pagecache.ErrSizeMismatch
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("pagestore: remove %s: %w", id, err)
	}
	s.counter.add(-expectedSize)
	return nil
}

// Bytes reports the current total stored bytes.
func (s *Local) Bytes() int64 {
	return s.counter.get()
}

// Pages walks the store's directory tree once, recovering a PageID and
// size for every page body found. Invoked at construction (and again by
// NewLocal to seed the byte counter) only.
func (s *Local) Pages() ([]pagecache.PageInfo, error) {
	fileDirs, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("pagestore: read root: %w", err)
	}

	var out []pagecache.PageInfo
	for _, fd := range fileDirs {
		if !fd.IsDir() {
			continue
		}
		fileID := fd.Name()
		entries, err := os.ReadDir(filepath.Join(s.dir, fileID))
		if err != nil {
			return nil, fmt.Errorf("pagestore: read %s: %w", fileID, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			name := strings.TrimSuffix(e.Name(), ".page")
			if name == e.Name() {
				continue // not a page file
			}
			idx, err := strconv.ParseInt(name, 10, 64)
			if err != nil {
				continue
			}
			info, err := e.Info()
			if err != nil {
				return nil, fmt.Errorf("pagestore: stat %s/%s: %w", fileID, e.Name(), err)
			}
			out = append(out, pagecache.PageInfo{
				PageID:   pagecache.PageID{FileID: fileID, PageIndex: idx},
				PageSize: int(info.Size()),
			})
		}
	}
	return out, nil
}

// OverheadRatio returns the configured filesystem/format overhead ratio.
func (s *Local) OverheadRatio() float64 {
	return s.overheadRatio
}

// Close marks the store closed. There is no single handle to release
// since each page is its own file; subsequent methods are undefined.
func (s *Local) Close() error {
	s.closed = true
	return nil
}

var _ pagecache.PageStore = (*Local)(nil)
