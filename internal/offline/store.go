// Package offline keeps a versioned copy of the web client's static assets
// and serves them cache-first in front of the search server.
package offline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/zeebo/xxh3"
)

const (
	stagingPrefix = ".staging-"
	lockFileName  = ".lock"
	metaSuffix    = ".json"
	bodySuffix    = ".body"
)

// Store is a directory of named caches. Each cache is a subdirectory holding
// one metadata file and one body file per stored response.
type Store struct {
	fs   afero.Fs
	root string
	lock *flock.Flock // nil unless the store lives on the OS filesystem
}

// NewStore creates a store rooted at dir. On the OS filesystem a lock file
// guards the store against a second process.
func NewStore(fs afero.Fs, dir string) *Store {
	s := &Store{fs: fs, root: filepath.Clean(dir)}
	if _, ok := fs.(*afero.OsFs); ok {
		s.lock = flock.New(filepath.Join(s.root, lockFileName))
	}
	return s
}

// Root returns the store directory
func (s *Store) Root() string {
	return s.root
}

// Lock takes the cross-process store lock, retrying until ctx is done. The
// returned func releases it.
func (s *Store) Lock(ctx context.Context) (func(), error) {
	if err := s.fs.MkdirAll(s.root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir %s: %w", s.root, err)
	}
	if s.lock == nil {
		return func() {}, nil
	}

	ok, err := s.lock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("failed to lock cache dir %s: %w", s.root, err)
	}
	if !ok {
		return nil, fmt.Errorf("cache dir %s is locked by another process", s.root)
	}
	return func() { _ = s.lock.Unlock() }, nil
}

// Names lists the committed caches, sorted
func (s *Store) Names() ([]string, error) {
	infos, err := afero.ReadDir(s.fs, s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list caches: %w", err)
	}

	var names []string
	for _, info := range infos {
		if info.IsDir() && !strings.HasPrefix(info.Name(), ".") {
			names = append(names, info.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Has reports whether a committed cache exists
func (s *Store) Has(name string) bool {
	ok, err := afero.DirExists(s.fs, filepath.Join(s.root, name))
	return err == nil && ok
}

// Open returns the named cache, creating it on first write
func (s *Store) Open(name string) *Cache {
	return &Cache{fs: s.fs, name: name, dir: filepath.Join(s.root, name)}
}

// Delete removes a cache and everything in it
func (s *Store) Delete(name string) error {
	if err := s.fs.RemoveAll(filepath.Join(s.root, name)); err != nil {
		return fmt.Errorf("failed to delete cache %s: %w", name, err)
	}
	return nil
}

// Stage opens a fresh, uniquely named cache that is invisible to Names
// until committed
func (s *Store) Stage() *Cache {
	return s.Open(stagingPrefix + uuid.New().String())
}

// Commit replaces the named cache with the staged one
func (s *Store) Commit(staged *Cache, name string) error {
	target := s.Open(name)
	if err := s.Delete(name); err != nil {
		return err
	}
	if err := s.fs.MkdirAll(target.dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache %s: %w", name, err)
	}

	infos, err := afero.ReadDir(s.fs, staged.dir)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read staged cache: %w", err)
	}
	for _, info := range infos {
		data, err := afero.ReadFile(s.fs, filepath.Join(staged.dir, info.Name()))
		if err != nil {
			return fmt.Errorf("failed to read staged entry %s: %w", info.Name(), err)
		}
		if err := afero.WriteFile(s.fs, filepath.Join(target.dir, info.Name()), data, 0644); err != nil {
			return fmt.Errorf("failed to write cache entry %s: %w", info.Name(), err)
		}
	}

	return s.Discard(staged)
}

// Discard drops a staged cache
func (s *Store) Discard(staged *Cache) error {
	return s.Delete(staged.name)
}

// Entry is the stored metadata of a cached response
type Entry struct {
	URL      string      `json:"url"`
	Status   int         `json:"status"`
	Header   http.Header `json:"header"`
	StoredAt time.Time   `json:"stored_at"`
}

// Cache is one named response cache
type Cache struct {
	fs   afero.Fs
	name string
	dir  string
}

// Name returns the cache name
func (c *Cache) Name() string {
	return c.name
}

// Key identifies a request URL within a cache. Only path and query take part,
// so the same asset matches regardless of the host it was requested through.
func Key(u *url.URL) string {
	k := u.EscapedPath()
	if k == "" {
		k = "/"
	}
	if u.RawQuery != "" {
		k += "?" + u.RawQuery
	}
	return fmt.Sprintf("%016x", xxh3.HashString(k))
}

// Put stores a response body under the request URL
func (c *Cache) Put(u *url.URL, status int, header http.Header, body []byte) error {
	if err := c.fs.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache %s: %w", c.name, err)
	}

	key := Key(u)
	meta, err := json.Marshal(Entry{
		URL:      u.String(),
		Status:   status,
		Header:   header.Clone(),
		StoredAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	if err := afero.WriteFile(c.fs, filepath.Join(c.dir, key+bodySuffix), body, 0644); err != nil {
		return fmt.Errorf("failed to write cache body: %w", err)
	}
	if err := afero.WriteFile(c.fs, filepath.Join(c.dir, key+metaSuffix), meta, 0644); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Match looks up a stored response. A missing entry is not an error.
func (c *Cache) Match(u *url.URL) (*Entry, []byte, bool, error) {
	key := Key(u)

	meta, err := afero.ReadFile(c.fs, filepath.Join(c.dir, key+metaSuffix))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, false, nil
		}
		return nil, nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(meta, &entry); err != nil {
		return nil, nil, false, fmt.Errorf("corrupt cache entry %s: %w", key, err)
	}

	body, err := afero.ReadFile(c.fs, filepath.Join(c.dir, key+bodySuffix))
	if err != nil {
		return nil, nil, false, fmt.Errorf("failed to read cache body: %w", err)
	}
	return &entry, body, true, nil
}

// Entries lists the stored entries
func (c *Cache) Entries() ([]Entry, error) {
	infos, err := afero.ReadDir(c.fs, c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []Entry
	for _, info := range infos {
		if !strings.HasSuffix(info.Name(), metaSuffix) {
			continue
		}
		data, err := afero.ReadFile(c.fs, filepath.Join(c.dir, info.Name()))
		if err != nil {
			return nil, err
		}
		var e Entry
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("corrupt cache entry %s: %w", info.Name(), err)
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].URL < entries[j].URL })
	return entries, nil
}
