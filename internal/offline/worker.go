package offline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"sync"

	"github.com/cheerioskun/textfinder/internal/utils"
)

// CacheName is the versioned name of the current asset cache. Bumping it
// makes the next activation drop every older cache.
const CacheName = "folder-text-finder-v1"

// PrecacheURLs are fetched on install
var PrecacheURLs = []string{
	"/",
	"/static/styles.css",
	"/static/app.js",
	"/static/manifest.json",
	"/static/icons/icon.png",
	"/static/icons/icon-192.png",
	"/static/icons/icon-512.png",
}

// apiMarker marks requests that always go to the network
const apiMarker = "/api/"

// State is the lifecycle stage of the worker
type State int

const (
	StateInstalling State = iota
	StateActive
	StateServing
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInstalling:
		return "installing"
	case StateActive:
		return "active"
	case StateServing:
		return "serving"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Worker fronts the upstream server: intercepted requests are answered from
// the current cache when possible, everything else is proxied.
type Worker struct {
	upstream  *url.URL
	store     *Store
	client    *http.Client
	proxy     *httputil.ReverseProxy
	cacheName string
	precache  []string

	mu    sync.RWMutex
	state State
}

// Option customizes a Worker
type Option func(*Worker)

// WithHTTPClient sets the client used for precache fetches
func WithHTTPClient(c *http.Client) Option {
	return func(w *Worker) { w.client = c }
}

// WithCacheName overrides the versioned cache name
func WithCacheName(name string) Option {
	return func(w *Worker) { w.cacheName = name }
}

// WithPrecache overrides the install URL list
func WithPrecache(urls []string) Option {
	return func(w *Worker) { w.precache = urls }
}

// NewWorker creates a worker in front of upstream
func NewWorker(upstream string, store *Store, opts ...Option) (*Worker, error) {
	u, err := url.Parse(upstream)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream %q: %w", upstream, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid upstream %q: scheme and host required", upstream)
	}

	w := &Worker{
		upstream:  u,
		store:     store,
		client:    http.DefaultClient,
		cacheName: CacheName,
		precache:  PrecacheURLs,
		state:     StateInstalling,
	}
	for _, opt := range opts {
		opt(w)
	}

	w.proxy = httputil.NewSingleHostReverseProxy(u)
	w.proxy.ErrorHandler = func(rw http.ResponseWriter, r *http.Request, err error) {
		utils.Warning("Upstream request %s %s failed: %v", r.Method, r.URL.RequestURI(), err)
		rw.WriteHeader(http.StatusBadGateway)
	}

	return w, nil
}

// State returns the current lifecycle state
func (w *Worker) State() State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

func (w *Worker) setState(s State) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = s
}

// CacheName returns the name of the cache the worker installs into
func (w *Worker) CacheName() string {
	return w.cacheName
}

// Start installs and then activates the worker
func (w *Worker) Start(ctx context.Context) error {
	if err := w.Install(ctx); err != nil {
		return err
	}
	return w.Activate(ctx)
}

// Install fetches every precache URL into a staging cache and commits it
// under the current name. A single failed fetch fails the install and
// commits nothing.
func (w *Worker) Install(ctx context.Context) error {
	w.setState(StateInstalling)

	unlock, err := w.store.Lock(ctx)
	if err != nil {
		w.setState(StateFailed)
		return err
	}
	defer unlock()

	staged := w.store.Stage()
	for _, path := range w.precache {
		if err := w.fetchInto(ctx, staged, path); err != nil {
			if derr := w.store.Discard(staged); derr != nil {
				utils.Warning("Failed to discard staged cache: %v", derr)
			}
			w.setState(StateFailed)
			utils.Error("Cache install failed: %v", err)
			return fmt.Errorf("install failed: %w", err)
		}
	}

	if err := w.store.Commit(staged, w.cacheName); err != nil {
		w.setState(StateFailed)
		utils.Error("Cache install failed: %v", err)
		return fmt.Errorf("install failed: %w", err)
	}

	utils.Info("Opened cache %s with %d asset(s)", w.cacheName, len(w.precache))
	return nil
}

func (w *Worker) fetchInto(ctx context.Context, cache *Cache, path string) error {
	ref, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("invalid precache url %q: %w", path, err)
	}
	target := w.upstream.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return err
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: unexpected status %s", path, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}

	return cache.Put(ref, resp.StatusCode, resp.Header, body)
}

// Activate deletes every cache whose name is not the current one
func (w *Worker) Activate(ctx context.Context) error {
	if w.State() == StateFailed {
		return fmt.Errorf("cannot activate after a failed install")
	}

	unlock, err := w.store.Lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	names, err := w.store.Names()
	if err != nil {
		return err
	}
	for _, name := range names {
		if name == w.cacheName {
			continue
		}
		utils.Info("Deleting old cache: %s", name)
		if err := w.store.Delete(name); err != nil {
			return err
		}
	}

	w.setState(StateActive)
	return nil
}

// Intercepts reports whether a request is answered cache-first
func Intercepts(r *http.Request) bool {
	return r.Method == http.MethodGet && !strings.Contains(r.URL.RequestURI(), apiMarker)
}

// ServeHTTP answers intercepted requests from the cache, falling back to the
// network. Requests arriving before activation go straight to the network.
func (w *Worker) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	state := w.State()
	if !Intercepts(r) || (state != StateActive && state != StateServing) {
		w.proxy.ServeHTTP(rw, r)
		return
	}

	if state == StateActive {
		w.setState(StateServing)
	}

	entry, body, ok, err := w.store.Open(w.cacheName).Match(r.URL)
	if err != nil {
		utils.Warning("Cache lookup for %s failed: %v", r.URL.RequestURI(), err)
	}
	if !ok {
		w.proxy.ServeHTTP(rw, r)
		return
	}

	utils.Debug("Serving %s from cache", r.URL.RequestURI())
	for k, vs := range entry.Header {
		for _, v := range vs {
			rw.Header().Add(k, v)
		}
	}
	rw.WriteHeader(entry.Status)
	_, _ = rw.Write(body)
}
