// Package fontcatalog caches the generation service's font list for the
// lifetime of a session.
//
// The first successful fetch is kept and never refreshed. A failed fetch
// leaves the catalog unloaded, so validation keeps reporting the font field
// as pending until Load is called again and succeeds.
package fontcatalog

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"handwrite/logging"
	"handwrite/validation"
)

// Fetcher lists the fonts the service can render.
type Fetcher interface {
	ListFonts(ctx context.Context) ([]string, error)
}

// Catalog is safe for concurrent use. It implements validation.FontCatalog.
type Catalog struct {
	fetcher Fetcher
	logger  *logging.Logger

	// fetchMu serializes fetches so concurrent Load calls hit the service once.
	fetchMu sync.Mutex

	mu      sync.RWMutex
	fonts   []string
	index   map[string]struct{}
	loaded  bool
	lastErr error
}

// Option customizes a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates an unloaded catalog backed by fetcher.
func New(fetcher Fetcher, opts ...Option) *Catalog {
	c := &Catalog{
		fetcher: fetcher,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewLoaded creates a catalog that is already loaded with fonts and never
// fetches.
func NewLoaded(fonts []string) *Catalog {
	c := New(nil)
	c.store(fonts)
	return c
}

// Load fetches the font list unless it is already cached. Calling it again
// after a failure retries the fetch.
func (c *Catalog) Load(ctx context.Context) error {
	c.fetchMu.Lock()
	defer c.fetchMu.Unlock()

	if c.Loaded() {
		return nil
	}

	fonts, err := c.fetcher.ListFonts(ctx)
	if err != nil {
		c.mu.Lock()
		c.lastErr = err
		c.mu.Unlock()
		c.logger.Warn("font catalog unavailable", zap.Error(err))
		return err
	}

	c.store(fonts)
	c.logger.Info("font catalog loaded", zap.Int("count", len(fonts)))
	return nil
}

func (c *Catalog) store(fonts []string) {
	index := make(map[string]struct{}, len(fonts))
	for _, f := range fonts {
		index[f] = struct{}{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.fonts = append(make([]string, 0, len(fonts)), fonts...)
	c.index = index
	c.loaded = true
	c.lastErr = nil
}

// Loaded reports whether a fetch has succeeded.
func (c *Catalog) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Contains reports whether font is in the cached list. It is false while
// the catalog is unloaded.
func (c *Catalog) Contains(font string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.index[font]
	return ok
}

// Fonts returns the cached list in service order, or nil when unloaded.
func (c *Catalog) Fonts() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return nil
	}
	return append(make([]string, 0, len(c.fonts)), c.fonts...)
}

// Sorted returns the cached list in lexical order.
func (c *Catalog) Sorted() []string {
	fonts := c.Fonts()
	sort.Strings(fonts)
	return fonts
}

// Err returns the error of the most recent failed fetch, cleared once a
// fetch succeeds.
func (c *Catalog) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// Snapshot returns a fixed view for one validation pass. It is nil while the
// catalog is unloaded, which validation treats as pending.
func (c *Catalog) Snapshot() validation.FontCatalog {
	fonts := c.Fonts()
	if fonts == nil {
		return nil
	}
	return validation.Fonts(fonts)
}
