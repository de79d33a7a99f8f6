package listing

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/PIUMYOMIN/ekaro-sub002/internal/domain"
	"github.com/PIUMYOMIN/ekaro-sub002/internal/remote"
)

// Options configures a listing Controller
type Options struct {
	PageSize        int
	SearchDebounce  time.Duration
	ScrollThreshold int
	// OnAuthExpired is invoked when a fetch fails because the session is no
	// longer valid, so the embedding UI can redirect to re-authentication.
	OnAuthExpired func()
}

func (o Options) withDefaults() Options {
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if o.SearchDebounce <= 0 {
		o.SearchDebounce = 500 * time.Millisecond
	}
	if o.ScrollThreshold <= 0 {
		o.ScrollThreshold = 500
	}
	return o
}

// Controller synchronizes the URL query, the committed filter state and the
// fetched product list. At most one listing fetch is in flight at a time;
// every filter mutation funnels through the Navigator, and the resulting
// location change is the only trigger that schedules a refetch.
type Controller struct {
	svc    remote.Service
	nav    Navigator
	logger *zap.Logger
	opts   Options

	debounce *Debouncer

	mu       sync.Mutex
	query    Query
	page     int // last successfully loaded page, 0 before the first fetch
	gen      uint64
	items    []domain.Product
	seen     map[domain.ID]struct{}
	hasMore  bool
	fetching bool
	started  bool
	lastErr  error
}

// NewController creates a listing controller. Call Start to run the initial
// fetch, and wire the navigator's change notifications to
// HandleLocationChange.
func NewController(svc remote.Service, nav Navigator, opts Options, logger *zap.Logger) *Controller {
	opts = opts.withDefaults()
	return &Controller{
		svc:      svc,
		nav:      nav,
		logger:   logger,
		opts:     opts,
		debounce: NewDebouncer(opts.SearchDebounce),
		seen:     make(map[domain.ID]struct{}),
		hasMore:  true,
	}
}

// Start derives the committed query from the current location and runs the
// initial fetch. It is idempotent: a second call (a framework's double
// mount) is a no-op.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.query = ParseQuery(c.nav.Location())
	c.gen++
	c.mu.Unlock()

	c.fetchPage(ctx, true)
}

// HandleLocationChange reacts to a navigation (including browser
// back/forward): it re-derives the query and fetches a fresh first page.
// A navigation that does not change the committed query is ignored.
func (c *Controller) HandleLocationChange(ctx context.Context, locationSearch string) {
	q := ParseQuery(locationSearch)

	c.mu.Lock()
	if !c.started || q == c.query {
		c.mu.Unlock()
		return
	}
	c.query = q
	c.page = 0
	c.gen++
	c.mu.Unlock()

	c.fetchPage(ctx, true)
}

// CommitFilterChange merges a partial filter change into the committed query
// and navigates to the resulting URL. Fetching is left entirely to the
// location-change reaction, which keeps the URL shareable and back/forward
// navigation faithful.
func (c *Controller) CommitFilterChange(change Change) {
	c.mu.Lock()
	merged := Merge(c.query, change)
	c.mu.Unlock()

	c.nav.Navigate(merged.String())
}

// CommitSearchChange is CommitFilterChange for the search box: rapid
// keystrokes collapse into a single trailing navigation.
func (c *Controller) CommitSearchChange(text string) {
	c.debounce.Do(func() {
		c.CommitFilterChange(Change{Search: &text})
	})
}

// HandleScroll advances to the next page when the viewport is within the
// scroll threshold of the bottom. This is the only path that increments the
// page; a committed-query change always resets it.
func (c *Controller) HandleScroll(ctx context.Context, distanceToBottom int) {
	if distanceToBottom > c.opts.ScrollThreshold {
		return
	}

	c.mu.Lock()
	skip := c.fetching || !c.hasMore || !c.started
	c.mu.Unlock()
	if skip {
		return
	}

	c.fetchPage(ctx, false)
}

// fetchPage requests one page for the committed query. The in-flight guard
// makes overlapping calls no-ops; a result that arrives after a newer commit
// is discarded and replaced by a fresh first-page fetch.
func (c *Controller) fetchPage(ctx context.Context, reset bool) {
	c.mu.Lock()
	if c.fetching || (!reset && !c.hasMore) {
		c.mu.Unlock()
		return
	}
	c.fetching = true
	gen := c.gen
	query := c.query
	page := 1
	if !reset {
		page = c.page + 1
	}
	c.mu.Unlock()

	products, err := remote.FetchProducts(ctx, c.svc, query.FetchParams(page, c.opts.PageSize))

	c.mu.Lock()
	c.fetching = false

	if gen != c.gen {
		// A newer query was committed while this page was in flight.
		c.mu.Unlock()
		c.logger.Debug("Discarding stale listing page", zap.Int("page", page))
		c.fetchPage(ctx, true)
		return
	}

	if err != nil {
		c.lastErr = err
		c.mu.Unlock()

		c.logger.Warn("Listing fetch failed",
			zap.Int("page", page),
			zap.String("query", query.String()),
			zap.Error(err),
		)
		if remote.IsAuthError(err) && c.opts.OnAuthExpired != nil {
			c.opts.OnAuthExpired()
		}
		return
	}

	c.lastErr = nil
	if reset {
		c.items = nil
		c.seen = make(map[domain.ID]struct{}, len(products))
		c.hasMore = true
	}
	for _, p := range products {
		if _, dup := c.seen[p.ID]; dup {
			continue
		}
		c.seen[p.ID] = struct{}{}
		c.items = append(c.items, p)
	}
	c.page = page
	if len(products) < c.opts.PageSize {
		c.hasMore = false
	}
	total := len(c.items)
	c.mu.Unlock()

	c.logger.Debug("Listing page loaded",
		zap.Int("page", page),
		zap.Int("received", len(products)),
		zap.Int("total", total),
	)
}

// Refresh re-fetches the first page for the current committed query without
// touching the URL, used by the inline error message's retry action.
func (c *Controller) Refresh(ctx context.Context) {
	c.fetchPage(ctx, true)
}

// Items returns a copy of the visible product list in server order.
func (c *Controller) Items() []domain.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Product, len(c.items))
	copy(out, c.items)
	return out
}

// Query returns the committed query state.
func (c *Controller) Query() Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// Page returns the last successfully loaded page, 0 before the first fetch.
func (c *Controller) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// HasMore reports whether another page may exist.
func (c *Controller) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasMore
}

// Err returns the last fetch error, nil after a successful fetch. Existing
// items stay visible regardless.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// ClearError dismisses the inline error message.
func (c *Controller) ClearError() {
	c.mu.Lock()
	c.lastErr = nil
	c.mu.Unlock()
}

// Stop cancels any pending debounced search commit.
func (c *Controller) Stop() {
	c.debounce.Cancel()
}
