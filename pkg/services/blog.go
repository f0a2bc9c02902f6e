package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"spacetraveling/pkg/logfields"
	"spacetraveling/pkg/metrics"
	"spacetraveling/pkg/models"
	"spacetraveling/pkg/prismic"
)

const (
	orderOldestFirst = "[document.first_publication_date]"
	orderNewestFirst = "[document.first_publication_date desc]"
)

// ContentSource is the slice of the CMS client the blog needs.
type ContentSource interface {
	Query(ctx context.Context, opts models.QueryOptions) (*models.QueryResponse, error)
	QueryPage(ctx context.Context, cursor string) (*models.QueryResponse, error)
	GetByUID(ctx context.Context, docType, uid, ref string) (*models.RawDocument, error)
	GetByID(ctx context.Context, id, ref string) (*models.RawDocument, error)
}

// BlogOptions configures a Blog. Zero values fall back to defaults.
type BlogOptions struct {
	DocumentType    string
	PageSize        int
	CommentsEnabled bool
	CacheTTL        time.Duration
	Snapshots       SnapshotStore
	Recorder        metrics.Recorder
	Logger          *slog.Logger
}

// Blog fetches posts from the CMS and turns them into page models.
type Blog struct {
	source    ContentSource
	docType   string
	pageSize  int
	comments  bool
	listing   *ListingCache
	snapshots SnapshotStore
	recorder  metrics.Recorder
	logger    *slog.Logger
}

// NewBlog wires a Blog around an explicitly constructed content source.
func NewBlog(source ContentSource, opts BlogOptions) *Blog {
	b := &Blog{
		source:    source,
		docType:   opts.DocumentType,
		pageSize:  opts.PageSize,
		comments:  opts.CommentsEnabled,
		listing:   NewListingCache(opts.CacheTTL),
		snapshots: opts.Snapshots,
		recorder:  opts.Recorder,
		logger:    opts.Logger,
	}
	if b.docType == "" {
		b.docType = "posts"
	}
	if b.pageSize <= 0 {
		b.pageSize = 1
	}
	if b.recorder == nil {
		b.recorder = metrics.NoopRecorder{}
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// FirstPage returns the first listing page. Published content (empty ref) is
// served from the listing cache.
func (b *Blog) FirstPage(ctx context.Context, ref string) (Page, error) {
	if ref != "" {
		return b.queryFirstPage(ctx, ref)
	}
	page, hit, err := b.listing.GetOrLoad(ctx, func(ctx context.Context) (Page, error) {
		return b.queryFirstPage(ctx, "")
	})
	b.recorder.IncCacheLookup(hit)
	return page, err
}

// RefreshListing reloads the cached first page.
func (b *Blog) RefreshListing(ctx context.Context) error {
	page, err := b.queryFirstPage(ctx, "")
	if err != nil {
		return err
	}
	b.listing.Set(page)
	return nil
}

// InvalidateListing drops the cached first page.
func (b *Blog) InvalidateListing() {
	b.listing.Invalidate()
}

// NextPage loads the single page starting at cursor. An empty cursor is the
// end of the listing and yields an empty page. Failures are *PageLoadError.
func (b *Blog) NextPage(ctx context.Context, cursor string) (Page, error) {
	state, err := b.LoadMore(ctx, PaginationState{NextCursor: cursor})
	return Page(state), err
}

// LoadMore advances state by one page using the CMS.
func (b *Blog) LoadMore(ctx context.Context, state PaginationState) (PaginationState, error) {
	if !state.HasMore() {
		return state, nil
	}
	next, err := LoadMore(ctx, state, b.fetchPage)
	if err != nil {
		b.recorder.IncPageLoad(metrics.ResultError)
		b.logger.Warn("Listing page load failed", logfields.Cursor(state.NextCursor), logfields.Error(err))
		return next, err
	}
	b.recorder.IncPageLoad(metrics.ResultSuccess)
	return next, nil
}

// AllPosts walks every listing page and returns the accumulated summaries.
func (b *Blog) AllPosts(ctx context.Context) ([]models.PostSummary, error) {
	first, err := b.queryFirstPage(ctx, "")
	if err != nil {
		return nil, err
	}
	p := NewPaginator(first)
	for p.State().HasMore() {
		if _, err := p.LoadMore(ctx, b.fetchPage); err != nil {
			return nil, err
		}
	}
	return p.State().Items, nil
}

// PostPage builds the page model for uid. A non-empty ref fetches that
// (draft) revision and marks the page as a preview.
func (b *Blog) PostPage(ctx context.Context, uid, ref string) (models.PostPageModel, error) {
	page, err := b.buildPostPage(ctx, uid, ref)
	if err == nil {
		if ref == "" && b.snapshots != nil {
			if serr := b.snapshots.SavePostPage(ctx, page); serr != nil {
				b.logger.Warn("Failed to store post snapshot", logfields.PostUID(uid), logfields.Error(serr))
			}
		}
		return page, nil
	}

	var upstream *UpstreamFetchError
	if ref != "" || b.snapshots == nil || !errors.As(err, &upstream) {
		return models.PostPageModel{}, err
	}
	stale, found, serr := b.snapshots.LoadPostPage(ctx, uid)
	if serr != nil || !found {
		if serr != nil {
			b.logger.Warn("Failed to read post snapshot", logfields.PostUID(uid), logfields.Error(serr))
		}
		return models.PostPageModel{}, err
	}
	b.logger.Warn("Serving stale post page", logfields.PostUID(uid), logfields.Error(err))
	b.recorder.IncStaleServe()
	stale.Stale = true
	return stale, nil
}

// ResolvePreview maps a preview session to the uid of the document being
// previewed.
func (b *Blog) ResolvePreview(ctx context.Context, documentID, ref string) (string, error) {
	start := time.Now()
	raw, err := b.source.GetByID(ctx, documentID, ref)
	b.observe("get_by_id", start, err)
	if errors.Is(err, prismic.ErrDocumentNotFound) {
		return "", ErrPostNotFound
	}
	if malformed := asMalformed(err); malformed != nil {
		return "", malformed
	}
	if err != nil {
		return "", &UpstreamFetchError{Op: "get_by_id", Err: err}
	}
	link, err := NormalizeLink(*raw)
	if err != nil {
		return "", err
	}
	return link.ID, nil
}

func (b *Blog) buildPostPage(ctx context.Context, uid, ref string) (models.PostPageModel, error) {
	start := time.Now()
	raw, err := b.source.GetByUID(ctx, b.docType, uid, ref)
	b.observe("get_by_uid", start, err)
	if errors.Is(err, prismic.ErrDocumentNotFound) {
		return models.PostPageModel{}, ErrPostNotFound
	}
	if malformed := asMalformed(err); malformed != nil {
		return models.PostPageModel{}, malformed
	}
	if err != nil {
		return models.PostPageModel{}, &UpstreamFetchError{Op: "get_by_uid", Err: err}
	}

	post, err := NormalizePost(*raw)
	if err != nil {
		return models.PostPageModel{}, err
	}

	var previous, next []models.NavLink
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		previous, err = b.adjacent(gctx, post.DocumentID, ref, orderNewestFirst)
		return err
	})
	g.Go(func() error {
		var err error
		next, err = b.adjacent(gctx, post.DocumentID, ref, orderOldestFirst)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.PostPageModel{}, err
	}

	page := AssemblePostPage(post, previous, next, ref != "")
	page.CommentsEnabled = b.comments
	return page, nil
}

// adjacent returns at most one post that follows documentID in the given
// publication ordering.
func (b *Blog) adjacent(ctx context.Context, documentID, ref, orderings string) ([]models.NavLink, error) {
	start := time.Now()
	resp, err := b.source.Query(ctx, models.QueryOptions{
		Type:      b.docType,
		Fetch:     []string{b.docType + ".title"},
		PageSize:  1,
		After:     documentID,
		Orderings: orderings,
		Ref:       ref,
	})
	b.observe("query_adjacent", start, err)
	if err != nil {
		return nil, &UpstreamFetchError{Op: "query_adjacent", Err: err}
	}
	links, skipped := NormalizeLinks(resp.Results)
	b.logSkipped(append(rejectedErrors(resp.Rejected), skipped...))
	return links, nil
}

func (b *Blog) queryFirstPage(ctx context.Context, ref string) (Page, error) {
	start := time.Now()
	resp, err := b.source.Query(ctx, models.QueryOptions{
		Type:     b.docType,
		Fetch:    []string{b.docType + ".title", b.docType + ".subtitle", b.docType + ".author"},
		PageSize: b.pageSize,
		Ref:      ref,
	})
	b.observe("query", start, err)
	if err != nil {
		return Page{}, &UpstreamFetchError{Op: "query", Err: err}
	}
	return b.toPage(resp), nil
}

func (b *Blog) fetchPage(ctx context.Context, cursor string) (Page, error) {
	start := time.Now()
	resp, err := b.source.QueryPage(ctx, cursor)
	b.observe("query_page", start, err)
	if err != nil {
		return Page{}, &UpstreamFetchError{Op: "query_page", Err: err}
	}
	return b.toPage(resp), nil
}

func (b *Blog) toPage(resp *models.QueryResponse) Page {
	items, skipped := NormalizeSummaries(resp.Results)
	b.logSkipped(append(rejectedErrors(resp.Rejected), skipped...))
	return Page{Items: items, NextCursor: resp.NextPage}
}

// logSkipped applies the listing policy: malformed documents are dropped,
// logged and counted, never fatal to the page.
func (b *Blog) logSkipped(skipped []error) {
	for _, err := range skipped {
		var malformed *MalformedDocumentError
		if errors.As(err, &malformed) {
			reason := "missing_" + malformed.Field
			if malformed.Err != nil {
				reason = "undecodable"
			}
			b.logger.Warn("Skipping malformed document",
				logfields.DocumentID(malformed.DocumentID),
				slog.String("field", malformed.Field),
				slog.String("reason", reason),
				logfields.Error(err))
			b.recorder.IncSkippedDocument(reason)
			continue
		}
		b.logger.Warn("Skipping document", logfields.Error(err))
		b.recorder.IncSkippedDocument("other")
	}
}

// asMalformed converts a single document the client could not decode.
func asMalformed(err error) *MalformedDocumentError {
	var rejected *models.RejectedDocument
	if !errors.As(err, &rejected) {
		return nil
	}
	return &MalformedDocumentError{DocumentID: rejected.ID, Field: rejected.Field, Err: rejected.Err}
}

func (b *Blog) observe(op string, start time.Time, err error) {
	result := metrics.ResultSuccess
	switch {
	case errors.Is(err, prismic.ErrDocumentNotFound):
		result = metrics.ResultNotFound
	case errors.Is(err, prismic.ErrInvalidCursor):
		result = metrics.ResultRejected
	case err != nil:
		result = metrics.ResultError
	}
	elapsed := time.Since(start)
	b.recorder.ObserveFetch(op, elapsed, result)
	b.logger.Debug("CMS call", logfields.Op(op), logfields.Elapsed(elapsed), slog.String("result", string(result)))
}
