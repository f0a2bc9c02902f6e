package services

import (
	"context"
	"strconv"
	"sync"
	"time"

	"spacetraveling/pkg/models"
	"spacetraveling/pkg/prismic"
)

// fakeSource serves an ordered set of documents with page-number cursors.
type fakeSource struct {
	mu       sync.Mutex
	docs     []models.RawDocument // ordered by first publication, oldest first
	drafts   map[string]map[string]models.RawDocument
	pageSize int
	err      error
	pageErr  error
	// rejected is attached to the first listing page
	rejected []models.RejectedDocument
	calls    map[string]int
}

func newFakeSource(pageSize int, docs ...models.RawDocument) *fakeSource {
	return &fakeSource{docs: docs, pageSize: pageSize, calls: map[string]int{}, drafts: map[string]map[string]models.RawDocument{}}
}

func (f *fakeSource) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeSource) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeSource) record(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	return f.err
}

func (f *fakeSource) Query(_ context.Context, opts models.QueryOptions) (*models.QueryResponse, error) {
	if err := f.record("query"); err != nil {
		return nil, err
	}
	if opts.After != "" {
		return f.adjacent(opts), nil
	}
	return f.page(1), nil
}

func (f *fakeSource) QueryPage(_ context.Context, cursor string) (*models.QueryResponse, error) {
	if err := f.record("query_page"); err != nil {
		return nil, err
	}
	if f.pageErr != nil {
		return nil, f.pageErr
	}
	n, err := strconv.Atoi(cursor)
	if err != nil {
		return nil, prismic.ErrInvalidCursor
	}
	return f.page(n), nil
}

func (f *fakeSource) GetByUID(_ context.Context, _ string, uid, ref string) (*models.RawDocument, error) {
	if err := f.record("get_by_uid"); err != nil {
		return nil, err
	}
	if ref != "" {
		if doc, ok := f.drafts[ref][uid]; ok {
			return &doc, nil
		}
	}
	for _, d := range f.docs {
		if d.UID != nil && *d.UID == uid {
			doc := d
			return &doc, nil
		}
	}
	return nil, prismic.ErrDocumentNotFound
}

func (f *fakeSource) GetByID(_ context.Context, id, ref string) (*models.RawDocument, error) {
	if err := f.record("get_by_id"); err != nil {
		return nil, err
	}
	for _, d := range f.drafts[ref] {
		if d.ID == id {
			doc := d
			return &doc, nil
		}
	}
	return nil, prismic.ErrDocumentNotFound
}

func (f *fakeSource) page(n int) *models.QueryResponse {
	start := (n - 1) * f.pageSize
	if start > len(f.docs) {
		start = len(f.docs)
	}
	end := start + f.pageSize
	if end > len(f.docs) {
		end = len(f.docs)
	}
	resp := &models.QueryResponse{Page: n, Results: append([]models.RawDocument(nil), f.docs[start:end]...)}
	if n == 1 {
		resp.Rejected = f.rejected
	}
	if end < len(f.docs) {
		resp.NextPage = strconv.Itoa(n + 1)
	}
	return resp
}

func (f *fakeSource) adjacent(opts models.QueryOptions) *models.QueryResponse {
	docs := append([]models.RawDocument(nil), f.docs...)
	if opts.Orderings == orderNewestFirst {
		for i, j := 0, len(docs)-1; i < j; i, j = i+1, j-1 {
			docs[i], docs[j] = docs[j], docs[i]
		}
	}
	for i, d := range docs {
		if d.ID == opts.After && i+1 < len(docs) {
			return &models.QueryResponse{Results: docs[i+1 : i+2]}
		}
	}
	return &models.QueryResponse{Results: []models.RawDocument{}}
}

func rawPost(id, uid, title string, published time.Time, words int) models.RawDocument {
	date := published.Format("2006-01-02T15:04:05-0700")
	body := ""
	for i := 0; i < words; i++ {
		body += "word "
	}
	doc := models.RawDocument{
		ID:                   id,
		Type:                 "posts",
		FirstPublicationDate: &date,
		Data: models.RawPost{
			Title:   textPtr(title),
			Content: []models.RawSection{{Heading: textPtr("Intro")}},
		},
	}
	if uid != "" {
		doc.UID = strPtr(uid)
	}
	if words > 0 {
		doc.Data.Content[0].Body.Markup = body
	}
	return doc
}

func strPtr(s string) *string { return &s }

func textPtr(s string) *models.Text {
	t := models.Text(s)
	return &t
}
