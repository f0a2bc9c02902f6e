// Package prismic is a small client for a Prismic-compatible content API
// (v2 REST). It fetches documents for the blog and follows pagination cursors.
package prismic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"spacetraveling/pkg/models"
)

var (
	// ErrDocumentNotFound is returned by the single-document lookups.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrInvalidCursor is returned when a pagination cursor does not point at
	// the configured API.
	ErrInvalidCursor = errors.New("cursor does not belong to the content API")
	// ErrNoMasterRef is returned when the API root lists no master ref.
	ErrNoMasterRef = errors.New("content API reported no master ref")
)

// APIError is a non-2xx response from the content API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("content API returned %d: %s", e.StatusCode, e.Body)
}

// Options configures a Client.
type Options struct {
	// Endpoint is the repository base URL, e.g. https://space.cdn.prismic.io
	Endpoint    string
	AccessToken string
	Timeout     time.Duration
	// HTTPClient overrides the transport; the access token is still attached.
	HTTPClient *http.Client
}

// Client talks to one content repository.
type Client struct {
	base *url.URL
	http *http.Client
}

// New builds a client. The endpoint must be an absolute http(s) URL.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.Endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("endpoint %q must be an absolute http(s) URL", opts.Endpoint)
	}

	var hc *http.Client
	if opts.HTTPClient != nil {
		copied := *opts.HTTPClient
		hc = &copied
	} else {
		hc = &http.Client{}
	}
	if opts.AccessToken != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, hc)
		hc = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.AccessToken}))
	}
	if opts.Timeout > 0 {
		hc.Timeout = opts.Timeout
	}

	return &Client{base: base, http: hc}, nil
}

type apiRoot struct {
	Refs []struct {
		ID          string `json:"id"`
		Ref         string `json:"ref"`
		Label       string `json:"label"`
		IsMasterRef bool   `json:"isMasterRef"`
	} `json:"refs"`
}

// MasterRef returns the ref of the currently published content.
func (c *Client) MasterRef(ctx context.Context) (string, error) {
	var root apiRoot
	if err := c.getJSON(ctx, c.apiURL("/api/v2", nil), &root); err != nil {
		return "", err
	}
	for _, r := range root.Refs {
		if r.IsMasterRef {
			return r.Ref, nil
		}
	}
	return "", ErrNoMasterRef
}

// Query runs a search restricted to one document type.
func (c *Client) Query(ctx context.Context, opts models.QueryOptions) (*models.QueryResponse, error) {
	return c.search(ctx, []string{At("document.type", opts.Type)}, opts)
}

// QueryPage follows a next_page cursor returned by an earlier query.
func (c *Client) QueryPage(ctx context.Context, cursor string) (*models.QueryResponse, error) {
	u, err := c.resolveCursor(cursor)
	if err != nil {
		return nil, err
	}
	var resp models.QueryResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetByUID fetches the single document of docType with the given uid.
func (c *Client) GetByUID(ctx context.Context, docType, uid, ref string) (*models.RawDocument, error) {
	return c.single(ctx, []string{At(fmt.Sprintf("my.%s.uid", docType), uid)}, ref)
}

// GetByID fetches a document by its internal id.
func (c *Client) GetByID(ctx context.Context, id, ref string) (*models.RawDocument, error) {
	return c.single(ctx, []string{At("document.id", id)}, ref)
}

func (c *Client) single(ctx context.Context, predicates []string, ref string) (*models.RawDocument, error) {
	resp, err := c.search(ctx, predicates, models.QueryOptions{Ref: ref, PageSize: 1})
	if err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		if len(resp.Rejected) > 0 {
			return nil, &resp.Rejected[0]
		}
		return nil, ErrDocumentNotFound
	}
	doc := resp.Results[0]
	return &doc, nil
}

func (c *Client) search(ctx context.Context, predicates []string, opts models.QueryOptions) (*models.QueryResponse, error) {
	ref := opts.Ref
	if ref == "" {
		var err error
		if ref, err = c.MasterRef(ctx); err != nil {
			return nil, err
		}
	}

	q := url.Values{}
	q.Set("ref", ref)
	q.Set("q", "["+strings.Join(predicates, "")+"]")
	if opts.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(opts.PageSize))
	}
	if opts.After != "" {
		q.Set("after", opts.After)
	}
	if opts.Orderings != "" {
		q.Set("orderings", opts.Orderings)
	}
	if len(opts.Fetch) > 0 {
		q.Set("fetch", strings.Join(opts.Fetch, ","))
	}

	var resp models.QueryResponse
	if err := c.getJSON(ctx, c.apiURL("/api/v2/documents/search", q), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// resolveCursor only follows cursors that point back at the same API.
func (c *Client) resolveCursor(cursor string) (string, error) {
	u, err := url.Parse(cursor)
	if err != nil || u.Scheme != c.base.Scheme || u.Host != c.base.Host || !strings.HasPrefix(u.Path, "/api/") {
		return "", ErrInvalidCursor
	}
	return u.String(), nil
}

func (c *Client) apiURL(path string, q url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if q != nil {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func (c *Client) getJSON(ctx context.Context, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", req.URL.Path, err)
	}
	return nil
}

// At builds an exact-match predicate: [at(path, "value")].
func At(path, value string) string {
	return fmt.Sprintf("[at(%s, %s)]", path, strconv.Quote(value))
}
