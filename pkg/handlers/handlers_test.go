package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"spacetraveling/pkg/models"
	"spacetraveling/pkg/prismic"
	"spacetraveling/pkg/services"
	"spacetraveling/pkg/views"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// memorySource serves published docs one per page plus drafts under the
// "draft" ref.
type memorySource struct {
	mu     sync.Mutex
	docs   []models.RawDocument
	drafts []models.RawDocument
	err    error
}

func (m *memorySource) fail() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

func (m *memorySource) byRef(ref string) []models.RawDocument {
	if ref == "draft" {
		return m.drafts
	}
	return m.docs
}

func (m *memorySource) page(docs []models.RawDocument, n int) *models.QueryResponse {
	resp := &models.QueryResponse{Page: n, Results: []models.RawDocument{}}
	if n-1 < len(docs) {
		resp.Results = docs[n-1 : n]
	}
	if n < len(docs) {
		resp.NextPage = strconv.Itoa(n + 1)
	}
	return resp
}

func (m *memorySource) Query(_ context.Context, opts models.QueryOptions) (*models.QueryResponse, error) {
	if err := m.fail(); err != nil {
		return nil, err
	}
	if opts.After != "" {
		return &models.QueryResponse{Results: []models.RawDocument{}}, nil
	}
	return m.page(m.byRef(opts.Ref), 1), nil
}

func (m *memorySource) QueryPage(_ context.Context, cursor string) (*models.QueryResponse, error) {
	if err := m.fail(); err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(cursor)
	if err != nil {
		return nil, prismic.ErrInvalidCursor
	}
	return m.page(m.docs, n), nil
}

func (m *memorySource) GetByUID(_ context.Context, _, uid, ref string) (*models.RawDocument, error) {
	if err := m.fail(); err != nil {
		return nil, err
	}
	for _, d := range m.byRef(ref) {
		if d.UID != nil && *d.UID == uid {
			return &d, nil
		}
	}
	return nil, prismic.ErrDocumentNotFound
}

func (m *memorySource) GetByID(_ context.Context, id, ref string) (*models.RawDocument, error) {
	if err := m.fail(); err != nil {
		return nil, err
	}
	for _, d := range m.byRef(ref) {
		if d.ID == id {
			return &d, nil
		}
	}
	return nil, prismic.ErrDocumentNotFound
}

func doc(id, uid, title string) models.RawDocument {
	date := "2021-03-15T19:25:28+0000"
	text, heading := models.Text(title), models.Text("Intro")
	return models.RawDocument{
		ID:                   id,
		UID:                  &uid,
		FirstPublicationDate: &date,
		Data: models.RawPost{
			Title:   &text,
			Content: []models.RawSection{{Heading: &heading}},
		},
	}
}

func newTestRouter(t *testing.T, src *memorySource, secret string) *gin.Engine {
	t.Helper()
	renderer, err := views.NewRenderer(views.Site{Title: "Space Traveling", Logo: "/logo.svg", Locale: language.BrazilianPortuguese})
	require.NoError(t, err)
	blog := services.NewBlog(src, services.BlogOptions{})
	h := New(blog, renderer, secret, nil)
	return NewRouter(h, RouterOptions{SessionSecret: "test-session-secret", Metrics: http.NotFoundHandler()})
}

func publishedSource() *memorySource {
	return &memorySource{
		docs:   []models.RawDocument{doc("D1", "first", "First"), doc("D2", "second", "Second")},
		drafts: []models.RawDocument{doc("D2", "second", "Second (draft)")},
	}
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListingPage(t *testing.T) {
	r := newTestRouter(t, publishedSource(), "")

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `href="/post/first"`)
	assert.Contains(t, w.Body.String(), "Carregar mais posts")
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestRequestIDIsPropagated(t *testing.T) {
	r := newTestRouter(t, publishedSource(), "")
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")

	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}

func TestListPostsJSON(t *testing.T) {
	r := newTestRouter(t, publishedSource(), "")

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/posts?cursor=2", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Results []struct {
			UID   string `json:"uid"`
			Title string `json:"title"`
		} `json:"results"`
		NextPage string `json:"next_page"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Results, 1)
	assert.Equal(t, "second", page.Results[0].UID)
	assert.Equal(t, "", page.NextPage)
}

func TestListPostsWithoutCursorReturnsFirstPage(t *testing.T) {
	r := newTestRouter(t, publishedSource(), "")

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/posts", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"next_page":"2"`)
}

func TestListPostsInvalidCursor(t *testing.T) {
	r := newTestRouter(t, publishedSource(), "")

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/posts?cursor=http://169.254.169.254/", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListPostsFailureReturnsRetryCursor(t *testing.T) {
	src := publishedSource()
	src.err = errors.New("cms down")
	r := newTestRouter(t, src, "")

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/posts?cursor=2", nil))
	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"error":"failed to load posts","retry_cursor":"2"}`, w.Body.String())
}

func TestPostPage(t *testing.T) {
	r := newTestRouter(t, publishedSource(), "")

	w := serve(r, httptest.NewRequest(http.MethodGet, "/post/first", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<h1>First</h1>")
	assert.Contains(t, w.Body.String(), "1 min")
	assert.NotContains(t, w.Body.String(), "Sair do modo Preview")
}

func TestPostPageNotFound(t *testing.T) {
	r := newTestRouter(t, publishedSource(), "")

	w := serve(r, httptest.NewRequest(http.MethodGet, "/post/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Post não encontrado")
}

func TestPostPageUpstreamFailure(t *testing.T) {
	src := publishedSource()
	src.err = errors.New("cms down")
	r := newTestRouter(t, src, "")

	w := serve(r, httptest.NewRequest(http.MethodGet, "/post/first", nil))
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Tentar novamente")
}

func TestGetPostJSON(t *testing.T) {
	r := newTestRouter(t, publishedSource(), "")

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/posts/second", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var page models.PostPageModel
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, "second", page.Post.ID)
	assert.Equal(t, 1, page.ReadingTime)
	assert.False(t, page.Preview)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/api/posts/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPreviewSession(t *testing.T) {
	r := newTestRouter(t, publishedSource(), "")

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/preview?token=draft&documentId=D2", nil))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/post/second", w.Header().Get("Location"))
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/post/second", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Second (draft)")
	assert.Contains(t, w.Body.String(), "Sair do modo Preview")

	req = httptest.NewRequest(http.MethodGet, "/api/exit-preview", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = serve(r, req)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestPreviewRequiresParameters(t *testing.T) {
	r := newTestRouter(t, publishedSource(), "")

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/preview?token=draft", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/api/preview?token=draft&documentId=D9", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRevalidate(t *testing.T) {
	r := newTestRouter(t, publishedSource(), "hook-secret")

	w := serve(r, httptest.NewRequest(http.MethodPost, "/api/revalidate", strings.NewReader(`{"secret":"wrong"}`)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodPost, "/api/revalidate", strings.NewReader(`{"secret":"hook-secret"}`)))
	assert.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/revalidate", nil)
	req.Header.Set(revalidateHeader, "hook-secret")
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRevalidateDisabledWithoutSecret(t *testing.T) {
	r := newTestRouter(t, publishedSource(), "")

	w := serve(r, httptest.NewRequest(http.MethodPost, "/api/revalidate", strings.NewReader(`{"secret":""}`)))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnknownRouteRendersNotFound(t *testing.T) {
	r := newTestRouter(t, publishedSource(), "")

	w := serve(r, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Página não encontrada.")
}
