// Package views renders the listing and post pages from embedded templates.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"golang.org/x/text/language"

	"spacetraveling/pkg/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template names.
const (
	ListingTemplate  = "index.html"
	PostTemplate     = "post.html"
	NotFoundTemplate = "notfound.html"
	ErrorTemplate    = "error.html"
)

// Site carries the presentation settings every page needs.
type Site struct {
	Title  string
	Logo   string
	Locale language.Tag
}

// ListingView is the data behind the listing page.
type ListingView struct {
	Site       Site
	Posts      []models.PostSummary
	NextCursor string
	// Static pages have no API to load more from.
	Static bool
}

// PostView is the data behind a post page.
type PostView struct {
	Site Site
	Page models.PostPageModel
}

// MessageView backs the not-found and error pages.
type MessageView struct {
	Site    Site
	Message string
	Retry   string
}

// Renderer executes the page templates.
type Renderer struct {
	site Site
	tmpl *template.Template
}

// NewRenderer parses the embedded templates for site.
func NewRenderer(site Site) (*Renderer, error) {
	if site.Locale == language.Und {
		site.Locale = language.BrazilianPortuguese
	}
	months := monthNames(site.Locale)
	funcs := template.FuncMap{
		"date": func(o models.Optional[time.Time]) string {
			t, ok := o.Get()
			if !ok {
				return ""
			}
			return fmt.Sprintf("%02d %s %d", t.Day(), months[t.Month()-1], t.Year())
		},
		"isoDate": func(o models.Optional[time.Time]) string {
			t, ok := o.Get()
			if !ok {
				return ""
			}
			return t.Format(time.RFC3339)
		},
		"navLink": func(o models.Optional[models.NavLink]) *models.NavLink {
			l, ok := o.Get()
			if !ok {
				return nil
			}
			return &l
		},
		"lang": func() string { return site.Locale.String() },
	}
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{site: site, tmpl: tmpl}, nil
}

// Template exposes the parsed set, e.g. for gin's HTML renderer.
func (r *Renderer) Template() *template.Template {
	return r.tmpl
}

// Listing builds the listing view.
func (r *Renderer) Listing(posts []models.PostSummary, nextCursor string, static bool) ListingView {
	return ListingView{Site: r.site, Posts: posts, NextCursor: nextCursor, Static: static}
}

// Post builds the post view.
func (r *Renderer) Post(page models.PostPageModel) PostView {
	return PostView{Site: r.site, Page: page}
}

// Message builds a not-found or error view.
func (r *Renderer) Message(message, retry string) MessageView {
	return MessageView{Site: r.site, Message: message, Retry: retry}
}

// RenderListing writes the full listing page.
func (r *Renderer) RenderListing(w io.Writer, posts []models.PostSummary, nextCursor string) error {
	return r.tmpl.ExecuteTemplate(w, ListingTemplate, r.Listing(posts, nextCursor, true))
}

// RenderPost writes one post page.
func (r *Renderer) RenderPost(w io.Writer, page models.PostPageModel) error {
	return r.tmpl.ExecuteTemplate(w, PostTemplate, r.Post(page))
}
