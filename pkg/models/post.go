package models

import "time"

// PostSummary is one entry of the listing page.
type PostSummary struct {
	ID             string              `json:"uid"`
	Title          string              `json:"title"`
	Subtitle       string              `json:"subtitle"`
	Author         string              `json:"author"`
	FirstPublished Optional[time.Time] `json:"first_publication_date"`
}

// ContentSection is a heading followed by its paragraphs, in display order.
type ContentSection struct {
	Heading    string   `json:"heading"`
	Paragraphs []string `json:"paragraphs"`
}

// Post is a fully normalized post document.
type Post struct {
	ID             string              `json:"uid"`
	DocumentID     string              `json:"id"`
	Title          string              `json:"title"`
	Subtitle       string              `json:"subtitle"`
	Author         string              `json:"author"`
	FirstPublished Optional[time.Time] `json:"first_publication_date"`
	LastPublished  Optional[time.Time] `json:"last_publication_date"`
	BannerURL      Optional[string]    `json:"banner_url"`
	Sections       []ContentSection    `json:"content"`
}

// Summary projects a post down to its listing entry.
func (p Post) Summary() PostSummary {
	return PostSummary{
		ID:             p.ID,
		Title:          p.Title,
		Subtitle:       p.Subtitle,
		Author:         p.Author,
		FirstPublished: p.FirstPublished,
	}
}

// NavLink points at a sibling post.
type NavLink struct {
	ID    string `json:"uid"`
	Title string `json:"title"`
}

// NavigationLinks are the previous/next siblings by first publication time.
type NavigationLinks struct {
	Previous Optional[NavLink] `json:"previous"`
	Next     Optional[NavLink] `json:"next"`
}

// PostPageModel is everything the post page renders.
type PostPageModel struct {
	Post            Post            `json:"post"`
	ReadingTime     int             `json:"reading_time"`
	Navigation      NavigationLinks `json:"navigation"`
	Preview         bool            `json:"preview"`
	CommentsEnabled bool            `json:"comments_enabled"`
	// Stale is set when the page was served from a snapshot because the CMS failed.
	Stale bool `json:"stale,omitempty"`
}
