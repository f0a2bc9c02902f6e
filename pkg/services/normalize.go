package services

import (
	"strings"
	"time"

	"spacetraveling/pkg/models"
	"spacetraveling/pkg/richtext"
)

// The CMS emits offsets without a colon (+0000); RFC 3339 is accepted too.
var publicationLayouts = []string{
	"2006-01-02T15:04:05-0700",
	time.RFC3339,
}

// NormalizePost maps a raw document to a Post. Only a missing uid is an
// error; every other field degrades to empty or absent.
func NormalizePost(raw models.RawDocument) (models.Post, error) {
	uid, err := requireUID(raw)
	if err != nil {
		return models.Post{}, err
	}

	post := models.Post{
		ID:             uid,
		DocumentID:     raw.ID,
		Title:          raw.Data.Title.String(),
		Subtitle:       raw.Data.Subtitle.String(),
		Author:         raw.Data.Author.String(),
		FirstPublished: parsePublication(raw.FirstPublicationDate),
		LastPublished:  parsePublication(raw.LastPublicationDate),
		BannerURL:      bannerURL(raw.Data.Banner),
		Sections:       make([]models.ContentSection, 0, len(raw.Data.Content)),
	}
	for _, s := range raw.Data.Content {
		paragraphs := richtext.Paragraphs(s.Body)
		if paragraphs == nil {
			paragraphs = []string{}
		}
		post.Sections = append(post.Sections, models.ContentSection{
			Heading:    s.Heading.String(),
			Paragraphs: paragraphs,
		})
	}
	return post, nil
}

// NormalizeSummary is the listing projection of NormalizePost.
func NormalizeSummary(raw models.RawDocument) (models.PostSummary, error) {
	uid, err := requireUID(raw)
	if err != nil {
		return models.PostSummary{}, err
	}
	return models.PostSummary{
		ID:             uid,
		Title:          raw.Data.Title.String(),
		Subtitle:       raw.Data.Subtitle.String(),
		Author:         raw.Data.Author.String(),
		FirstPublished: parsePublication(raw.FirstPublicationDate),
	}, nil
}

// NormalizeLink projects a document to a navigation link.
func NormalizeLink(raw models.RawDocument) (models.NavLink, error) {
	uid, err := requireUID(raw)
	if err != nil {
		return models.NavLink{}, err
	}
	return models.NavLink{ID: uid, Title: raw.Data.Title.String()}, nil
}

// NormalizeSummaries keeps every well-formed document in order and returns
// the malformed ones as errors instead of failing the whole page.
func NormalizeSummaries(raws []models.RawDocument) ([]models.PostSummary, []error) {
	out := make([]models.PostSummary, 0, len(raws))
	var skipped []error
	for _, raw := range raws {
		s, err := NormalizeSummary(raw)
		if err != nil {
			skipped = append(skipped, err)
			continue
		}
		out = append(out, s)
	}
	return out, skipped
}

// NormalizeLinks is NormalizeSummaries for navigation candidates.
func NormalizeLinks(raws []models.RawDocument) ([]models.NavLink, []error) {
	out := make([]models.NavLink, 0, len(raws))
	var skipped []error
	for _, raw := range raws {
		l, err := NormalizeLink(raw)
		if err != nil {
			skipped = append(skipped, err)
			continue
		}
		out = append(out, l)
	}
	return out, skipped
}

func requireUID(raw models.RawDocument) (string, error) {
	if raw.UID == nil || strings.TrimSpace(*raw.UID) == "" {
		return "", &MalformedDocumentError{DocumentID: raw.ID, Field: "uid"}
	}
	return *raw.UID, nil
}

// rejectedErrors reports documents the CMS response could not decode the
// same way as malformed ones, so listings skip them.
func rejectedErrors(rejected []models.RejectedDocument) []error {
	var out []error
	for _, r := range rejected {
		out = append(out, &MalformedDocumentError{DocumentID: r.ID, Field: r.Field, Err: r.Err})
	}
	return out
}

func parsePublication(s *string) models.Optional[time.Time] {
	if s == nil || *s == "" {
		return models.None[time.Time]()
	}
	for _, layout := range publicationLayouts {
		if t, err := time.Parse(layout, *s); err == nil {
			return models.Some(t.UTC())
		}
	}
	return models.None[time.Time]()
}

func bannerURL(img *models.RawImage) models.Optional[string] {
	if img == nil || img.URL == nil || *img.URL == "" {
		return models.None[string]()
	}
	return models.Some(*img.URL)
}
