package models

import (
	"encoding/json"
	"errors"
	"fmt"

	"spacetraveling/pkg/richtext"
)

// RawDocument is a CMS document as returned by the search API. Every field
// except ID may be missing.
type RawDocument struct {
	ID                   string  `json:"id"`
	UID                  *string `json:"uid"`
	Type                 string  `json:"type"`
	FirstPublicationDate *string `json:"first_publication_date"`
	LastPublicationDate  *string `json:"last_publication_date"`
	Data                 RawPost `json:"data"`
}

// RawPost is the custom-type payload of a "posts" document.
type RawPost struct {
	Title    *Text        `json:"title"`
	Subtitle *Text        `json:"subtitle"`
	Author   *Text        `json:"author"`
	Banner   *RawImage    `json:"banner"`
	Content  []RawSection `json:"content"`
}

// RawImage is an image field. An empty image field comes back as {}.
type RawImage struct {
	URL *string `json:"url"`
	Alt *string `json:"alt"`
}

// RawSection is one group of the repeatable content field.
type RawSection struct {
	Heading *Text             `json:"heading"`
	Body    richtext.Document `json:"body"`
}

// QueryOptions narrows a search query.
type QueryOptions struct {
	Type      string
	Fetch     []string
	PageSize  int
	After     string
	Orderings string
	Ref       string
}

// QueryResponse is one page of search results. NextPage is an opaque cursor;
// empty means there are no further pages. Results that fail to decode are
// moved to Rejected so the rest of the page survives.
type QueryResponse struct {
	Page             int           `json:"page"`
	ResultsPerPage   int           `json:"results_per_page"`
	TotalResultsSize int           `json:"total_results_size"`
	TotalPages       int           `json:"total_pages"`
	NextPage         string        `json:"next_page"`
	PrevPage         string        `json:"prev_page"`
	Results          []RawDocument `json:"results"`

	Rejected []RejectedDocument `json:"-"`
}

// RejectedDocument is a search result that could not be decoded.
type RejectedDocument struct {
	ID string
	// Field is the offending JSON path when the decoder reports one.
	Field string
	Err   error
}

func (e *RejectedDocument) Error() string {
	return fmt.Sprintf("decode document %q: %v", e.ID, e.Err)
}

func (e *RejectedDocument) Unwrap() error { return e.Err }

func (r *QueryResponse) UnmarshalJSON(data []byte) error {
	type plain QueryResponse
	var wire struct {
		plain
		Results []json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*r = QueryResponse(wire.plain)
	r.Results = make([]RawDocument, 0, len(wire.Results))
	for _, raw := range wire.Results {
		var doc RawDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			r.Rejected = append(r.Rejected, RejectedDocument{ID: documentID(raw), Field: errorField(err), Err: err})
			continue
		}
		r.Results = append(r.Results, doc)
	}
	return nil
}

func documentID(raw json.RawMessage) string {
	var head struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(raw, &head)
	return head.ID
}

func errorField(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return typeErr.Field
	}
	return ""
}
