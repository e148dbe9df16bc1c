package instapdf

import "context"

// ArticleListing is one entry of the saved-articles index.
type ArticleListing struct {
	// Reference is the opaque path of the article on the source,
	// e.g. "/read/123".
	Reference string `json:"reference"`

	// DisplayTitle is the title shown on the listing page.
	DisplayTitle string `json:"displayTitle"`
}

// ExtractionStatus describes how much structure was found in an article page.
type ExtractionStatus string

// ExtractionStatus values.
const (
	// StatusFull means both the metadata block and the story were found.
	StatusFull ExtractionStatus = "full"

	// StatusFallbackNoMetadata means the story was found but the metadata
	// block was not; the listing title is used and no source link exists.
	StatusFallbackNoMetadata ExtractionStatus = "fallback_no_metadata"

	// StatusUnextractable means no story was found. The article is skipped.
	StatusUnextractable ExtractionStatus = "unextractable"
)

// ArticleRecord is the normalized result of parsing one article page.
type ArticleRecord struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	SourceURL    string           `json:"sourceUrl,omitempty"` // empty when absent
	BodyFragment string           `json:"bodyFragment,omitempty"`
	Status       ExtractionStatus `json:"status"`

	// MalformedMetadata is set when a metadata block was present but its
	// title or original link was missing or unusable.
	MalformedMetadata bool `json:"malformedMetadata,omitempty"`
}

// Extracted reports whether the record contributes a TOC entry and a body section.
func (r *ArticleRecord) Extracted() bool {
	return r.Status == StatusFull || r.Status == StatusFallbackNoMetadata
}

// HasSource reports whether the record carries an original source URL.
func (r *ArticleRecord) HasSource() bool {
	return r.SourceURL != ""
}

// TOCEntry is one line of the table of contents.
type TOCEntry struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// TOCEntries returns one entry per extracted record, in record order.
// Unextractable records are omitted.
func TOCEntries(records []*ArticleRecord) []TOCEntry {
	entries := make([]TOCEntry, 0, len(records))
	for _, r := range records {
		if !r.Extracted() {
			continue
		}
		entries = append(entries, TOCEntry{ID: r.ID, Label: r.Title})
	}
	return entries
}

// Credentials authenticate against the reading service.
type Credentials struct {
	Username string
	Password string
}

// Validate returns an error if the credentials are incomplete.
func (c Credentials) Validate() error {
	if c.Username == "" {
		return Errorf(EINVALID, "username required")
	}
	return nil
}

// Source retrieves saved articles from the reading service.
// A Source holds the session established by Login.
type Source interface {
	// Login authenticates the session.
	// Returns EAUTH if the service rejects the credentials.
	Login(ctx context.Context, creds Credentials) error

	// ListArticles returns the saved articles, most recent first.
	// Returns ELISTING if the listing page has no recognizable entries.
	ListArticles(ctx context.Context) ([]ArticleListing, error)

	// FetchArticle returns the raw markup of the article at reference.
	FetchArticle(ctx context.Context, reference string) (string, error)
}

// ListingParser extracts article listings from the listing page markup.
type ListingParser interface {
	// ParseListing returns listings in page order.
	// Returns ELISTING if no article anchors are present.
	ParseListing(html string) ([]ArticleListing, error)
}

// ArticleParser extracts a normalized record from an article page.
type ArticleParser interface {
	// Parse never reports missing structure as an error: absent metadata or
	// story is expressed through the record's Status. The returned record
	// has no ID; callers assign it from an AnchorAllocator.
	Parse(listing ArticleListing, rawMarkup string) (*ArticleRecord, error)
}
