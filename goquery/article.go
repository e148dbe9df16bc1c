package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/instapdf"
)

// Structural markers of an Instapaper article page.
const (
	MetadataClass = "metadata"
	StoryClass    = "story"
	OriginalClass = "original"
	HeaderTag     = "header"
)

// Ensure ArticleParser implements instapdf.ArticleParser.
var _ instapdf.ArticleParser = (*ArticleParser)(nil)

// ArticleParser extracts article records from Instapaper reader pages.
type ArticleParser struct{}

// NewArticleParser creates a new ArticleParser.
func NewArticleParser() *ArticleParser {
	return &ArticleParser{}
}

// Parse extracts the title, original source URL and story body from raw.
// Missing structure is reported through the record's Status and
// MalformedMetadata fields, never as an error.
func (p *ArticleParser) Parse(listing instapdf.ArticleListing, raw string) (*instapdf.ArticleRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, instapdf.Errorf(instapdf.EINVALID, "failed to parse HTML: %v", err)
	}

	rec := &instapdf.ArticleRecord{
		Title:  listing.DisplayTitle,
		Status: instapdf.StatusFallbackNoMetadata,
	}

	if meta := findFirst(doc.Selection, "div", MetadataClass); meta != nil {
		rec.Status = instapdf.StatusFull
		rec.Title, rec.SourceURL, rec.MalformedMetadata = readMetadata(meta, listing.DisplayTitle)
	}

	story := findFirst(doc.Selection, "div", StoryClass)
	if story == nil {
		rec.Status = instapdf.StatusUnextractable
		return rec, nil
	}

	body, err := serializeChildren(story)
	if err != nil {
		return nil, instapdf.Errorf(instapdf.EINTERNAL, "failed to serialize story: %v", err)
	}
	rec.BodyFragment = body
	return rec, nil
}

// readMetadata returns the title and original link of a metadata block.
// fallbackTitle replaces a missing or blank header. malformed reports
// whether either part was missing or unusable.
func readMetadata(meta *goquery.Selection, fallbackTitle string) (title, source string, malformed bool) {
	title = fallbackTitle
	if header := findFirst(meta, HeaderTag, ""); header != nil {
		if text := strings.TrimSpace(header.Text()); text != "" {
			title = text
		} else {
			malformed = true
		}
	} else {
		malformed = true
	}

	link := findFirst(meta, "a", OriginalClass)
	if link == nil {
		return title, "", true
	}
	href, _ := link.Attr("href")
	if !isWebURL(href) {
		return title, "", true
	}
	return title, strings.TrimSpace(href), malformed
}

// isWebURL reports whether href is an absolute http or https URL with a host.
func isWebURL(href string) bool {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
