package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/instapdf"
)

// ListingClass marks article anchors on the Instapaper listing page.
const ListingClass = "article_title"

// Ensure ListingParser implements instapdf.ListingParser.
var _ instapdf.ListingParser = (*ListingParser)(nil)

// ListingParser extracts saved-article entries from the listing page.
type ListingParser struct{}

// NewListingParser creates a new ListingParser.
func NewListingParser() *ListingParser {
	return &ListingParser{}
}

// ParseListing returns one listing per article anchor in page order.
// Anchors without an href are ignored. The display title comes from the
// title attribute, or the anchor text when the attribute is blank.
func (p *ListingParser) ParseListing(raw string) ([]instapdf.ArticleListing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, instapdf.Errorf(instapdf.ELISTING, "failed to parse listing HTML: %v", err)
	}

	var listings []instapdf.ArticleListing
	doc.Find("a." + ListingClass).Each(func(_ int, sel *goquery.Selection) {
		href, exists := sel.Attr("href")
		href = strings.TrimSpace(href)
		if !exists || href == "" {
			return
		}

		title, _ := sel.Attr("title")
		title = strings.TrimSpace(title)
		if title == "" {
			title = strings.TrimSpace(sel.Text())
		}

		listings = append(listings, instapdf.ArticleListing{
			Reference:    href,
			DisplayTitle: title,
		})
	})

	if len(listings) == 0 {
		return nil, instapdf.Errorf(instapdf.ELISTING, "no article entries found on listing page")
	}
	return listings, nil
}
