package mock

import "github.com/fwojciec/instapdf"

var _ instapdf.ListingParser = (*ListingParser)(nil)

// ListingParser is a mock implementation of instapdf.ListingParser.
type ListingParser struct {
	ParseListingFn func(html string) ([]instapdf.ArticleListing, error)
}

func (p *ListingParser) ParseListing(html string) ([]instapdf.ArticleListing, error) {
	return p.ParseListingFn(html)
}

var _ instapdf.ArticleParser = (*ArticleParser)(nil)

// ArticleParser is a mock implementation of instapdf.ArticleParser.
type ArticleParser struct {
	ParseFn func(listing instapdf.ArticleListing, rawMarkup string) (*instapdf.ArticleRecord, error)
}

func (p *ArticleParser) Parse(listing instapdf.ArticleListing, rawMarkup string) (*instapdf.ArticleRecord, error) {
	return p.ParseFn(listing, rawMarkup)
}
