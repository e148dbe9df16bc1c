package goquery_test

import (
	"testing"

	"github.com/fwojciec/instapdf"
	"github.com/fwojciec/instapdf/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingParser_ParseListing(t *testing.T) {
	t.Parallel()

	t.Run("returns article anchors in page order", func(t *testing.T) {
		t.Parallel()

		raw := `<html><body>
<a class="article_title" href="/read/3" title="Third">Third link</a>
<a href="/read/ignored" title="Not an article">x</a>
<a class="article_title" href="/read/1" title="First">First link</a>
</body></html>`

		listings, err := goquery.NewListingParser().ParseListing(raw)

		require.NoError(t, err)
		assert.Equal(t, []instapdf.ArticleListing{
			{Reference: "/read/3", DisplayTitle: "Third"},
			{Reference: "/read/1", DisplayTitle: "First"},
		}, listings)
	})

	t.Run("falls back to anchor text without title attribute", func(t *testing.T) {
		t.Parallel()

		raw := `<a class="article_title" href="/read/9">  Anchor text </a>`

		listings, err := goquery.NewListingParser().ParseListing(raw)

		require.NoError(t, err)
		require.Len(t, listings, 1)
		assert.Equal(t, "Anchor text", listings[0].DisplayTitle)
	})

	t.Run("skips anchors without href", func(t *testing.T) {
		t.Parallel()

		raw := `<a class="article_title" title="No link">x</a>
<a class="article_title" href="" title="Empty">y</a>
<a class="article_title" href="/read/2" title="Kept">z</a>`

		listings, err := goquery.NewListingParser().ParseListing(raw)

		require.NoError(t, err)
		require.Len(t, listings, 1)
		assert.Equal(t, "/read/2", listings[0].Reference)
	})

	t.Run("returns ELISTING without article anchors", func(t *testing.T) {
		t.Parallel()

		raw := `<html><body><form action="/user/login"></form></body></html>`

		_, err := goquery.NewListingParser().ParseListing(raw)

		assert.Equal(t, instapdf.ELISTING, instapdf.ErrorCode(err))
	})
}
