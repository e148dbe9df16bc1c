package instapdf

import (
	"html"
	"log/slog"
	"strings"
	"time"
)

const headOpen = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>`

const headClose = `</title>
<style>
body {
  font-family: "Georgia", "Martel", serif;
  font-size: 18px;
  margin-left: 150px;
  margin-right: 150px;
}

p {
    margin-bottom: 10px;
}

a {
    text-decoration: none;
}

img.qr {
    width: 96px;
    height: 96px;
}

#TOC {
    page-break-after: always;
}

.article {
    page-break-before: always;
}
</style>
</head>
<body>
<!-- start document -->
`

const foot = `
<!-- end document -->
</body>
</html>
`

// generatedLayout is the visible format of the generation timestamp.
const generatedLayout = "2006-01-02 15:04 MST"

// AssemblerState is the lifecycle state of an Assembler.
type AssemblerState int

// AssemblerState values.
const (
	StateEmpty AssemblerState = iota
	StateAccumulating
	StateFinalized
)

// String returns the state name.
func (s AssemblerState) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateAccumulating:
		return "accumulating"
	case StateFinalized:
		return "finalized"
	}
	return "unknown"
}

// Assembler accumulates the aggregate document: a fixed head, a heading,
// the table of contents, one section per extracted article, and a fixed foot.
//
// Start must be called first, then AddTOC exactly once, then AddArticle once
// per TOC entry in TOC order, then Finalize. Out-of-sequence calls return
// ESTATE. An Assembler is not safe for concurrent use.
type Assembler struct {
	// Title is used for the document title and the page heading.
	Title string

	// Now returns the generation timestamp. Defaults to time.Now.
	Now func() time.Time

	// Logger receives notices about skipped records. Optional.
	Logger *slog.Logger

	state   AssemblerState
	buf     strings.Builder
	toc     []TOCEntry
	tocDone bool
	next    int // index into toc of the next expected article
}

// NewAssembler returns an empty Assembler for a document titled title.
func NewAssembler(title string) *Assembler {
	return &Assembler{
		Title: title,
		Now:   time.Now,
	}
}

// State returns the current lifecycle state.
func (a *Assembler) State() AssemblerState {
	return a.state
}

// Start writes the head, the page heading and the generation timestamp.
func (a *Assembler) Start() error {
	if a.state != StateEmpty {
		return Errorf(ESTATE, "start called in %s state", a.state)
	}

	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	generated := now()

	a.buf.WriteString(headOpen)
	a.buf.WriteString(html.EscapeString(a.Title))
	a.buf.WriteString(headClose)

	a.buf.WriteString(`<div id="` + HeadingAnchor + `">` + "\n")
	a.buf.WriteString("<h1>" + html.EscapeString(a.Title) + "</h1>\n")
	a.buf.WriteString(`<p class="generated">Generated <time datetime="`)
	a.buf.WriteString(generated.Format(time.RFC3339))
	a.buf.WriteString(`">`)
	a.buf.WriteString(generated.Format(generatedLayout))
	a.buf.WriteString("</time></p>\n</div>\n")

	a.state = StateAccumulating
	return nil
}

// AddTOC writes the table of contents. It must be called exactly once,
// before any article is added.
func (a *Assembler) AddTOC(entries []TOCEntry) error {
	if a.state != StateAccumulating {
		return Errorf(ESTATE, "table of contents added in %s state", a.state)
	}
	if a.tocDone {
		return Errorf(ESTATE, "table of contents already added")
	}

	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if !IsSafeID(e.ID) {
			return Errorf(EINVALID, "unsafe table of contents id %q", e.ID)
		}
		if seen[e.ID] {
			return Errorf(EINVALID, "duplicate table of contents id %q", e.ID)
		}
		seen[e.ID] = true
	}

	a.buf.WriteString(`<div id="` + TOCAnchor + `">` + "\n")
	a.buf.WriteString("<ul>\n")
	for _, e := range entries {
		a.buf.WriteString(`<li><a href="#` + e.ID + `">`)
		a.buf.WriteString(html.EscapeString(e.Label))
		a.buf.WriteString("</a></li>\n")
	}
	a.buf.WriteString("</ul>\n</div>\n")

	a.toc = append([]TOCEntry(nil), entries...)
	a.tocDone = true
	return nil
}

// AddArticle appends the section for rec. Unextractable records are ignored.
// Records must be added in table of contents order, each exactly once.
// qrDataURI is embedded as an image when non-empty.
func (a *Assembler) AddArticle(rec *ArticleRecord, qrDataURI string) error {
	if rec == nil {
		return Errorf(EINVALID, "article required")
	}
	if a.state != StateAccumulating {
		return Errorf(ESTATE, "article added in %s state", a.state)
	}
	if !a.tocDone {
		return Errorf(ESTATE, "article %q added before table of contents", rec.ID)
	}
	if !rec.Extracted() {
		if a.Logger != nil {
			a.Logger.Debug("skip unextractable article", "id", rec.ID)
		}
		return nil
	}
	if a.next >= len(a.toc) || a.toc[a.next].ID != rec.ID {
		return Errorf(ESTATE, "article %q does not match the next table of contents entry", rec.ID)
	}

	writeArticle(&a.buf, rec, qrDataURI, true)
	a.next++
	return nil
}

// Finalize appends the foot and returns the complete document.
// Every table of contents entry must have been matched by an article.
func (a *Assembler) Finalize() (string, error) {
	if a.state != StateAccumulating {
		return "", Errorf(ESTATE, "finalize called in %s state", a.state)
	}
	if !a.tocDone {
		return "", Errorf(ESTATE, "finalize called before table of contents")
	}
	if a.next != len(a.toc) {
		return "", Errorf(ESTATE, "%d of %d table of contents entries have no article", len(a.toc)-a.next, len(a.toc))
	}

	a.buf.WriteString(foot)
	a.state = StateFinalized
	return a.buf.String(), nil
}

// RenderStandaloneArticle returns a complete single-article document: the
// fixed head, the article section without a link back to the contents, and
// the fixed foot.
func RenderStandaloneArticle(rec *ArticleRecord, qrDataURI string) (string, error) {
	if rec == nil {
		return "", Errorf(EINVALID, "article required")
	}
	if !rec.Extracted() {
		return "", Errorf(EINVALID, "article %q has no extracted content", rec.ID)
	}
	if !IsSafeID(rec.ID) {
		return "", Errorf(EINVALID, "unsafe article id %q", rec.ID)
	}

	var b strings.Builder
	b.WriteString(headOpen)
	b.WriteString(html.EscapeString(rec.Title))
	b.WriteString(headClose)
	writeArticle(&b, rec, qrDataURI, false)
	b.WriteString(foot)
	return b.String(), nil
}

// writeArticle writes one article section. The body fragment is written verbatim.
func writeArticle(b *strings.Builder, rec *ArticleRecord, qrDataURI string, backLink bool) {
	b.WriteString("\n<!-- Start: " + rec.ID + " -->\n")
	b.WriteString(`<div id="` + rec.ID + `" class="article">` + "\n")
	b.WriteString("<h1>" + html.EscapeString(rec.Title) + "</h1>\n")

	b.WriteString("<p>\n")
	if rec.HasSource() {
		src := html.EscapeString(rec.SourceURL)
		b.WriteString(rec.ID + `: <a href="` + src + `">` + src + "</a>\n")
	} else {
		b.WriteString(rec.ID + ": original source unavailable\n")
	}
	b.WriteString("</p>\n")

	if qrDataURI != "" {
		b.WriteString(`<p><img class="qr" src="` + html.EscapeString(qrDataURI) + `" alt="QR code linking to the original article"></p>` + "\n")
	}

	if backLink {
		b.WriteString("<p>\n" + `<a href="#` + TOCAnchor + `">Back to the table of contents</a>` + "\n</p>\n")
	}

	b.WriteString(rec.BodyFragment)

	b.WriteString("\n<!-- Finish: " + rec.ID + " -->\n</div>\n")
}
