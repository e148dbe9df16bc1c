// Package digest builds the reading digest: it logs into the source, visits
// the most recent saved articles in listing order, assembles the aggregate
// document and renders it.
package digest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fwojciec/instapdf"
)

// Defaults for Options.
const (
	DefaultCount = 10
	DefaultTitle = "Instapaper digest"
)

// fileStampLayout names output files after the run start time.
const fileStampLayout = "20060102-150405"

// Builder runs the digest pipeline. Source and Parser are required; every
// other collaborator is optional.
type Builder struct {
	Source    instapdf.Source
	Parser    instapdf.ArticleParser
	QR        instapdf.QREncoder
	Renderer  instapdf.Renderer
	Artifacts instapdf.ArtifactStore
	Runs      instapdf.RunService
	Logger    *slog.Logger

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Options configures one build.
type Options struct {
	Credentials instapdf.Credentials

	// Count is the number of most recent listings to process.
	Count int

	// Title is the document title.
	Title string

	Render instapdf.RenderOptions

	// SaveArtifacts writes raw, body and standalone files per article.
	SaveArtifacts bool

	// Deadline bounds the whole run. Zero means no bound.
	Deadline time.Duration
}

// Result holds the outcome of a build.
type Result struct {
	RunID   string
	HTML    string
	PDF     []byte
	Records []*instapdf.ArticleRecord

	Extracted int
	Skipped   int
	Failed    int

	HTMLPath string
	PDFPath  string
}

// ProgressEvent reports progress during a build.
type ProgressEvent struct {
	Type     ProgressType
	Position int // 1-based
	Total    int
	ID       string
	Title    string
	Error    error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressExtracted
	ProgressSkipped
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting build progress.
type ProgressFunc func(event ProgressEvent)

// Build runs the pipeline. Per-article failures are counted and skipped.
// Login, listing and render failures end the run with EAUTH, ELISTING and
// ERENDER. When every article is skipped the run fails with ENOCONTENT.
//
// On render failure the returned Result is non-nil and carries the
// assembled HTML so rendering can be retried.
func (b *Builder) Build(ctx context.Context, opts Options, progress ProgressFunc) (_ *Result, err error) {
	if opts.Count <= 0 {
		opts.Count = DefaultCount
	}
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	if err := opts.Credentials.Validate(); err != nil {
		return nil, err
	}
	if b.Renderer != nil {
		if err := opts.Render.Validate(); err != nil {
			return nil, err
		}
	}
	if progress == nil {
		progress = func(ProgressEvent) {}
	}

	if opts.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Deadline)
		defer cancel()
	}

	started := b.now()
	result := &Result{}

	if b.Runs != nil {
		run := &instapdf.Run{StartedAt: started.UTC(), Requested: opts.Count}
		if err := b.Runs.CreateRun(ctx, run); err != nil {
			return nil, fmt.Errorf("recording run: %w", err)
		}
		result.RunID = run.ID
		defer func() { b.finishRun(ctx, result, err) }()
	}

	if err := b.Source.Login(ctx, opts.Credentials); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	listings, err := b.Source.ListArticles(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing: %w", err)
	}
	if len(listings) > opts.Count {
		listings = listings[:opts.Count]
	}

	total := len(listings)
	progress(ProgressEvent{Type: ProgressStarted, Total: total})

	save := opts.SaveArtifacts && b.Artifacts != nil
	qr := make(map[string]string, total)
	alloc := instapdf.NewAnchorAllocator(instapdf.ReadPathPrefix)

	for i, listing := range listings {
		anchor := alloc.Allocate(listing)
		if anchor.Anomalous() {
			b.logger().Warn("anchor anomaly",
				"reference", listing.Reference,
				"id", anchor.ID,
				"fallback", anchor.Fallback,
				"sanitized", anchor.Sanitized,
				"duplicate", anchor.Duplicate,
			)
		}

		event := ProgressEvent{Position: i + 1, Total: total, ID: anchor.ID, Title: listing.DisplayTitle}

		raw, err := b.Source.FetchArticle(ctx, listing.Reference)
		if err == nil && save {
			err = b.Artifacts.SaveArtifact(ctx, anchor.ID, instapdf.ArtifactRaw, raw)
		}
		var rec *instapdf.ArticleRecord
		if err == nil {
			rec, err = b.Parser.Parse(listing, raw)
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				b.abortArtifacts(save)
				return nil, fmt.Errorf("article %s: %w", anchor.ID, ctxErr)
			}
			b.logger().Warn("article failed", "id", anchor.ID, "reference", listing.Reference, "err", err)
			result.Failed++
			b.recordArticle(ctx, result.RunID, i, &instapdf.RunArticle{
				ArticleID: anchor.ID,
				Title:     listing.DisplayTitle,
				Error:     err.Error(),
			})
			event.Type, event.Error = ProgressFailed, err
			progress(event)
			continue
		}

		rec.ID = anchor.ID
		event.Title = rec.Title
		if rec.MalformedMetadata {
			b.logger().Warn("malformed metadata", "id", rec.ID, "title", rec.Title, "source", rec.SourceURL)
		}

		b.recordArticle(ctx, result.RunID, i, &instapdf.RunArticle{
			ArticleID:         rec.ID,
			Title:             rec.Title,
			SourceURL:         rec.SourceURL,
			Status:            rec.Status,
			MalformedMetadata: rec.MalformedMetadata,
			Body:              rec.BodyFragment,
		})

		if !rec.Extracted() {
			b.logger().Info("skip unextractable article", "id", rec.ID, "title", rec.Title)
			result.Skipped++
			event.Type = ProgressSkipped
			progress(event)
			continue
		}

		if rec.HasSource() && b.QR != nil {
			if png, err := b.QR.Encode(rec.SourceURL); err != nil {
				b.logger().Warn("qr code failed", "id", rec.ID, "source", rec.SourceURL, "err", err)
			} else {
				qr[rec.ID] = instapdf.DataURI("image/png", png)
			}
		}

		if save {
			if err := b.saveArticleArtifacts(ctx, rec, qr[rec.ID]); err != nil {
				b.logger().Warn("saving artifacts failed", "id", rec.ID, "err", err)
			}
		}

		result.Records = append(result.Records, rec)
		result.Extracted++
		event.Type = ProgressExtracted
		progress(event)
	}

	if save {
		if err := b.Artifacts.Commit(); err != nil {
			b.logger().Warn("committing artifacts failed", "err", err)
		}
	}

	if result.Extracted == 0 {
		return nil, instapdf.Errorf(instapdf.ENOCONTENT, "none of %d articles could be extracted", total)
	}

	html, err := b.assemble(opts.Title, result.Records, qr)
	if err != nil {
		return nil, err
	}
	result.HTML = html

	stamp := started.Format(fileStampLayout)
	if b.Artifacts != nil {
		result.HTMLPath, err = b.Artifacts.SaveDocument(ctx, "summary-"+stamp+".html", []byte(html))
		if err != nil {
			return nil, fmt.Errorf("saving document: %w", err)
		}
	}

	if b.Renderer != nil {
		pdf, err := b.Renderer.Render(ctx, html, opts.Render)
		if err != nil {
			if instapdf.ErrorCode(err) != instapdf.ERENDER {
				err = fmt.Errorf("%w: %v", instapdf.Errorf(instapdf.ERENDER, "rendering failed"), err)
			}
			return result, err
		}
		result.PDF = pdf

		if b.Artifacts != nil {
			result.PDFPath, err = b.Artifacts.SaveDocument(ctx, "summary-"+stamp+".pdf", pdf)
			if err != nil {
				return result, fmt.Errorf("saving rendered document: %w", err)
			}
		}
	}

	progress(ProgressEvent{Type: ProgressFinished, Position: total, Total: total})
	return result, nil
}

// assemble writes the aggregate document for the extracted records.
func (b *Builder) assemble(title string, records []*instapdf.ArticleRecord, qr map[string]string) (string, error) {
	a := instapdf.NewAssembler(title)
	a.Now = b.now
	a.Logger = b.Logger

	if err := a.Start(); err != nil {
		return "", err
	}
	if err := a.AddTOC(instapdf.TOCEntries(records)); err != nil {
		return "", err
	}
	for _, rec := range records {
		if err := a.AddArticle(rec, qr[rec.ID]); err != nil {
			return "", err
		}
	}
	return a.Finalize()
}

func (b *Builder) saveArticleArtifacts(ctx context.Context, rec *instapdf.ArticleRecord, qrDataURI string) error {
	if err := b.Artifacts.SaveArtifact(ctx, rec.ID, instapdf.ArtifactBody, rec.BodyFragment); err != nil {
		return err
	}
	standalone, err := instapdf.RenderStandaloneArticle(rec, qrDataURI)
	if err != nil {
		return err
	}
	return b.Artifacts.SaveArtifact(ctx, rec.ID, instapdf.ArtifactStandalone, standalone)
}

func (b *Builder) abortArtifacts(save bool) {
	if !save {
		return
	}
	if err := b.Artifacts.Abort(); err != nil {
		b.logger().Warn("discarding artifacts failed", "err", err)
	}
}

// recordArticle writes an article outcome to the run history. History
// failures are logged and never fail the build.
func (b *Builder) recordArticle(ctx context.Context, runID string, position int, article *instapdf.RunArticle) {
	if b.Runs == nil {
		return
	}
	article.RunID = runID
	article.Position = position
	if err := b.Runs.CreateRunArticle(context.WithoutCancel(ctx), article); err != nil {
		b.logger().Warn("recording article failed", "id", article.ArticleID, "err", err)
	}
}

func (b *Builder) finishRun(ctx context.Context, result *Result, buildErr error) {
	upd := instapdf.RunUpdate{
		Status:     instapdf.RunSucceeded,
		Extracted:  result.Extracted,
		Skipped:    result.Skipped,
		Failed:     result.Failed,
		OutputPath: result.PDFPath,
	}
	if upd.OutputPath == "" {
		upd.OutputPath = result.HTMLPath
	}
	if buildErr != nil {
		upd.Status = instapdf.RunFailed
		upd.Error = buildErr.Error()
	}
	if _, err := b.Runs.FinishRun(context.WithoutCancel(ctx), result.RunID, upd); err != nil {
		b.logger().Warn("recording run outcome failed", "run", result.RunID, "err", err)
	}
}

func (b *Builder) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.New(slog.DiscardHandler)
}
