package instapdf

import (
	"context"
	"time"
)

// RunStatus is the outcome of a build run.
type RunStatus string

// RunStatus values.
const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// Run is one invocation of the build pipeline as recorded in the history.
type Run struct {
	ID         string     `json:"id"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`

	Requested int `json:"requested"`
	Extracted int `json:"extracted"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`

	OutputPath string    `json:"outputPath,omitempty"`
	Status     RunStatus `json:"status"`
	Error      string    `json:"error,omitempty"`
}

// RunUpdate holds the fields written when a run finishes.
type RunUpdate struct {
	Status     RunStatus `json:"status"`
	Extracted  int       `json:"extracted"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	OutputPath string    `json:"outputPath"`
	Error      string    `json:"error"`
}

// RunArticle is the outcome of one listed article within a run.
type RunArticle struct {
	RunID             string           `json:"runId"`
	Position          int              `json:"position"`
	ArticleID         string           `json:"articleId"`
	Title             string           `json:"title"`
	SourceURL         string           `json:"sourceUrl,omitempty"`
	Status            ExtractionStatus `json:"status"`
	MalformedMetadata bool             `json:"malformedMetadata,omitempty"`
	BodyHash          string           `json:"bodyHash,omitempty"`

	// Error is set when the article could not be fetched or parsed.
	// Status is empty in that case.
	Error string `json:"error,omitempty"`

	// Body is hashed on write and not persisted.
	Body string `json:"-"`
}

// Validate returns an error if the run article contains invalid fields.
func (a *RunArticle) Validate() error {
	if a.RunID == "" {
		return Errorf(EINVALID, "run article run ID required")
	}
	if a.ArticleID == "" {
		return Errorf(EINVALID, "run article ID required")
	}
	if a.Position < 0 {
		return Errorf(EINVALID, "run article position must not be negative")
	}
	return nil
}

// RunFilter represents a filter for FindRuns.
type RunFilter struct {
	Status *RunStatus `json:"status"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RunService records build runs and their per-article outcomes.
type RunService interface {
	// CreateRun records a new running run. ID and StartedAt are assigned
	// when empty.
	CreateRun(ctx context.Context, run *Run) error

	// FinishRun stores the outcome of a run.
	// Returns ENOTFOUND if the run does not exist.
	FinishRun(ctx context.Context, id string, upd RunUpdate) (*Run, error)

	// CreateRunArticle records one article outcome.
	// Returns ENOTFOUND if the run does not exist.
	CreateRunArticle(ctx context.Context, article *RunArticle) error

	// FindRunByID retrieves a run by ID.
	// Returns ENOTFOUND if the run does not exist.
	FindRunByID(ctx context.Context, id string) (*Run, error)

	// FindRuns retrieves runs, most recent first.
	FindRuns(ctx context.Context, filter RunFilter) ([]*Run, error)

	// FindRunArticles retrieves the articles of a run in position order.
	FindRunArticles(ctx context.Context, runID string) ([]*RunArticle, error)
}
