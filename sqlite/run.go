package sqlite

import (
	"context"
	"database/sql"
	"encoding/hex"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/instapdf"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ instapdf.RunService = (*RunService)(nil)

// RunService implements instapdf.RunService using SQLite.
type RunService struct {
	db *DB

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewRunService creates a new RunService.
func NewRunService(db *DB) *RunService {
	return &RunService{db: db, Now: time.Now}
}

// hashContent computes xxHash of content and returns hex string.
func hashContent(content string) string {
	var b [8]byte
	h := xxhash.Sum64String(content)
	for i := range b {
		b[i] = byte(h >> (56 - 8*i))
	}
	return hex.EncodeToString(b[:])
}

// CreateRun records a new run in the running state.
func (s *RunService) CreateRun(ctx context.Context, run *instapdf.Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = s.Now().UTC()
	}
	run.Status = instapdf.RunRunning
	run.FinishedAt = nil

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, requested, status)
		VALUES (?, ?, ?, ?)
	`, run.ID, formatTime(run.StartedAt), run.Requested, string(run.Status))

	return err
}

// FinishRun stores the final counts and status of a run.
func (s *RunService) FinishRun(ctx context.Context, id string, upd instapdf.RunUpdate) (*instapdf.Run, error) {
	if upd.Status != instapdf.RunSucceeded && upd.Status != instapdf.RunFailed {
		return nil, instapdf.Errorf(instapdf.EINVALID, "finished run status must be %s or %s", instapdf.RunSucceeded, instapdf.RunFailed)
	}

	finished := s.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET finished_at = ?, extracted = ?, skipped = ?, failed = ?, output_path = ?, status = ?, error = ?
		WHERE id = ?
	`, formatTime(finished), upd.Extracted, upd.Skipped, upd.Failed,
		upd.OutputPath, string(upd.Status), upd.Error, id)
	if err != nil {
		return nil, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, instapdf.Errorf(instapdf.ENOTFOUND, "run not found")
	}

	return s.FindRunByID(ctx, id)
}

// CreateRunArticle records one article outcome. The body is hashed and
// discarded.
func (s *RunService) CreateRunArticle(ctx context.Context, article *instapdf.RunArticle) error {
	if err := article.Validate(); err != nil {
		return err
	}

	if article.Body != "" {
		article.BodyHash = hashContent(article.Body)
	}

	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM runs WHERE id = ?", article.RunID).Scan(&exists)
	if err == sql.ErrNoRows {
		return instapdf.Errorf(instapdf.ENOTFOUND, "run not found")
	}
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO run_articles (run_id, position, article_id, title, source_url, status, malformed_metadata, body_hash, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, article.RunID, article.Position, article.ArticleID, article.Title, article.SourceURL,
		string(article.Status), article.MalformedMetadata, article.BodyHash, article.Error)

	return err
}

const runColumns = "id, started_at, finished_at, requested, extracted, skipped, failed, output_path, status, error"

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*instapdf.Run, error) {
	var run instapdf.Run
	var startedAt string
	var finishedAt sql.NullString
	var status string

	if err := row.Scan(&run.ID, &startedAt, &finishedAt, &run.Requested, &run.Extracted,
		&run.Skipped, &run.Failed, &run.OutputPath, &status, &run.Error); err != nil {
		return nil, err
	}
	run.Status = instapdf.RunStatus(status)

	var err error
	run.StartedAt, err = parseTime(startedAt, "started_at")
	if err != nil {
		return nil, err
	}
	if finishedAt.Valid {
		t, err := parseTime(finishedAt.String, "finished_at")
		if err != nil {
			return nil, err
		}
		run.FinishedAt = &t
	}

	return &run, nil
}

// FindRunByID retrieves a run by ID.
func (s *RunService) FindRunByID(ctx context.Context, id string) (*instapdf.Run, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, instapdf.Errorf(instapdf.ENOTFOUND, "run not found")
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// FindRuns retrieves runs matching the filter, most recent first.
func (s *RunService) FindRuns(ctx context.Context, filter instapdf.RunFilter) ([]*instapdf.Run, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + runColumns + " FROM runs WHERE 1=1")

	if filter.Status != nil {
		query.WriteString(" AND status = ?")
		args = append(args, string(*filter.Status))
	}

	query.WriteString(" ORDER BY started_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*instapdf.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// FindRunArticles retrieves the articles of a run in position order.
func (s *RunService) FindRunArticles(ctx context.Context, runID string) ([]*instapdf.RunArticle, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, position, article_id, title, source_url, status, malformed_metadata, body_hash, error
		FROM run_articles
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []*instapdf.RunArticle
	for rows.Next() {
		var a instapdf.RunArticle
		var status string
		if err := rows.Scan(&a.RunID, &a.Position, &a.ArticleID, &a.Title, &a.SourceURL,
			&status, &a.MalformedMetadata, &a.BodyHash, &a.Error); err != nil {
			return nil, err
		}
		a.Status = instapdf.ExtractionStatus(status)
		articles = append(articles, &a)
	}

	return articles, rows.Err()
}
