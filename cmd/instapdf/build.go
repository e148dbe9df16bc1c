package main

import (
	"fmt"
	"io"

	"github.com/fwojciec/instapdf"
	"github.com/fwojciec/instapdf/digest"
)

// Run executes the build command.
func (c *BuildCmd) Run(deps *Dependencies) error {
	if err := validateFlags(c); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", instapdf.ErrorMessage(err))
		return err
	}
	render, err := c.RenderOptions()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", instapdf.ErrorMessage(err))
		return err
	}

	opts := digest.Options{
		Credentials:   instapdf.Credentials{Username: c.Username, Password: c.Password},
		Count:         c.Count,
		Title:         c.Title,
		Render:        render,
		SaveArtifacts: c.Artifacts,
		Deadline:      c.Deadline,
	}

	result, err := deps.Builder.Build(deps.Ctx, opts, printProgress(deps.Stdout))
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", instapdf.ErrorMessage(err))
		if instapdf.ErrorCode(err) == instapdf.ERENDER && result != nil && result.HTMLPath != "" {
			fmt.Fprintf(deps.Stderr, "The digest HTML was saved to %s\n", result.HTMLPath)
			fmt.Fprintf(deps.Stderr, "Retry with: instapdf render %s\n", result.HTMLPath)
		}
		return err
	}

	fmt.Fprintf(deps.Stdout, "Extracted %d, skipped %d, failed %d\n", result.Extracted, result.Skipped, result.Failed)
	if result.HTMLPath != "" {
		fmt.Fprintf(deps.Stdout, "HTML: %s\n", result.HTMLPath)
	}
	if result.PDFPath != "" {
		fmt.Fprintf(deps.Stdout, "PDF:  %s\n", result.PDFPath)
	}
	if result.RunID != "" {
		fmt.Fprintf(deps.Stdout, "Run:  %s\n", result.RunID)
	}
	return nil
}

// printProgress writes one line per visited article.
func printProgress(w io.Writer) digest.ProgressFunc {
	return func(e digest.ProgressEvent) {
		switch e.Type {
		case digest.ProgressStarted:
			fmt.Fprintf(w, "Fetching %d articles\n", e.Total)
		case digest.ProgressExtracted:
			fmt.Fprintf(w, "[%d/%d] %s %s\n", e.Position, e.Total, e.ID, e.Title)
		case digest.ProgressSkipped:
			fmt.Fprintf(w, "[%d/%d] %s %s (skipped: no content)\n", e.Position, e.Total, e.ID, e.Title)
		case digest.ProgressFailed:
			fmt.Fprintf(w, "[%d/%d] %s %s (failed: %v)\n", e.Position, e.Total, e.ID, e.Title, e.Error)
		}
	}
}
