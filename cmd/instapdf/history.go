package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/instapdf"
)

const historyTimeLayout = "2006-01-02 15:04"

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	if err := validateFlags(c); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", instapdf.ErrorMessage(err))
		return err
	}
	if c.RunID != "" {
		return c.showRun(deps)
	}

	runs, err := deps.Runs.FindRuns(deps.Ctx, instapdf.RunFilter{Limit: c.Limit})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", instapdf.ErrorMessage(err))
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(deps.Stdout, "No runs found. Use 'instapdf build' to create one.")
		return nil
	}

	for _, r := range runs {
		fmt.Fprintf(deps.Stdout, "%s  %s  %-9s  %d/%d extracted  %s\n",
			r.ID, r.StartedAt.Local().Format(historyTimeLayout), r.Status, r.Extracted, r.Requested, r.OutputPath)
	}
	return nil
}

func (c *HistoryCmd) showRun(deps *Dependencies) error {
	run, err := deps.Runs.FindRunByID(deps.Ctx, c.RunID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", instapdf.ErrorMessage(err))
		return err
	}

	articles, err := deps.Runs.FindRunArticles(deps.Ctx, run.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", instapdf.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Run %s (%s)\n", run.ID, run.Status)
	fmt.Fprintf(deps.Stdout, "Started:   %s\n", run.StartedAt.Local().Format(historyTimeLayout))
	if run.FinishedAt != nil {
		fmt.Fprintf(deps.Stdout, "Duration:  %s\n", run.FinishedAt.Sub(run.StartedAt).Round(time.Second))
	}
	fmt.Fprintf(deps.Stdout, "Articles:  %d extracted, %d skipped, %d failed of %d requested\n",
		run.Extracted, run.Skipped, run.Failed, run.Requested)
	if run.OutputPath != "" {
		fmt.Fprintf(deps.Stdout, "Output:    %s\n", run.OutputPath)
	}
	if run.Error != "" {
		fmt.Fprintf(deps.Stdout, "Error:     %s\n", run.Error)
	}

	if len(articles) == 0 {
		return nil
	}
	fmt.Fprintln(deps.Stdout)
	for _, a := range articles {
		status := string(a.Status)
		if a.Error != "" {
			status = "failed"
		}
		if a.MalformedMetadata {
			status += "*"
		}
		fmt.Fprintf(deps.Stdout, "[%d] %s  %-22s  %s", a.Position+1, a.ArticleID, status, a.Title)
		if a.SourceURL != "" {
			fmt.Fprintf(deps.Stdout, "  %s", a.SourceURL)
		}
		if a.Error != "" {
			fmt.Fprintf(deps.Stdout, "  (%s)", a.Error)
		}
		fmt.Fprintln(deps.Stdout)
	}
	return nil
}
