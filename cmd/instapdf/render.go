package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/instapdf"
	"github.com/fwojciec/instapdf/fs"
)

// Run executes the render command.
func (c *RenderCmd) Run(deps *Dependencies) error {
	opts, err := c.RenderOptions()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", instapdf.ErrorMessage(err))
		return err
	}

	html, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("reading %s: %w", c.File, err)
	}

	out := c.Out
	if out == "" {
		out = strings.TrimSuffix(c.File, filepath.Ext(c.File)) + ".pdf"
	}

	pdf, err := deps.Renderer.Render(deps.Ctx, string(html), opts)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", instapdf.ErrorMessage(err))
		return err
	}

	path, err := fs.NewStore(filepath.Dir(out)).SaveDocument(deps.Ctx, filepath.Base(out), pdf)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", instapdf.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "PDF: %s\n", path)
	return nil
}
