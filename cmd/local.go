package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Batman1190/Spirify/internal/shared"
	"github.com/urfave/cli/v3"
)

// LocalImport copies an audio file into the library directory.
func (r *Runner) LocalImport(ctx context.Context, cmd *cli.Command) error {
	path := strings.TrimSpace(cmd.StringArg("path"))
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}
	if err := r.ensure(); err != nil {
		return err
	}

	f, err := r.lib.ImportFile(path)
	if err != nil {
		return err
	}
	r.writePlain("✓ Imported %q (%d bytes) [%s]\n", f.Title, f.SizeBytes, f.ID)
	return nil
}

// LocalList prints the imported files.
func (r *Runner) LocalList(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensure(); err != nil {
		return err
	}

	files, err := r.lib.LocalFiles()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(files, true)
	}

	if len(files) == 0 {
		r.writePlain("No imported files. Add one with 'spirify local import <path>'\n")
		return nil
	}

	r.writePlainHeader("Local Files")
	for i, f := range files {
		r.writePlain("%2d. %s • %s (%d bytes)  [%s]\n", i+1, f.Title, f.FileName, f.SizeBytes, f.ID)
	}
	return nil
}

// LocalRemove deletes an imported file and its metadata.
func (r *Runner) LocalRemove(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}
	if err := r.ensure(); err != nil {
		return err
	}

	if err := r.lib.RemoveFile(id); err != nil {
		return err
	}
	r.writePlain("✓ Removed local file %s\n", id)
	return nil
}
