package io

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/femtopgm/pkg/errors"
	"github.com/matzehuels/femtopgm/pkg/observability"
	"github.com/matzehuels/femtopgm/pkg/pipeline"
)

// WriteProgram writes the program text to w.
func WriteProgram(p pipeline.Program, w io.Writer) error {
	if _, err := io.WriteString(w, p.Text()); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", p.Name)
	}
	return nil
}

// ExportPrograms writes every program into dir and returns the final
// paths. Existing files with the same names are replaced. On error no
// program of this call is left in dir: staged files are removed and
// programs already moved into place are deleted again.
func ExportPrograms(ctx context.Context, programs []pipeline.Program, dir string) (paths []string, err error) {
	if err := errors.ValidateDir(dir); err != nil {
		return nil, err
	}
	if dir == "" {
		dir = "."
	}
	hooks := observability.Compile()

	staged := make([]string, 0, len(programs))
	placed := make([]string, 0, len(programs))
	defer func() {
		if err == nil {
			return
		}
		for _, tmp := range staged[len(placed):] {
			_ = os.Remove(tmp)
		}
		for _, dst := range placed {
			_ = os.Remove(dst)
		}
	}()
	for _, p := range programs {
		tmp, err := stage(p, dir)
		if err != nil {
			hooks.OnWrite(ctx, filepath.Join(dir, p.Name), 0, err)
			return nil, err
		}
		staged = append(staged, tmp)
	}

	for i, p := range programs {
		dst := filepath.Join(dir, p.Name)
		if err := os.Rename(staged[i], dst); err != nil {
			hooks.OnWrite(ctx, dst, 0, err)
			return nil, errors.Wrap(errors.ErrCodeIO, err, "rename %s", dst)
		}
		placed = append(placed, dst)
		hooks.OnWrite(ctx, dst, len(p.Text()), nil)
	}
	return placed, nil
}

// stage writes p to a temporary file in dir and returns its path.
func stage(p pipeline.Program, dir string) (path string, err error) {
	f, err := os.CreateTemp(dir, "."+p.Name+"-*.tmp")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeIO, err, "create %s", p.Name)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrap(errors.ErrCodeIO, cerr, "close %s", f.Name())
		}
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()
	if err := WriteProgram(p, f); err != nil {
		return "", err
	}
	if err := f.Sync(); err != nil {
		return "", errors.Wrap(errors.ErrCodeIO, err, "sync %s", f.Name())
	}
	return f.Name(), nil
}
