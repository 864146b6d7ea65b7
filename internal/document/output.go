package document

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"billing/pkg/models"
	"golang.org/x/sync/singleflight"
)

// Output writes artifacts into a directory. Each artifact is rendered into a
// temporary file next to its target and renamed into place, so readers never
// observe a partial document. Concurrent writes of the same path share one
// render.
type Output struct {
	Dir   string
	group singleflight.Group
}

// NewOutput returns an Output writing into dir.
func NewOutput(dir string) *Output {
	return &Output{Dir: dir}
}

// Write renders into the artifact called name and returns its path. Errors
// returned by render are passed through unchanged; file system failures are
// reported as *models.RenderError.
func (o *Output) Write(ctx context.Context, name string, render func(io.Writer) error) (string, error) {
	path := filepath.Join(o.Dir, name)
	_, err, _ := o.group.Do(path, func() (interface{}, error) {
		return nil, o.write(ctx, path, render)
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

func (o *Output) write(ctx context.Context, path string, render func(io.Writer) error) (err error) {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return models.NewRenderError("MkdirAll", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return models.NewRenderError("CreateTemp", path, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := render(tmp); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return models.NewRenderError("Sync", path, err)
	}
	if err := tmp.Close(); err != nil {
		return models.NewRenderError("Close", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return models.NewRenderError("Chmod", path, err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return models.NewRenderError("Rename", path, err)
	}
	return nil
}
