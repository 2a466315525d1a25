package utils

import (
	"fmt"
	"io"

	"github.com/google/renameio/v2"

	"github.com/voxelsplace/vdb2density/density"
)

// writeFile streams write into a temp file next to path and moves it over
// path only when write and the close both succeed.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", density.ErrOutputWrite, path, err)
	}
	defer f.Cleanup()

	if err := write(f); err != nil {
		return fmt.Errorf("%w: %s: %w", density.ErrOutputWrite, path, err)
	}
	if err := f.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("%w: %s: %w", density.ErrOutputWrite, path, err)
	}
	return nil
}
