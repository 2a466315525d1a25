package grid

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/voxelsplace/vdb2density/vopl"
)

// Open reads the container at path from fs and picks a reader from its content.
func Open(fs afero.Fs, path string) (Source, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	return OpenBytes(path, data)
}

// OpenBytes is Open for a container already in memory. path names single-grid
// containers and selects the VPI18 reader through its .vpi extension.
func OpenBytes(path string, data []byte) (Source, error) {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)
	switch {
	case vopl.IsPack(data):
		s, err := NewVOPLPackSource(data)
		if err != nil {
			return nil, err
		}
		return s, nil
	case vopl.IsVOPL(data):
		s, err := NewVOPLSource(stem, data)
		if err != nil {
			return nil, err
		}
		return s, nil
	case strings.EqualFold(ext, ".vpi"):
		return NewVPISource(stem, data), nil
	case isZstd(data), looksLikeJSON(data):
		s, err := NewManifestSource(data)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %w: %s", ErrDecode, ErrUnrecognized, path)
	}
}
